package cmd

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/hire-engine/internal/config"
)

func newTestViper() *viper.Viper {
	v := viper.New()
	configureViper(v)
	return v
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hire-engine.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig(newTestViper(), "")
	require.NoError(t, err)

	d := config.Default()
	assert.Equal(t, d.ScoreWeights, cfg.Engine.ScoreWeights)
	assert.Equal(t, d.Probes, cfg.Engine.Probes)
	assert.Equal(t, d.GatewayTimeout, cfg.Engine.GatewayTimeout)
	assert.Equal(t, 8, cfg.Engine.QuestionBudgetDefault)
	assert.Equal(t, "memory", cfg.Storage.Driver)
	assert.Equal(t, 30*time.Second, cfg.Storage.Redis.LockTTL)
	assert.Equal(t, ":8080", cfg.Server.Listen)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
engine:
  skill-synonyms:
    kubernetes: [k8s, kube]
  score-weights: {skill: 0.5, preferred: 0.25, experience: 0.25}
  probes: [teamwork]
  gateway-timeout: 3s
ai:
  enabled: true
  provider: openai
storage:
  driver: postgres
`)
	t.Setenv("DATABASE_URL", "postgres://localhost/hire")
	t.Setenv("HIRE_ENGINE_ENGINE_QUESTION_BUDGET_DEFAULT", "5")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := loadConfig(newTestViper(), path)
	require.NoError(t, err)

	assert.Equal(t, []string{"teamwork"}, cfg.Engine.Probes)
	assert.Equal(t, 3*time.Second, cfg.Engine.GatewayTimeout)
	assert.Equal(t, 5, cfg.Engine.QuestionBudgetDefault)
	assert.Equal(t, []string{"k8s", "kube"}, cfg.Engine.SkillSynonyms["kubernetes"])
	assert.Equal(t, "postgres://localhost/hire", cfg.Storage.PostgresURL)
	require.NotNil(t, cfg.AI)
	assert.Equal(t, "openai", cfg.AI.Provider)
	require.NotNil(t, cfg.AI.OpenAI)
	assert.Equal(t, "sk-test", cfg.AI.OpenAI.APIKey)
}

func TestLoadConfigRejectsBadWeights(t *testing.T) {
	path := writeConfig(t, `
engine:
  score-weights: {skill: 0.5, preferred: 0.5, experience: 0.5}
`)

	_, err := loadConfig(newTestViper(), path)
	var cfgErr *config.ConfigurationError
	require.True(t, errors.As(err, &cfgErr), "got %v", err)
	assert.Equal(t, "score-weights", cfgErr.Field)
}

func TestLoadConfigLockTTLCoversGatewayTimeout(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{
			name: "lock shorter than gateway timeout",
			body: `
engine: {gateway-timeout: 20s}
storage:
  redis: {addr: "localhost:6379", lock-ttl: 10s}
`,
			wantErr: true,
		},
		{
			name: "lock without margin",
			body: `
engine: {gateway-timeout: 20s}
storage:
  redis: {addr: "localhost:6379", lock-ttl: 22s}
`,
			wantErr: true,
		},
		{
			name: "defaults",
			body: `
storage:
  redis: {addr: "localhost:6379"}
`,
		},
		{
			name: "no redis",
			body: `
engine: {gateway-timeout: 60s}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(newTestViper(), writeConfig(t, tt.body))
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			var cfgErr *config.ConfigurationError
			require.True(t, errors.As(err, &cfgErr), "got %v", err)
			assert.Equal(t, "storage.redis.lock-ttl", cfgErr.Field)
		})
	}
}

func TestLoadConfigMissingExplicitFile(t *testing.T) {
	_, err := loadConfig(newTestViper(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestNewGateway(t *testing.T) {
	gw, err := newGateway(t.Context(), nil, nil)
	require.NoError(t, err)
	assert.Nil(t, gw)

	gw, err = newGateway(t.Context(), &AIConfig{Enabled: false, Provider: "openai"}, nil)
	require.NoError(t, err)
	assert.Nil(t, gw)

	_, err = newGateway(t.Context(), &AIConfig{Enabled: true, Provider: "claude"}, nil)
	require.ErrorContains(t, err, "unsupported ai provider")

	t.Setenv("OPENAI_API_KEY", "")
	_, err = newGateway(t.Context(), &AIConfig{Enabled: true, Provider: "openai"}, nil)
	require.ErrorContains(t, err, "OPENAI_API_KEY")
}
