package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/hire-engine/internal/config"
	"github.com/spigell/hire-engine/internal/logger"
)

const (
	app       = "hire-engine"
	envPrefix = "HIRE_ENGINE"

	// lockTTLMargin covers the session save that follows a gateway call.
	lockTTLMargin = 5 * time.Second
)

type Config struct {
	Engine     config.Engine    `mapstructure:"engine"`
	AI         *AIConfig        `mapstructure:"ai"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Archive    ArchiveConfig    `mapstructure:"archive"`
	Server     ServerConfig     `mapstructure:"server"`
	Headhunter HeadhunterConfig `mapstructure:"headhunter"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
	OpenAI   *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type OpenAIConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type StorageConfig struct {
	// Driver is memory or postgres.
	Driver      string      `mapstructure:"driver"`
	PostgresURL string      `mapstructure:"postgres-url"`
	Redis       RedisConfig `mapstructure:"redis"`
}

type RedisConfig struct {
	Addr       string        `mapstructure:"addr"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	SessionTTL time.Duration `mapstructure:"session-ttl"`
	LockTTL    time.Duration `mapstructure:"lock-ttl"`
}

type ArchiveConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Bucket  string `mapstructure:"bucket"`
	Prefix  string `mapstructure:"prefix"`
	Region  string `mapstructure:"region"`
}

type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

type HeadhunterConfig struct {
	APIURL    string `mapstructure:"api-url"`
	TokenFile string `mapstructure:"token-file"`
	UserAgent string `mapstructure:"user-agent"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "hire-engine normalizes CVs, scores candidates against jobs and runs practice interviews",
		SilenceUsage: true,
	}
)

// Execute executes the root command. Interrupts cancel the command context.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return rootCmd.ExecuteContext(ctx)
}

func init() {
	configureViper(viper.GetViper())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hire-engine.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

// configureViper registers defaults and environment bindings on v.
func configureViper(v *viper.Viper) {
	d := config.Default()
	v.SetDefault("engine.score-weights.skill", d.ScoreWeights.Skill)
	v.SetDefault("engine.score-weights.preferred", d.ScoreWeights.Preferred)
	v.SetDefault("engine.score-weights.experience", d.ScoreWeights.Experience)
	v.SetDefault("engine.preferred-score-cap", d.PreferredScoreCap)
	v.SetDefault("engine.question-budget-default", d.QuestionBudgetDefault)
	v.SetDefault("engine.min-answer-signal-len", d.MinAnswerSignalLen)
	v.SetDefault("engine.position-decay", d.PositionDecay)
	v.SetDefault("engine.probes", d.Probes)
	v.SetDefault("engine.gateway-timeout", d.GatewayTimeout)
	v.SetDefault("engine.consistency-penalty", d.ConsistencyPenalty)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.redis.session-ttl", 24*time.Hour)
	v.SetDefault("storage.redis.lock-ttl", 30*time.Second)
	v.SetDefault("archive.prefix", "sessions")
	v.SetDefault("server.listen", ":8080")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	bindings := map[string]string{
		"ai.gemini.api-key":      "GEMINI_API_KEY",
		"ai.openai.api-key":      "OPENAI_API_KEY",
		"storage.postgres-url":   "DATABASE_URL",
		"storage.redis.addr":     "REDIS_ADDR",
		"headhunter.token-file":  "HH_TOKEN_FILE",
		"ai.gemini.api-key-file": "GEMINI_API_KEY_FILE",
	}
	for key, env := range bindings {
		// Keep the prefixed variable working next to the well-known one.
		prefixed := envPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
		_ = v.BindEnv(key, prefixed, env)
	}
}

// loadConfig reads the optional config file, unmarshals everything and
// validates the engine section. An invalid engine configuration stops the
// command before any work starts.
func loadConfig(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(app)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Engine.SkillSynonyms == nil {
		cfg.Engine.SkillSynonyms = map[string][]string{}
	}

	if err := cfg.Engine.Validate(); err != nil {
		return nil, err
	}

	// a session lock must outlive the slowest gateway call made while holding it
	if rc := cfg.Storage.Redis; rc.Addr != "" && rc.LockTTL < cfg.Engine.GatewayTimeout+lockTTLMargin {
		return nil, &config.ConfigurationError{
			Field:  "storage.redis.lock-ttl",
			Reason: fmt.Sprintf("must be at least engine.gateway-timeout plus %s, got %s", lockTTLMargin, rc.LockTTL),
		}
	}

	return &cfg, nil
}

// bootstrap builds the logger and the configuration shared by every command.
func bootstrap() (*zap.Logger, *Config, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}

	cfg, err := loadConfig(viper.GetViper(), cfgFile)
	if err != nil {
		log.Error("loading configuration", zap.Error(err))
		return nil, nil, err
	}

	log.Debug("configuration loaded",
		zap.String("storage", cfg.Storage.Driver),
		zap.Bool("ai", cfg.AI != nil && cfg.AI.Enabled),
		zap.Bool("archive", cfg.Archive.Enabled),
	)

	return log, cfg, nil
}
