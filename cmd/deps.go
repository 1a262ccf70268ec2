package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/hire-engine/internal/ai"
	"github.com/spigell/hire-engine/internal/ai/gemini"
	"github.com/spigell/hire-engine/internal/ai/openai"
	"github.com/spigell/hire-engine/internal/analysis"
	"github.com/spigell/hire-engine/internal/api"
	"github.com/spigell/hire-engine/internal/archive"
	"github.com/spigell/hire-engine/internal/headhunter"
	"github.com/spigell/hire-engine/internal/interview"
	"github.com/spigell/hire-engine/internal/jobspec"
	"github.com/spigell/hire-engine/internal/logger"
	"github.com/spigell/hire-engine/internal/model"
	"github.com/spigell/hire-engine/internal/normalizer"
	"github.com/spigell/hire-engine/internal/schema"
	"github.com/spigell/hire-engine/internal/scoring"
	"github.com/spigell/hire-engine/internal/secrets"
	"github.com/spigell/hire-engine/internal/skills"
	"github.com/spigell/hire-engine/internal/store"
	"github.com/spigell/hire-engine/internal/store/postgres"
	"github.com/spigell/hire-engine/internal/store/redis"
)

// engine holds every component a command may need. Only stores and the
// gateway touch the network; the rest is pure computation.
type engine struct {
	cfg    *Config
	logger *zap.Logger

	table      *skills.Table
	stores     store.Stores
	gateway    ai.Gateway
	normalizer *normalizer.Normalizer
	parser     *jobspec.Parser
	scorer     *scoring.Scorer
	planner    *interview.Planner
	analyzer   *analysis.Analyzer
	archiver   *archive.Archiver

	closers []func()
}

func newEngine(ctx context.Context, cfg *Config, log *zap.Logger) (*engine, error) {
	e := &engine{cfg: cfg, logger: log}
	e.table = skills.NewTable(cfg.Engine.SkillSynonyms)

	var locker interview.Locker
	if err := e.openStores(ctx, &locker); err != nil {
		e.Close()
		return nil, err
	}

	gateway, err := newGateway(ctx, cfg.AI, log)
	if err != nil {
		log.Warn("language model gateway disabled, using templates and rules",
			zap.Error(err),
			zap.String("hint", "set ai.enabled and GEMINI_API_KEY or OPENAI_API_KEY"),
		)
	}
	e.gateway = gateway

	if cfg.Archive.Enabled {
		archiver, err := archive.New(ctx, cfg.Archive.Bucket, cfg.Archive.Prefix, cfg.Archive.Region, log.Named("archive"))
		if err != nil {
			e.Close()
			return nil, fmt.Errorf("creating archiver: %w", err)
		}
		e.archiver = archiver
	}

	e.normalizer = normalizer.New(e.table, log.Named("normalizer"))
	e.parser = jobspec.New(cfg.Engine, e.table)
	e.scorer = scoring.New(cfg.Engine, e.table)
	e.planner = interview.New(cfg.Engine, e.stores.Sessions, locker, e.gateway, e.scorer, e.table, log.Named("interview"))
	e.analyzer = analysis.New(cfg.Engine, e.table, e.gateway, log.Named("analysis"))

	return e, nil
}

// openStores picks the document store and, when Redis is configured, moves
// sessions and their locks there.
func (e *engine) openStores(ctx context.Context, locker *interview.Locker) error {
	switch driver := strings.ToLower(strings.TrimSpace(e.cfg.Storage.Driver)); driver {
	case "", "memory":
		e.stores = store.NewMemory().Stores()
	case "postgres":
		if e.cfg.Storage.PostgresURL == "" {
			return errors.New("storage.postgres-url (or DATABASE_URL) is required for the postgres driver")
		}
		db, err := postgres.Connect(ctx, e.cfg.Storage.PostgresURL)
		if err != nil {
			return err
		}
		e.closers = append(e.closers, db.Close)
		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("migrating postgres: %w", err)
		}
		e.stores = db.Stores()
	default:
		return fmt.Errorf("unsupported storage driver: %s", driver)
	}

	rc := e.cfg.Storage.Redis
	if rc.Addr == "" {
		return nil
	}

	client, err := redis.New(ctx, redis.Options{
		Addr:       rc.Addr,
		Password:   rc.Password,
		DB:         rc.DB,
		SessionTTL: rc.SessionTTL,
		LockTTL:    rc.LockTTL,
	}, e.logger.Named("redis"))
	if err != nil {
		return err
	}
	e.closers = append(e.closers, func() { _ = client.Close() })
	e.stores.Sessions = client
	*locker = client

	return nil
}

func (e *engine) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
	e.closers = nil
}

func (e *engine) apiDeps() api.Deps {
	deps := api.Deps{
		Stores:     e.stores,
		Normalizer: e.normalizer,
		Parser:     e.parser,
		Scorer:     e.scorer,
		Planner:    e.planner,
		Analyzer:   e.analyzer,
		Logger:     e.logger.Named("api"),
	}
	if e.archiver != nil {
		deps.Archiver = e.archiver
	}
	return deps
}

// report analyzes a completed session, stores the report and archives both
// when the archive is enabled.
func (e *engine) report(ctx context.Context, session *model.InterviewSession, profile *model.CandidateProfile) (*model.AssessmentReport, error) {
	report, err := e.analyzer.Analyze(ctx, session, profile)
	if err != nil {
		return nil, err
	}
	if err := e.stores.Reports.PutReport(ctx, report); err != nil {
		return nil, fmt.Errorf("storing report: %w", err)
	}
	if e.archiver != nil {
		if err := e.archiver.Archive(ctx, session, report); err != nil {
			logger.WithFields(e.logger, logger.SessionFields(session.ID.String(), session.CandidateID.String(), session.JobID.String())...).
				Warn("archiving session failed", zap.Error(err))
		}
	}
	return report, nil
}

// newGateway returns nil when the language model is disabled; callers then
// fall back to templates and rule-based extraction.
func newGateway(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Gateway, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, nil
	}

	switch provider := strings.TrimSpace(strings.ToLower(cfg.Provider)); provider {
	case "", "gemini":
		gc := cfg.Gemini
		if gc == nil {
			gc = &GeminiConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			File:  gc.APIKeyFile,
			Value: gc.APIKey,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY)", err)
		}

		genLogger := logger.WithCommonFields(log, "gemini", gc.Model).With(zap.Int("ai_retry_attempts", gc.MaxRetries))
		generator, err := gemini.NewGenerator(ctx, apiKey, gc.Model, gc.MaxRetries, genLogger)
		if err != nil {
			return nil, err
		}
		return gemini.NewGateway(generator, logger.WithCommonFields(log, "gemini", generator.Model()), gc.MaxLogLength), nil

	case "openai":
		oc := cfg.OpenAI
		if oc == nil {
			oc = &OpenAIConfig{}
		}
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "openai api key",
			File:  oc.APIKeyFile,
			Value: oc.APIKey,
			Env:   "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set ai.openai.api-key-file or OPENAI_API_KEY)", err)
		}
		gateway, err := openai.NewGateway(apiKey, oc.Model, log, oc.MaxLogLength)
		if err != nil {
			return nil, err
		}
		return gateway, nil

	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}

func newHeadhunter(cfg HeadhunterConfig, log *zap.Logger) (*headhunter.Client, error) {
	var token string
	if strings.TrimSpace(cfg.TokenFile) != "" {
		loaded, err := secrets.Load(secrets.Source{Name: "headhunter token", File: cfg.TokenFile})
		if err != nil {
			return nil, err
		}
		token = loaded
	}

	hh := headhunter.New(log.Named("headhunter"), token)
	if cfg.UserAgent != "" {
		hh.UserAgent = cfg.UserAgent
	}
	if cfg.APIURL != "" {
		hh.APIURL = strings.TrimRight(cfg.APIURL, "/")
	}
	return hh, nil
}

func readText(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		return string(data), err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func readHint(path string) (*model.ProfileHint, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hint %s: %w", path, err)
	}
	return schema.DecodeHint(data)
}
