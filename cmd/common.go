package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hire-engine/internal/model"
)

// withEngine wraps a command body with configuration loading and engine
// construction, closing the engine when the body returns.
func withEngine(fn func(ctx context.Context, cmd *cobra.Command, args []string, e *engine) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		log, cfg, err := bootstrap()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		ctx := cmd.Context()
		e, err := newEngine(ctx, cfg, log)
		if err != nil {
			log.Error("starting the engine", zap.Error(err))
			return err
		}
		defer e.Close()

		return fn(ctx, cmd, args, e)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// profileFlags describe where a command gets its candidate from.
type profileFlags struct {
	cv          string
	hint        string
	candidateID string
}

func (f *profileFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.cv, "cv", "", "path to a plain-text CV ('-' for stdin)")
	cmd.Flags().StringVar(&f.hint, "hint", "", "path to a JSON profile hint")
	cmd.Flags().StringVar(&f.candidateID, "candidate-id", "", "id of a stored candidate profile")
}

// resolve normalizes the CV or loads the stored profile. Normalized profiles
// are stored so later steps such as analysis can find them.
func (f *profileFlags) resolve(ctx context.Context, e *engine) (*model.CandidateProfile, error) {
	if f.candidateID != "" {
		return e.stores.Profiles.GetProfile(ctx, model.CandidateID(f.candidateID))
	}
	if f.cv == "" && f.hint == "" {
		return nil, errors.New("one of --cv, --hint or --candidate-id is required")
	}

	text, err := readText(f.cv)
	if err != nil {
		return nil, err
	}
	hint, err := readHint(f.hint)
	if err != nil {
		return nil, err
	}

	profile, err := e.normalizer.Normalize(ctx, text, hint)
	if err != nil {
		return nil, err
	}
	if err := e.stores.Profiles.PutProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("storing profile: %w", err)
	}
	return profile, nil
}

// jobFlags describe where a command gets its job requirement from.
type jobFlags struct {
	file  string
	jobID string
}

func (f *jobFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "job", "", "path to a plain-text job description ('-' for stdin)")
	cmd.Flags().StringVar(&f.jobID, "job-id", "", "id of a stored job requirement")
}

func (f *jobFlags) set() bool {
	return f.file != "" || f.jobID != ""
}

func (f *jobFlags) resolve(ctx context.Context, e *engine) (*model.JobRequirement, error) {
	if f.jobID != "" {
		return e.stores.Jobs.GetRequirement(ctx, model.JobID(f.jobID))
	}
	if f.file == "" {
		return nil, errors.New("one of --job or --job-id is required")
	}

	text, err := readText(f.file)
	if err != nil {
		return nil, err
	}
	req := e.parser.Parse(text)
	if err := e.stores.Jobs.PutRequirement(ctx, req); err != nil {
		return nil, fmt.Errorf("storing job requirement: %w", err)
	}
	return req, nil
}
