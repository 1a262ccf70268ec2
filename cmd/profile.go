package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var normalizeFlags profileFlags

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Turn a CV and an optional profile hint into a candidate profile",
	RunE: withEngine(func(ctx context.Context, _ *cobra.Command, _ []string, e *engine) error {
		if normalizeFlags.candidateID != "" {
			return errors.New("normalize reads --cv or --hint, not --candidate-id")
		}

		profile, err := normalizeFlags.resolve(ctx, e)
		if err != nil {
			return err
		}

		e.logger.Info("candidate profile ready",
			zap.String("candidate_id", profile.ID.String()),
			zap.Strings("skills", profile.SkillNames()),
		)
		return printJSON(profile)
	}),
}

var parseJobFile string

var parseJobCmd = &cobra.Command{
	Use:   "parse-job",
	Short: "Parse a free-text job description into a structured requirement",
	RunE: withEngine(func(ctx context.Context, _ *cobra.Command, _ []string, e *engine) error {
		flags := jobFlags{file: parseJobFile}
		req, err := flags.resolve(ctx, e)
		if err != nil {
			return err
		}

		e.logger.Info("job requirement ready",
			zap.String("job_id", req.ID.String()),
			zap.Int("skills", len(req.Skills)),
			zap.Float64("minimum_years", req.MinimumYears),
		)
		return printJSON(req)
	}),
}

func init() {
	rootCmd.AddCommand(normalizeCmd, parseJobCmd)

	normalizeFlags.register(normalizeCmd)
	parseJobCmd.Flags().StringVarP(&parseJobFile, "file", "f", "", "path to a plain-text job description ('-' for stdin)")
	_ = parseJobCmd.MarkFlagRequired("file")
}
