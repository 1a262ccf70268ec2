package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hire-engine/internal/model"
)

var (
	matchProfile profileFlags
	matchJob     jobFlags

	rankJob   jobFlags
	rankCVs   []string
	rankLimit int

	recommendProfile profileFlags
	recommendJobs    []string
	recommendLimit   int
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score one candidate against one job",
	RunE: withEngine(func(ctx context.Context, _ *cobra.Command, _ []string, e *engine) error {
		profile, err := matchProfile.resolve(ctx, e)
		if err != nil {
			return err
		}
		req, err := matchJob.resolve(ctx, e)
		if err != nil {
			return err
		}

		result, err := e.scorer.Score(profile, req)
		if err != nil {
			return err
		}

		e.logger.Info("candidate scored",
			zap.String("candidate_id", profile.ID.String()),
			zap.String("job_id", req.ID.String()),
			zap.Float64("score", result.Score),
			zap.Strings("gaps", result.UnsatisfiedSkills()),
		)
		return printJSON(result)
	}),
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Rank candidates for a job, best first",
	Long:  "Rank the CVs given with --cv, or every stored profile when none is given.",
	RunE: withEngine(func(ctx context.Context, _ *cobra.Command, _ []string, e *engine) error {
		req, err := rankJob.resolve(ctx, e)
		if err != nil {
			return err
		}

		var profiles []*model.CandidateProfile
		if len(rankCVs) == 0 {
			if profiles, err = e.stores.Profiles.ListProfiles(ctx); err != nil {
				return err
			}
		}
		for _, path := range rankCVs {
			flags := profileFlags{cv: path}
			profile, err := flags.resolve(ctx, e)
			if err != nil {
				return err
			}
			profiles = append(profiles, profile)
		}

		results, err := e.scorer.Rank(ctx, req, profiles, rankLimit)
		if err != nil {
			return err
		}

		e.logger.Info("candidates ranked",
			zap.String("job_id", req.ID.String()),
			zap.Int("candidates", len(profiles)),
			zap.Int("returned", len(results)),
		)
		return printJSON(results)
	}),
}

var recommendCmd = &cobra.Command{
	Use:   "recommend",
	Short: "Recommend jobs for a candidate, best first",
	Long:  "Recommend among the job descriptions given with --job, or every stored job when none is given.",
	RunE: withEngine(func(ctx context.Context, _ *cobra.Command, _ []string, e *engine) error {
		profile, err := recommendProfile.resolve(ctx, e)
		if err != nil {
			return err
		}

		var reqs []*model.JobRequirement
		if len(recommendJobs) == 0 {
			if reqs, err = e.stores.Jobs.ListRequirements(ctx); err != nil {
				return err
			}
		}
		for _, path := range recommendJobs {
			flags := jobFlags{file: path}
			req, err := flags.resolve(ctx, e)
			if err != nil {
				return err
			}
			reqs = append(reqs, req)
		}

		recs, err := e.scorer.RecommendJobs(ctx, profile, reqs, recommendLimit)
		if err != nil {
			return err
		}

		e.logger.Info("jobs recommended",
			zap.String("candidate_id", profile.ID.String()),
			zap.Int("jobs", len(reqs)),
			zap.Int("returned", len(recs)),
		)
		return printJSON(recs)
	}),
}

func init() {
	rootCmd.AddCommand(matchCmd, rankCmd, recommendCmd)

	matchProfile.register(matchCmd)
	matchJob.register(matchCmd)

	rankJob.register(rankCmd)
	rankCmd.Flags().StringArrayVar(&rankCVs, "cv", nil, "path to a plain-text CV, repeatable")
	rankCmd.Flags().IntVarP(&rankLimit, "limit", "n", 0, "return at most this many candidates (0 means all)")

	recommendProfile.register(recommendCmd)
	recommendCmd.Flags().StringArrayVar(&recommendJobs, "job", nil, "path to a plain-text job description, repeatable")
	recommendCmd.Flags().IntVarP(&recommendLimit, "limit", "n", 0, "return at most this many jobs (0 means all)")
}
