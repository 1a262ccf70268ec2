package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hire-engine/internal/analysis"
	"github.com/spigell/hire-engine/internal/model"
)

var (
	analyzeSessionID string
	statsJobID       string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Assess a completed stored session",
	RunE: withEngine(func(ctx context.Context, _ *cobra.Command, _ []string, e *engine) error {
		session, err := e.planner.Get(ctx, model.SessionID(analyzeSessionID))
		if err != nil {
			return err
		}
		profile, err := e.stores.Profiles.GetProfile(ctx, session.CandidateID)
		if err != nil {
			return err
		}

		report, err := e.report(ctx, session, profile)
		if err != nil {
			return err
		}

		e.logger.Info("session assessed",
			zap.String("session_id", session.ID.String()),
			zap.String("verdict", report.Verdict),
		)
		return printJSON(report)
	}),
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Compare the assessment reports of one job",
	RunE: withEngine(func(ctx context.Context, _ *cobra.Command, _ []string, e *engine) error {
		reports, err := e.stores.Reports.ListReportsByJob(ctx, model.JobID(statsJobID))
		if err != nil {
			return err
		}
		return printJSON(analysis.CompareReports(reports))
	}),
}

func init() {
	rootCmd.AddCommand(analyzeCmd, statsCmd)

	analyzeCmd.Flags().StringVarP(&analyzeSessionID, "session-id", "s", "", "id of a completed session")
	_ = analyzeCmd.MarkFlagRequired("session-id")

	statsCmd.Flags().StringVar(&statsJobID, "job-id", "", "id of the job whose reports are compared")
	_ = statsCmd.MarkFlagRequired("job-id")
}
