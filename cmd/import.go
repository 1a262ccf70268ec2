package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var resumeTitle string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import vacancies and resumes from hh.ru",
}

var importVacancyCmd = &cobra.Command{
	Use:   "vacancy <id>",
	Short: "Fetch a vacancy and store it as a job requirement",
	Args:  cobra.ExactArgs(1),
	RunE: withEngine(func(ctx context.Context, _ *cobra.Command, args []string, e *engine) error {
		hh, err := newHeadhunter(e.cfg.Headhunter, e.logger)
		if err != nil {
			return err
		}

		vacancy, err := hh.GetVacancy(ctx, args[0])
		if err != nil {
			return err
		}
		text, err := vacancy.RequirementText()
		if err != nil {
			return err
		}

		req := e.parser.Parse(text)
		if err := e.stores.Jobs.PutRequirement(ctx, req); err != nil {
			return err
		}

		e.logger.Info("vacancy imported",
			zap.String("vacancy_id", vacancy.ID),
			zap.String("vacancy_name", vacancy.Name),
			zap.String("job_id", req.ID.String()),
		)
		return printJSON(req)
	}),
}

var importResumeCmd = &cobra.Command{
	Use:   "resume [id]",
	Short: "Fetch a resume and store it as a candidate profile",
	Long:  "Fetch a resume by id, or one of the token owner's resumes by --title.",
	Args:  cobra.MaximumNArgs(1),
	RunE: withEngine(func(ctx context.Context, _ *cobra.Command, args []string, e *engine) error {
		hh, err := newHeadhunter(e.cfg.Headhunter, e.logger)
		if err != nil {
			return err
		}

		var id string
		switch {
		case len(args) == 1:
			id = args[0]
		case resumeTitle != "":
			resumes, err := hh.GetMineResumes(ctx)
			if err != nil {
				return err
			}
			e.logger.Info("getting mine resumes", zap.Int("count", resumes.Len()))

			selected := resumes.FindByTitle(resumeTitle)
			if selected == nil {
				e.logger.Error("resume with given title not found",
					zap.Any("existed resumes titles", resumes.Titles()),
					zap.String("resume title", resumeTitle),
				)
				return errors.New("resume not found")
			}
			id = selected.ID
		default:
			return errors.New("a resume id or --title is required")
		}

		hint, err := hh.GetResume(ctx, id)
		if err != nil {
			return err
		}
		profile, err := e.normalizer.Normalize(ctx, "", hint)
		if err != nil {
			return err
		}
		if err := e.stores.Profiles.PutProfile(ctx, profile); err != nil {
			return err
		}

		e.logger.Info("resume imported",
			zap.String("resume_id", id),
			zap.String("candidate_id", profile.ID.String()),
		)
		return printJSON(profile)
	}),
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.AddCommand(importVacancyCmd, importResumeCmd)

	importResumeCmd.Flags().StringVarP(&resumeTitle, "title", "t", "", "title of one of your resumes")
}
