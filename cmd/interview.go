package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/hire-engine/internal/interview"
	"github.com/spigell/hire-engine/internal/model"
)

const (
	PromptAnswer = "Answer"
	PromptSkip   = "Skip the question"
	PromptEnd    = "End the interview"

	reasonInterrupted = "interrupted"
)

var (
	interviewProfile profileFlags
	interviewJob     jobFlags
	interviewFocus   []string
	interviewAsk     []string
	interviewBudget  int
)

var actionPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptAnswer, PromptSkip, PromptEnd},
}

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Run an interactive practice interview and print the assessment",
	RunE:  withEngine(runInterview),
}

func init() {
	rootCmd.AddCommand(interviewCmd)

	interviewProfile.register(interviewCmd)
	interviewJob.register(interviewCmd)
	interviewCmd.Flags().StringArrayVar(&interviewFocus, "focus", nil, "extra focus area, repeatable")
	interviewCmd.Flags().StringArrayVarP(&interviewAsk, "question", "q", nil, "custom question asked verbatim first, repeatable")
	interviewCmd.Flags().IntVarP(&interviewBudget, "budget", "b", 0, "number of questions (0 means the configured default)")
}

func runInterview(ctx context.Context, _ *cobra.Command, _ []string, e *engine) error {
	profile, err := interviewProfile.resolve(ctx, e)
	if err != nil {
		return err
	}

	start := interview.StartRequest{
		Profile:         profile,
		FocusAreas:      interviewFocus,
		CustomQuestions: interviewAsk,
		QuestionBudget:  interviewBudget,
	}
	if interviewJob.set() {
		if start.Requirement, err = interviewJob.resolve(ctx, e); err != nil {
			return err
		}
	}

	session, err := e.planner.Start(ctx, start)
	if err != nil {
		return err
	}
	e.logger.Info("starting the interview",
		zap.String("session_id", session.ID.String()),
		zap.Strings("focus_areas", session.FocusAreas),
		zap.Int("questions", session.RemainingQuestionBudget),
	)

	if err := askQuestions(ctx, e, session.ID); err != nil {
		return err
	}

	session, err = e.planner.Get(ctx, session.ID)
	if err != nil {
		return err
	}
	report, err := e.report(ctx, session, profile)
	if err != nil {
		return err
	}

	e.logger.Info("interview assessed",
		zap.String("verdict", report.Verdict),
		zap.String("summary", report.Summary),
	)
	return printJSON(report)
}

// askQuestions drives the session until the planner closes it or the user stops.
func askQuestions(ctx context.Context, e *engine, id model.SessionID) error {
	for {
		turn, err := e.planner.NextQuestion(ctx, id)
		var closed *model.SessionClosedError
		if errors.As(err, &closed) {
			return nil
		}
		if err != nil {
			return err
		}

		fmt.Printf("\n[%d] %s\n", turn.Index+1, turn.Question)

		_, action, err := actionPrompt.Run()
		if err != nil {
			return endOnPromptError(ctx, e, id, err)
		}

		var answer string
		switch action {
		case PromptEnd:
			_, err := e.planner.End(ctx, id, "")
			return err
		case PromptAnswer:
			answerPrompt := promptui.Prompt{Label: "Your answer"}
			if answer, err = answerPrompt.Run(); err != nil {
				return endOnPromptError(ctx, e, id, err)
			}
		case PromptSkip:
		default:
			return fmt.Errorf("invalid action: %s", action)
		}

		session, err := e.planner.SubmitAnswer(ctx, id, strings.TrimSpace(answer))
		if err != nil {
			return err
		}
		if session.Closed() {
			return nil
		}
	}
}

// endOnPromptError closes the session when the user interrupts a prompt so the
// answers given so far are still assessed.
func endOnPromptError(ctx context.Context, e *engine, id model.SessionID, err error) error {
	if !errors.Is(err, promptui.ErrInterrupt) && !errors.Is(err, promptui.ErrEOF) && !errors.Is(err, promptui.ErrAbort) {
		return err
	}
	e.logger.Info("ending the interview", zap.String("reason", reasonInterrupted))
	_, endErr := e.planner.End(ctx, id, reasonInterrupted)
	return endErr
}
