// Package ai defines the narrow contract the engine uses to reach a generative
// text model. Nothing in scoring depends on its output.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Task string

const (
	TaskGenerateQuestion Task = "generate_question"
	TaskExtractClaims    Task = "extract_claims"
)

// Request asks the model to perform a task over a free-form context object.
type Request struct {
	Task    Task           `json:"task"`
	Context map[string]any `json:"context"`
}

type Claim struct {
	Claim      string  `json:"claim" mapstructure:"claim"`
	Confidence float64 `json:"confidence" mapstructure:"confidence"`
}

// Response carries a question for generate_question and claims for extract_claims.
type Response struct {
	Question string
	Claims   []Claim
	Raw      string
}

type Gateway interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// ErrNoGateway is the cause reported when no gateway is configured.
var ErrNoGateway = errors.New("no language model gateway configured")

// UnavailableError wraps any gateway failure. Callers fall back to the
// rule-based path when they see it.
type UnavailableError struct {
	Task  Task
	Cause error
}

func (e *UnavailableError) Error() string {
	return fmt.Sprintf("language model gateway unavailable for %s: %v", e.Task, e.Cause)
}

func (e *UnavailableError) Unwrap() error {
	return e.Cause
}

type result struct {
	resp *Response
	err  error
}

// Call invokes the gateway with a deadline. A gateway that ignores its context
// still cannot hold the caller past the timeout.
func Call(ctx context.Context, gw Gateway, timeout time.Duration, req Request) (*Response, error) {
	if gw == nil {
		return nil, &UnavailableError{Task: req.Task, Cause: ErrNoGateway}
	}

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	done := make(chan result, 1)
	go func() {
		resp, err := gw.Do(ctx, req)
		done <- result{resp: resp, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, &UnavailableError{Task: req.Task, Cause: ctx.Err()}
	case res := <-done:
		if res.err != nil {
			return nil, &UnavailableError{Task: req.Task, Cause: res.err}
		}
		if err := validate(req.Task, res.resp); err != nil {
			return nil, &UnavailableError{Task: req.Task, Cause: err}
		}
		return res.resp, nil
	}
}

func validate(task Task, resp *Response) error {
	if resp == nil {
		return errors.New("empty response")
	}
	switch task {
	case TaskGenerateQuestion:
		if strings.TrimSpace(resp.Question) == "" {
			return errors.New("response has no question")
		}
	case TaskExtractClaims:
	default:
		return fmt.Errorf("unknown task %q", task)
	}
	return nil
}
