package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/felixgeelhaar/hybridai/pkg/application"
	"github.com/felixgeelhaar/hybridai/pkg/credentials"
	"github.com/felixgeelhaar/hybridai/pkg/domain/ai"
	"github.com/felixgeelhaar/hybridai/pkg/domain/workflow"
)

// CLIError wraps domain errors with user-facing messages and actionable hints.
type CLIError struct {
	Message  string
	Hint     string
	Err      error
	ExitCode int
	// Banner is printed above the message when set.
	Banner string
}

func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a CLIError with a default exit code of 1.
func NewCLIError(msg, hint string, err error) *CLIError {
	return &CLIError{
		Message:  msg,
		Hint:     hint,
		Err:      err,
		ExitCode: 1,
	}
}

// MapError converts known domain errors into CLIErrors with actionable hints.
// Unmapped errors are returned as-is.
func MapError(err error) error {
	if err == nil {
		return nil
	}

	var cliErr *CLIError
	if errors.As(err, &cliErr) {
		return err
	}

	var pipeErr *workflow.PipelineError
	if errors.As(err, &pipeErr) {
		mapped := NewCLIError(
			fmt.Sprintf("collaborative pipeline stopped at phase %d (%s)", pipeErr.Phase.Number(), pipeErr.Phase.Title()),
			backendHint(pipeErr.Err),
			pipeErr.Err,
		)
		mapped.Banner = fmt.Sprintf("PIPELINE FAILED: %s", strings.ToUpper(pipeErr.Phase.Title()))
		return mapped
	}

	var backendErr *ai.BackendError
	if errors.As(err, &backendErr) {
		return NewCLIError(fmt.Sprintf("%s backend call failed", backendErr.Backend), backendHint(err), err)
	}

	switch {
	case errors.Is(err, application.ErrEmptyTask):
		return NewCLIError("task is empty", "Pass the task as an argument, e.g. hybrid-ai \"explain channels\"", err)
	case errors.Is(err, credentials.ErrInvalidKey):
		return NewCLIError("invalid API key", "Check the key format with 'hybrid-ai keys show'", err)
	case errors.Is(err, workflow.ErrUnknownApproach):
		return NewCLIError("could not execute routing decision", "Run with --explain to inspect the plan", err)
	}

	return err
}

func backendHint(err error) string {
	switch {
	case errors.Is(err, ai.ErrBackendUnavailable):
		var be *ai.BackendError
		if errors.As(err, &be) && be.Backend == "local" {
			return "Start the local model server with 'ollama serve' or set local.base_url"
		}
		return "The service is unreachable or failing; retry later or route elsewhere with --local/--remote"
	case errors.Is(err, ai.ErrAuth):
		return "Check the API key with 'hybrid-ai keys show' or set one with 'hybrid-ai keys set <provider> <key>'"
	case errors.Is(err, ai.ErrRateLimited):
		return "The provider is throttling requests; wait and retry, or raise resilience.max_retries"
	case errors.Is(err, ai.ErrTimeout):
		return "Raise timeouts.call in the config or try a smaller model with --model"
	case errors.Is(err, ai.ErrProtocol):
		return "The backend answered in an unexpected format; check the base URL and model name"
	case errors.Is(err, workflow.ErrTestsFailed):
		return "The syntax checker could not run; check that node, python3, php or gofmt is installed"
	default:
		return ""
	}
}
