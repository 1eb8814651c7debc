package errors

import (
	"fmt"
	"io"
)

// ErrorHandler reports session-terminating errors to the user and the log.
type ErrorHandler struct {
	logger Logger
	out    io.Writer
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger, out io.Writer) *ErrorHandler {
	return &ErrorHandler{logger: logger, out: out}
}

// Report prints a human readable diagnostic for err and returns the exit
// status the process should terminate with.
func (h *ErrorHandler) Report(err error) int {
	if err == nil {
		return 0
	}

	stdErr := h.normalizeError(err)
	h.logError(stdErr)

	fmt.Fprintf(h.out, "\n%s\n", stdErr.Message)
	if status := StatusCode(stdErr); status != 0 {
		fmt.Fprintln(h.out, status)
		fmt.Fprintln(h.out, Body(stdErr))
	} else if stdErr.Details != "" {
		fmt.Fprintln(h.out, stdErr.Details)
	}

	return ExitCode(stdErr)
}

// normalizeError ensures we always have a StandardError
func (h *ErrorHandler) normalizeError(err error) *StandardError {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr
	}
	return &StandardError{
		Code:    "INTERNAL_ERROR",
		Message: "Unexpected error",
		Details: err.Error(),
		cause:   err,
	}
}

func (h *ErrorHandler) logError(stdErr *StandardError) {
	if h.logger == nil {
		return
	}
	fields := map[string]interface{}{
		"errorCode":    stdErr.Code,
		"errorMessage": stdErr.Message,
		"errorDetails": stdErr.Details,
		"retryable":    stdErr.Retryable,
	}
	for k, v := range stdErr.Metadata {
		fields[k] = v
	}
	h.logger.Error("Session terminated", fields)
}
