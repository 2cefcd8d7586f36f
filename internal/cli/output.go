package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/roach88/genxdata/internal/gerrors"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Validation or generation failure (bad config, writer or transport error)
	ExitCommandError = 2 // Command error (missing files, bad flags)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for verbose/diagnostic output (defaults to Writer)
	Verbose   bool
	RunID     string // Stamped on JSON responses once a run has an ID
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string      `json:"status"`           // "ok" or "error"
	Data   interface{} `json:"data,omitempty"`   // success payload
	Error  *CLIError   `json:"error,omitempty"`  // error details
	RunID  string      `json:"run_id,omitempty"` // generation run correlation
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string      `json:"code"`              // gerrors code, e.g. "CONFIG_VALIDATION"
	Message string      `json:"message"`           // human-readable message
	Details interface{} `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
			RunID:  f.RunID,
		})
	}

	// Human-readable text output
	fmt.Fprintln(f.Writer, data)
	return nil
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details interface{}) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
			RunID: f.RunID,
		})
	}

	// Human-readable error
	fmt.Fprintf(f.Writer, "Error [%s]: %s\n", code, message)
	if f.Verbose && details != nil {
		fmt.Fprintf(f.Writer, "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...interface{}) {
	if !f.Verbose {
		return
	}
	w := f.ErrWriter
	if w == nil {
		w = f.Writer
	}
	fmt.Fprintf(w, format+"\n", args...)
}

// ErrCodeGeneric is reported for errors outside the gerrors taxonomy.
const ErrCodeGeneric = "ERROR"

// ErrCodeNotFound is reported when an input file does not exist.
const ErrCodeNotFound = "NOT_FOUND"

// reportError renders err through the formatter and returns the ExitError
// the command should exit with. Missing inputs are command errors; every
// other failure is a validation or generation failure.
func reportError(f *OutputFormatter, message string, err error) error {
	code, exit := ErrCodeGeneric, ExitFailure
	var details map[string]interface{}

	var ge *gerrors.Error
	if errors.As(err, &ge) {
		code = string(ge.Code)
		details = errorDetails(ge)
	}
	if errors.Is(err, fs.ErrNotExist) {
		code, exit = ErrCodeNotFound, ExitCommandError
	}

	var detail interface{}
	if len(details) > 0 {
		detail = details
	}
	_ = f.Error(code, err.Error(), detail)
	return WrapExitError(exit, message, err)
}

func errorDetails(ge *gerrors.Error) map[string]interface{} {
	d := map[string]interface{}{}
	if ge.SpecIndex >= 0 {
		d["spec_index"] = ge.SpecIndex
	}
	if len(ge.Columns) > 0 {
		d["columns"] = ge.Columns
	}
	if len(ge.Fields) > 0 {
		d["fields"] = ge.Fields
	}
	if ge.Path != "" {
		d["path"] = ge.Path
	}
	for k, v := range ge.Details {
		d[k] = v
	}
	return d
}
