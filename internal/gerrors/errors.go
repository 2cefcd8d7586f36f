// Package gerrors defines the typed error taxonomy shared by every stage of
// a generation run.
//
// All failures surface as *Error values carrying a Code plus enough context
// (spec index, column names, offending fields, artifact path) to locate the
// faulty configuration entry. Callers classify errors with the IsX helpers,
// which see through wrapping via errors.As.
package gerrors

import (
	"errors"
	"fmt"
	"strings"
)

// Code categorizes generation errors.
type Code string

const (
	// CodeConfigValidation indicates a malformed or incomplete configuration.
	CodeConfigValidation Code = "CONFIG_VALIDATION"

	// CodeUnknownStrategy indicates a strategy name with no registry entry.
	CodeUnknownStrategy Code = "UNKNOWN_STRATEGY"

	// CodeInvalidStrategyConfig indicates strategy params failed validation.
	CodeInvalidStrategyConfig Code = "INVALID_STRATEGY_CONFIG"

	// CodeInvalidMask indicates a mask that does not parse or references
	// columns that do not exist yet.
	CodeInvalidMask Code = "INVALID_MASK"

	// CodeDistributionSum indicates weights that do not sum to 100.
	CodeDistributionSum Code = "DISTRIBUTION_SUM"

	// CodeUniquenessExhausted indicates the resample budget ran out before
	// enough distinct values were produced.
	CodeUniquenessExhausted Code = "UNIQUENESS_EXHAUSTED"

	// CodeTransportWrite indicates a failed send to a message transport.
	CodeTransportWrite Code = "TRANSPORT_WRITE"

	// CodeWriter indicates a file encoder failure.
	CodeWriter Code = "WRITER"
)

// Error is the single error type produced by the generation core.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is a human-readable description.
	Message string

	// SpecIndex is the position of the offending column spec, or -1.
	SpecIndex int

	// Columns are the target columns of the offending spec.
	Columns []string

	// Fields names offending parameters, identifiers or config keys.
	Fields []string

	// Path is the artifact path or transport destination, when relevant.
	Path string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Code))
	b.WriteString(": ")
	b.WriteString(e.Message)

	var ctx []string
	if e.SpecIndex >= 0 {
		ctx = append(ctx, fmt.Sprintf("spec=%d", e.SpecIndex))
	}
	if len(e.Columns) > 0 {
		ctx = append(ctx, "columns="+strings.Join(e.Columns, ","))
	}
	if len(e.Fields) > 0 {
		ctx = append(ctx, "fields="+strings.Join(e.Fields, ","))
	}
	if e.Path != "" {
		ctx = append(ctx, "path="+e.Path)
	}
	if len(ctx) > 0 {
		b.WriteString(" (")
		b.WriteString(strings.Join(ctx, ", "))
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithSpec attaches the spec index and target columns when they are not
// already set. It returns e for chaining.
func (e *Error) WithSpec(index int, columns []string) *Error {
	if e.SpecIndex < 0 {
		e.SpecIndex = index
	}
	if len(e.Columns) == 0 {
		e.Columns = append([]string(nil), columns...)
	}
	return e
}

// AttachSpec annotates err with spec context if it is an *Error. Other
// errors are wrapped in a config validation error so every failure leaving
// the processor is typed.
func AttachSpec(err error, index int, columns []string) error {
	if err == nil {
		return nil
	}
	var ge *Error
	if errors.As(err, &ge) {
		ge.WithSpec(index, columns)
		return err
	}
	return &Error{
		Code:      CodeConfigValidation,
		Message:   "column spec failed",
		SpecIndex: index,
		Columns:   append([]string(nil), columns...),
		Err:       err,
	}
}

func newError(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, SpecIndex: -1}
}

// NewConfigValidationError creates an error for malformed configuration.
func NewConfigValidationError(msg string, fields ...string) *Error {
	e := newError(CodeConfigValidation, msg)
	e.Fields = fields
	return e
}

// NewUnknownStrategyError creates an error for an unresolvable strategy name.
func NewUnknownStrategyError(name string) *Error {
	e := newError(CodeUnknownStrategy, fmt.Sprintf("unknown strategy %q", name))
	e.Details = map[string]string{"strategy": name}
	return e
}

// NewInvalidStrategyConfigError creates an error for strategy params that
// failed validation.
func NewInvalidStrategyConfigError(strategy, msg string, fields ...string) *Error {
	e := newError(CodeInvalidStrategyConfig, msg)
	e.Fields = fields
	e.Details = map[string]string{"strategy": strategy}
	return e
}

// NewInvalidMaskError creates an error for a mask expression. identifiers
// lists unknown column references and may be empty for parse failures.
func NewInvalidMaskError(expr, msg string, identifiers ...string) *Error {
	e := newError(CodeInvalidMask, msg)
	e.Fields = identifiers
	e.Details = map[string]string{"mask": expr}
	return e
}

// NewDistributionSumError creates an error for weights not summing to 100.
func NewDistributionSumError(strategy string, sum float64) *Error {
	e := newError(CodeDistributionSum, fmt.Sprintf("distribution weights must sum to 100, got %g", sum))
	e.Details = map[string]string{
		"strategy": strategy,
		"sum":      fmt.Sprintf("%g", sum),
	}
	return e
}

// NewUniquenessExhaustedError creates an error for a column whose value
// space cannot satisfy the remaining unique row demand.
func NewUniquenessExhaustedError(column string, needed, produced int) *Error {
	e := newError(CodeUniquenessExhausted,
		fmt.Sprintf("could not produce %d unique values, got %d", needed, produced))
	e.Columns = []string{column}
	e.Details = map[string]string{
		"needed":   fmt.Sprintf("%d", needed),
		"produced": fmt.Sprintf("%d", produced),
	}
	return e
}

// Transport operations named by NewTransportError.
const (
	OpConnect    = "connect"
	OpSend       = "send"
	OpDisconnect = "disconnect"
)

// NewTransportWriteError creates an error for a failed transport send.
func NewTransportWriteError(transport, destination string, err error) *Error {
	return NewTransportError(transport, OpSend, destination, err)
}

// NewTransportError creates a CodeTransportWrite error for the given
// transport operation.
func NewTransportError(transport, op, destination string, err error) *Error {
	e := newError(CodeTransportWrite, fmt.Sprintf("%s %s failed", transport, op))
	e.Path = destination
	e.Details = map[string]string{"transport": transport, "op": op}
	e.Err = err
	return e
}

// NewWriterError creates an error for a file encoder failure.
func NewWriterError(format, path string, err error) *Error {
	e := newError(CodeWriter, fmt.Sprintf("%s encoder failed", format))
	e.Path = path
	e.Details = map[string]string{"format": format}
	e.Err = err
	return e
}

func hasCode(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}

// CodeOf returns the code of the first *Error in err's chain, or "".
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsConfigValidationError reports whether err is a configuration error.
func IsConfigValidationError(err error) bool { return hasCode(err, CodeConfigValidation) }

// IsUnknownStrategyError reports whether err is an unknown strategy error.
func IsUnknownStrategyError(err error) bool { return hasCode(err, CodeUnknownStrategy) }

// IsInvalidStrategyConfigError reports whether err is a strategy param error.
func IsInvalidStrategyConfigError(err error) bool {
	return hasCode(err, CodeInvalidStrategyConfig)
}

// IsInvalidMaskError reports whether err is a mask error.
func IsInvalidMaskError(err error) bool { return hasCode(err, CodeInvalidMask) }

// IsDistributionSumError reports whether err is a weight sum error.
func IsDistributionSumError(err error) bool { return hasCode(err, CodeDistributionSum) }

// IsUniquenessExhaustedError reports whether err is a uniqueness error.
func IsUniquenessExhaustedError(err error) bool { return hasCode(err, CodeUniquenessExhausted) }

// IsTransportWriteError reports whether err is a transport send error.
func IsTransportWriteError(err error) bool { return hasCode(err, CodeTransportWrite) }

// IsWriterError reports whether err is a file encoder error.
func IsWriterError(err error) bool { return hasCode(err, CodeWriter) }
