package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/rileyhilliard/procmon/internal/errors"
	"github.com/rileyhilliard/procmon/internal/gateway"
)

// machineMode is set by --format json: errors are written as JSON to stdout
var machineMode bool

// MachineMode returns true if machine-readable output is enabled
func MachineMode() bool {
	return machineMode
}

// JSONEnvelope wraps command output in a consistent structure for machine parsing.
// All --json output should use this envelope.
type JSONEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *JSONError  `json:"error,omitempty"`
}

// JSONError provides structured error information for machine parsing.
type JSONError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
	Details    interface{} `json:"details,omitempty"`
}

// Error codes for machine-readable output. Scripts branch on these rather
// than on message text.
const (
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeCommandFailed  = "COMMAND_FAILED"
	ErrCodeParseFailed    = "PARSE_FAILED"
	ErrCodeTimeout        = "TIMEOUT"
	ErrCodeLimitExceeded  = "LIMIT_EXCEEDED"
	ErrCodeFilterInvalid  = "FILTER_INVALID"
	ErrCodeProcessFailed  = "PROCESS_FAILED"
	ErrCodeUnknown        = "UNKNOWN"
)

// WriteJSONSuccess writes a successful response with data to the writer.
func WriteJSONSuccess(w io.Writer, data interface{}) error {
	env := JSONEnvelope{
		Success: true,
		Data:    data,
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONError writes an error response to the writer.
func WriteJSONError(w io.Writer, code, message, suggestion string, details interface{}) error {
	env := JSONEnvelope{
		Success: false,
		Error: &JSONError{
			Code:       code,
			Message:    message,
			Suggestion: suggestion,
			Details:    details,
		},
	}
	return writeJSONEnvelope(w, env)
}

// WriteJSONFromError converts a Go error to a JSON error response.
func WriteJSONFromError(w io.Writer, err error) error {
	jsonErr := ErrorToJSON(err)
	env := JSONEnvelope{
		Success: false,
		Error:   jsonErr,
	}
	return writeJSONEnvelope(w, env)
}

// writeJSONEnvelope writes the envelope with consistent formatting.
func writeJSONEnvelope(w io.Writer, env JSONEnvelope) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}

// ErrorToJSON converts a Go error to a JSONError with appropriate code mapping.
func ErrorToJSON(err error) *JSONError {
	if err == nil {
		return nil
	}

	var pmErr *errors.Error
	if stderrors.As(err, &pmErr) {
		jsonErr := &JSONError{
			Code:       mapErrorCode(pmErr.Code, pmErr.Message),
			Message:    pmErr.Message,
			Suggestion: pmErr.Suggestion,
		}
		details := map[string]interface{}{}
		if pmErr.Cause != nil {
			details["cause"] = pmErr.Cause.Error()
		}
		if reason := gateway.ReasonOf(err); reason != "" {
			details["reason"] = string(reason)
		}
		if len(details) > 0 {
			jsonErr.Details = details
		}
		return jsonErr
	}

	if reason := gateway.ReasonOf(err); reason != "" {
		return &JSONError{
			Code:    ErrCodeCommandFailed,
			Message: err.Error(),
			Details: map[string]interface{}{"reason": string(reason)},
		}
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	switch internalCode {
	case errors.ErrConfig:
		// Distinguish between not found and invalid
		msgLower := strings.ToLower(message)
		if strings.Contains(msgLower, "not found") || strings.Contains(msgLower, "couldn't find") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrGateway:
		return ErrCodeCommandFailed
	case errors.ErrParse:
		return ErrCodeParseFailed
	case errors.ErrTimeout:
		return ErrCodeTimeout
	case errors.ErrLimit:
		return ErrCodeLimitExceeded
	case errors.ErrFilter:
		return ErrCodeFilterInvalid
	case errors.ErrProcess:
		return ErrCodeProcessFailed
	}

	return ErrCodeUnknown
}
