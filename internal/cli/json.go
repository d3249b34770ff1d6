package cli

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"strings"

	"github.com/ferroscope/ferro/internal/errors"
)

// Machine mode flag - when true, outputs JSON and suppresses human-friendly decorations
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

// Error codes for machine-readable output.
const (
	ErrCodeConfigNotFound = "CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "CONFIG_INVALID"
	ErrCodeNodeNotFound   = "NODE_NOT_FOUND"
	ErrCodeNotLoggedIn    = "NOT_LOGGED_IN"
	ErrCodeAuthFailed     = "AUTH_FAILED"
	ErrCodeServerError    = "SERVER_ERROR"
	ErrCodeParseError     = "PARSE_ERROR"
	ErrCodeNetworkError   = "NETWORK_ERROR"
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
	env := JSONEnvelope{
		Success: false,
		Error:   ErrorToJSON(err),
	}
	return writeJSONEnvelope(w, env)
}

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

	var fErr *errors.Error
	if stderrors.As(err, &fErr) {
		out := &JSONError{
			Code:       mapErrorCode(fErr.Code, fErr.Message),
			Message:    fErr.Message,
			Suggestion: fErr.Suggestion,
		}
		if fErr.Status != 0 {
			out.Details = map[string]interface{}{"status": fErr.Status}
		}
		return out
	}

	return &JSONError{
		Code:    ErrCodeUnknown,
		Message: err.Error(),
	}
}

// mapErrorCode maps internal error codes to machine-readable codes.
func mapErrorCode(internalCode, message string) string {
	msgLower := strings.ToLower(message)

	switch internalCode {
	case errors.ErrConfig:
		if strings.HasPrefix(msgLower, "node ") && strings.Contains(msgLower, "not found") {
			return ErrCodeNodeNotFound
		}
		if strings.Contains(msgLower, "not found") {
			return ErrCodeConfigNotFound
		}
		return ErrCodeConfigInvalid
	case errors.ErrAuth:
		if strings.Contains(msgLower, "not logged in") || strings.Contains(msgLower, "expired") {
			return ErrCodeNotLoggedIn
		}
		return ErrCodeAuthFailed
	case errors.ErrServer:
		return ErrCodeServerError
	case errors.ErrParse:
		return ErrCodeParseError
	case errors.ErrNetwork:
		return ErrCodeNetworkError
	}

	return ErrCodeUnknown
}
