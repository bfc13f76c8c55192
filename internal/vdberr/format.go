package vdberr

import (
	"encoding/json"
)

// jsonError is the wire representation of an Error for the HTTP transport.
type jsonError struct {
	Code      string `json:"code"`
	Kind      string `json:"kind"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	Cause     string `json:"cause,omitempty"`
	Retryable bool   `json:"retryable"`
}

// FormatJSON returns the JSON representation of err, wrapping plain errors
// as internal errors first. Suitable for the HTTP transport's error body
// and for structured logging.
func FormatJSON(err error) ([]byte, error) {
	if err == nil {
		return json.Marshal(nil)
	}

	ve, ok := err.(*Error)
	if !ok {
		ve = Wrap(CodeInternal, err)
	}

	je := jsonError{
		Code:      ve.Code,
		Kind:      string(ve.Kind),
		Message:   ve.Message,
		Field:     ve.Field,
		Retryable: ve.Retryable,
	}
	if ve.Cause != nil {
		je.Cause = ve.Cause.Error()
	}

	return json.Marshal(je)
}

// FormatForLog returns key-value pairs suitable for slog attributes.
func FormatForLog(err error) map[string]any {
	if err == nil {
		return nil
	}

	ve, ok := err.(*Error)
	if !ok {
		return map[string]any{"error": err.Error()}
	}

	result := map[string]any{
		"error_code": ve.Code,
		"kind":       string(ve.Kind),
		"message":    ve.Message,
		"retryable":  ve.Retryable,
	}
	if ve.Field != "" {
		result["field"] = ve.Field
	}
	if ve.Cause != nil {
		result["cause"] = ve.Cause.Error()
	}
	return result
}
