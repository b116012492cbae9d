// Package httputil provides shared HTTP utilities for response encoding and
// for the mock server's own error responses.
package httputil

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Content types used by EncodeBody.
const (
	ContentTypeJSON = "application/json"
	ContentTypeText = "text/plain; charset=utf-8"
)

// EncodeBody converts a response payload to the bytes written on the wire
// and the Content-Type that describes them. Strings are sent verbatim as
// text, byte slices verbatim with a sniffed type, json.RawMessage verbatim as
// JSON, and every other value is JSON-encoded. A nil payload encodes to no
// bytes and no content type.
func EncodeBody(v any) ([]byte, string, error) {
	switch body := v.(type) {
	case nil:
		return nil, "", nil
	case string:
		return []byte(body), ContentTypeText, nil
	case json.RawMessage:
		return []byte(body), ContentTypeJSON, nil
	case []byte:
		return body, http.DetectContentType(body), nil
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, "", fmt.Errorf("encoding response body of type %T: %w", v, err)
		}
		return data, ContentTypeJSON, nil
	}
}

// WriteJSON writes a JSON response with the given status code.
// It sets the Content-Type header to application/json.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", ContentTypeJSON)
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes a JSON error response with the given status code.
// The error response includes an error code and a human-readable message.
func WriteError(w http.ResponseWriter, status int, errCode, message string) {
	WriteJSON(w, status, map[string]string{
		"error":   errCode,
		"message": message,
	})
}

// WriteNotFound writes a 404 Not Found error response.
func WriteNotFound(w http.ResponseWriter, errCode, message string) {
	WriteError(w, http.StatusNotFound, errCode, message)
}
