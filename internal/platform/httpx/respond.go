// Package httpx provides HTTP response utilities following the GeePOS
// response convention: success bodies carry result_code "200" and business
// data nested under an endpoint-specific key rather than a uniform envelope.
package httpx

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// Envelope is a GeePOS response body keyed by endpoint-specific names.
type Envelope map[string]any

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK sends a success body with result_code "200" and the payload nested
// under key. Clients branch on the key name, so callers must use the exact
// field the endpoint documents (user_info, products, exports, ...).
func OK(w http.ResponseWriter, key string, payload any) {
	body := Envelope{"result_code": "200"}
	if key != "" {
		body[key] = payload
	}
	JSON(w, http.StatusOK, body)
}

// OKStatus is OK with a non-200 HTTP status. The body still carries
// result_code mirroring the status so clients branching on result_code see
// the same signal.
func OKStatus(w http.ResponseWriter, status int, key string, payload any) {
	body := Envelope{"result_code": strconv.Itoa(status)}
	if key != "" {
		body[key] = payload
	}
	JSON(w, status, body)
}

// OKFields sends a success body with result_code "200" and every field of
// extra merged in. Used by endpoints that return more than one top-level key.
func OKFields(w http.ResponseWriter, extra Envelope) {
	body := Envelope{"result_code": "200"}
	for k, v := range extra {
		body[k] = v
	}
	JSON(w, http.StatusOK, body)
}

// Fail sends an error body carrying the stringified status as result_code
// and a human-readable message.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{
		"result_code": strconv.Itoa(status),
		"message":     message,
	})
}

// DecodeJSON decodes the JSON request body into target. Unknown fields are
// rejected so a misspelled key fails loudly instead of being dropped.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(target)
}
