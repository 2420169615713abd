package types

import "encoding/json"

// Errors is the raw "errors" block of a Mailercloud response.
// Mailercloud sends either an object or an array here.
type Errors = json.RawMessage

// ErrorDetail is one entry of an errors array.
type ErrorDetail struct {
	Code    string `json:"code"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

// HasErrors reports whether an "errors" block is present and not empty.
func HasErrors(e Errors) bool {
	switch string(e) {
	case "", "null", "[]", "{}", `""`:
		return false
	}
	return true
}

// FirstErrorCode returns the code of the first error, or "".
func FirstErrorCode(e Errors) string {
	var list []ErrorDetail
	if err := json.Unmarshal(e, &list); err == nil && len(list) > 0 {
		return list[0].Code
	}
	var one ErrorDetail
	if err := json.Unmarshal(e, &one); err == nil {
		return one.Code
	}
	return ""
}
