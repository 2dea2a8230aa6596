package auth

import "fmt"

// Error codes, mirrored into the error envelope of unauthorized responses.
const (
	CodeMalformedToken    = "malformed_token"
	CodeKeyNotFound       = "key_not_found"
	CodeKeySetUnavailable = "keyset_unavailable"
	CodeInvalidToken      = "invalid_token"
)

// Error is a token-verification failure with a machine code and a
// human-readable description. Descriptions never contain token or key
// material.
type Error struct {
	Code        string
	Description string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func newAuthError(code, description string) *Error {
	return &Error{Code: code, Description: description}
}
