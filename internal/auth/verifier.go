package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	"github.com/go-jose/go-jose/v4/jwt"
)

// Verifier validates bearer tokens against the provider's published keys.
// It is safe for concurrent use.
type Verifier struct {
	keys      *KeySetCache
	audience  string
	issuer    string
	allowed   []jose.SignatureAlgorithm
	allowedBy map[string]struct{}
	leeway    time.Duration
}

// NewVerifier builds a verifier for the expected audience and issuer.
// Only the given signature algorithms are accepted; the algorithm named in
// a token's own header is never trusted.
func NewVerifier(keys *KeySetCache, audience, issuer string, algorithms []string, leeway time.Duration) *Verifier {
	v := &Verifier{
		keys:      keys,
		audience:  audience,
		issuer:    issuer,
		allowedBy: make(map[string]struct{}, len(algorithms)),
		leeway:    leeway,
	}
	for _, alg := range algorithms {
		v.allowed = append(v.allowed, jose.SignatureAlgorithm(alg))
		v.allowedBy[alg] = struct{}{}
	}
	return v
}

// Verify checks the token's signature, audience, issuer and time window and
// returns its standard claims plus the full decoded payload. Every failure
// is an *Error whose description is safe to return to the caller.
func (v *Verifier) Verify(ctx context.Context, token string) (*jwt.Claims, map[string]any, error) {
	header, err := peekHeader(token)
	if err != nil {
		return nil, nil, newAuthError(CodeMalformedToken, "Token is not a valid compact JWS.")
	}

	if _, ok := v.allowedBy[header.Alg]; !ok {
		return nil, nil, newAuthError(CodeInvalidToken, "Token algorithm is not accepted.")
	}

	key, err := v.keys.Get(ctx, header.Kid)
	if err != nil {
		return nil, nil, err
	}

	parsed, err := jwt.ParseSigned(token, v.allowed)
	if err != nil {
		return nil, nil, newAuthError(CodeMalformedToken, "Token could not be parsed.")
	}

	var claims jwt.Claims
	var payload map[string]any
	if err := parsed.Claims(key, &claims, &payload); err != nil {
		return nil, nil, newAuthError(CodeInvalidToken, "Token signature verification failed.")
	}

	expected := jwt.Expected{
		Issuer:      v.issuer,
		AnyAudience: jwt.Audience{v.audience},
		Time:        time.Now(),
	}
	if err := claims.ValidateWithLeeway(expected, v.leeway); err != nil {
		return nil, nil, newAuthError(CodeInvalidToken, validationReason(err))
	}

	return &claims, payload, nil
}

type tokenHeader struct {
	Alg string `json:"alg"`
	Kid string `json:"kid"`
}

// peekHeader decodes the JOSE header without verifying anything. It exists
// so the key id and algorithm can drive the real verification path.
func peekHeader(token string) (tokenHeader, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return tokenHeader{}, errors.New("token does not have three segments")
	}
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return tokenHeader{}, err
	}
	var header tokenHeader
	if err := json.Unmarshal(raw, &header); err != nil {
		return tokenHeader{}, err
	}
	return header, nil
}

func validationReason(err error) string {
	switch {
	case errors.Is(err, jwt.ErrExpired):
		return "Token is expired."
	case errors.Is(err, jwt.ErrIssuedInTheFuture):
		return "Token is issued in the future."
	case errors.Is(err, jwt.ErrNotValidYet):
		return "Token is not valid yet."
	case errors.Is(err, jwt.ErrInvalidAudience):
		return "Token audience does not match."
	case errors.Is(err, jwt.ErrInvalidIssuer):
		return "Token issuer does not match."
	default:
		return "Token claims are invalid."
	}
}
