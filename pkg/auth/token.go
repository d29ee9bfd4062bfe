package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// TokenVerifier verifies HMAC-signed bearer tokens and resolves them into
// user context.
type TokenVerifier struct {
	key       []byte
	extractor *ClaimsExtractor
}

// NewTokenVerifier creates a verifier for HS256-signed tokens. A nil
// extractor falls back to DefaultClaimsExtractor.
func NewTokenVerifier(key []byte, extractor *ClaimsExtractor) *TokenVerifier {
	if extractor == nil {
		extractor = DefaultClaimsExtractor()
	}
	return &TokenVerifier{key: key, extractor: extractor}
}

// Verify parses and validates the token, then extracts the caller's identity
// and resolved permission set from its claims.
func (v *TokenVerifier) Verify(tokenString string) (*UserContext, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return v.key, nil
	})
	if err != nil {
		return nil, fmt.Errorf("parsing token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("unexpected claims type %T", token.Claims)
	}

	uc := v.extractor.Extract(map[string]any(claims))
	if uc.UserID == "" {
		return nil, fmt.Errorf("token has no subject claim")
	}
	return uc, nil
}
