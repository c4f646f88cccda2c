package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"

	"github.com/eddy-neller/shop-api-sub001/internal/core/port"
)

// RandomTokenGenerator produces opaque URL-safe tokens for activation and
// password reset mails.
type RandomTokenGenerator struct {
	byteLength int
}

// NewRandomTokenGenerator constructs a generator drawing byteLength random
// bytes per token.
func NewRandomTokenGenerator(byteLength int) (*RandomTokenGenerator, error) {
	if byteLength <= 0 {
		return nil, fmt.Errorf("token byte length must be positive")
	}
	return &RandomTokenGenerator{byteLength: byteLength}, nil
}

// Generate returns a base64 URL-safe random string.
func (g *RandomTokenGenerator) Generate() (string, error) {
	buf := make([]byte, g.byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	return base64.RawURLEncoding.EncodeToString(buf), nil
}

var _ port.TokenGenerator = (*RandomTokenGenerator)(nil)
