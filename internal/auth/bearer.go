package auth

import (
	"strings"

	"github.com/ErlanBelekov/geoquiz/internal/domain"
)

const bearerPrefix = "Bearer "

// ExtractBearer returns the token from an Authorization header value.
func ExtractBearer(header string) (string, error) {
	if header == "" {
		return "", domain.ErrMissingCredential
	}
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", domain.ErrMalformedCredential
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "", domain.ErrMalformedCredential
	}
	return token, nil
}
