package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/reaperofpower/vnstat-dashboard/internal/models"
)

// Service handles authentication operations
type Service struct {
	config *models.AuthConfig
}

// NewService creates a new authentication service
func NewService(config *models.AuthConfig) *Service {
	return &Service{
		config: config,
	}
}

// IsEnabled returns whether authentication is enabled
func (s *Service) IsEnabled() bool {
	return s.config != nil && s.config.Enabled
}

// ValidateAPIToken validates API token and returns token info
func (s *Service) ValidateAPIToken(tokenString string) (*models.APIToken, error) {
	if !s.IsEnabled() {
		return &models.APIToken{
			Token:       "disabled",
			Name:        "Authentication Disabled",
			Permissions: []string{"metrics", "read", "report", "admin"},
		}, nil
	}

	for _, token := range s.config.API.Tokens {
		if token.Token == tokenString {
			if token.IsExpired() {
				return nil, fmt.Errorf("token %q is expired", token.Name)
			}
			tokenCopy := token
			return &tokenCopy, nil
		}
	}

	return nil, fmt.Errorf("unknown token")
}

// GenerateToken creates a new random token value with the given prefix
func GenerateToken(prefix string) (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return prefix + "_" + hex.EncodeToString(buf), nil
}
