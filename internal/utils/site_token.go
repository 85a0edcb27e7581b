package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/astracore/crm-backend/internal/constants"
)

// GenerateSiteToken generates a random hex token for widget authentication
func GenerateSiteToken() (string, error) {
	bytes := make([]byte, constants.SiteTokenLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(bytes), nil
}
