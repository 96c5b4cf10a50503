package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/samber/lo"
)

// ValidateTimeout validates timeout duration
func ValidateTimeout(timeout time.Duration, name string) error {
	if timeout <= 0 {
		return fmt.Errorf("%s timeout must be positive", name)
	}
	if timeout > 30*time.Minute {
		return fmt.Errorf("%s timeout too large (max 30 minutes)", name)
	}
	return nil
}

// ValidateURL validates URL format
func ValidateURL(url string, name string) error {
	if url == "" {
		return fmt.Errorf("%s URL is required", name)
	}

	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("%s URL must start with http:// or https://", name)
	}

	return nil
}

// ValidatePort validates port number
func ValidatePort(port int, name string) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s port must be between 1 and 65535, got %d", name, port)
	}
	return nil
}

// ValidateOneOf validates that value is one of the allowed options
func ValidateOneOf(value string, allowed []string, name string) error {
	if !lo.Contains(allowed, value) {
		return fmt.Errorf("%s must be one of [%s], got %q", name, strings.Join(allowed, ", "), value)
	}
	return nil
}

// ValidatePositive validates that a numeric setting is greater than zero
func ValidatePositive(value int64, name string) error {
	if value <= 0 {
		return fmt.Errorf("%s must be positive, got %d", name, value)
	}
	return nil
}
