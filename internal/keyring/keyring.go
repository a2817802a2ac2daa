// ABOUTME: OS keyring storage for the Oura personal access token
// ABOUTME: Wraps go-keyring with package-level sentinel errors
package keyring

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	service       = "olympus"
	ouraTokenUser = "oura-token"
)

var (
	// ErrNotFound is returned when no token is stored in the keyring
	ErrNotFound = errors.New("token not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring cannot be reached
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

// GetOuraToken returns the stored Oura token
func GetOuraToken() (string, error) {
	token, err := keyring.Get(service, ouraTokenUser)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return token, nil
}

// SetOuraToken stores the Oura token
func SetOuraToken(token string) error {
	if token == "" {
		return errors.New("token cannot be empty")
	}
	if err := keyring.Set(service, ouraTokenUser, token); err != nil {
		return fmt.Errorf("failed to store token in keyring: %w", err)
	}
	return nil
}

// DeleteOuraToken removes the stored Oura token
func DeleteOuraToken() error {
	if err := keyring.Delete(service, ouraTokenUser); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete token from keyring: %w", err)
	}
	return nil
}

// ResolveOuraToken picks the first non-empty token from flag, env and keyring, in that order.
// A keyring miss or outage yields "".
func ResolveOuraToken(flag, env string) string {
	if flag != "" {
		return flag
	}
	if env != "" {
		return env
	}
	token, err := GetOuraToken()
	if err != nil {
		return ""
	}
	return token
}
