// Package credential acquires the Bitbucket username and password.
// Environment variables take priority; the system keyring is the
// fallback. Values are handed to the transport as-is and never logged.
package credential

import (
	"errors"
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const (
	serviceName = "bbctl"

	// EnvUsername and EnvPassword override the keyring when set.
	EnvUsername = "BBCTL_USERNAME"
	EnvPassword = "BBCTL_PASSWORD"

	usernameKey = "username"
	passwordKey = "password"
)

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/bbctl/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("bbctl-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Lookup resolves the username and password, environment first.
func Lookup() (username, password string, err error) {
	username = os.Getenv(EnvUsername)
	password = os.Getenv(EnvPassword)
	if username != "" && password != "" {
		return username, password, nil
	}

	ring, err := openKeyring()
	if err != nil {
		return "", "", err
	}

	if username == "" {
		username, err = get(ring, usernameKey)
		if err != nil {
			return "", "", err
		}
	}
	if password == "" {
		password, err = get(ring, passwordKey)
		if err != nil {
			return "", "", err
		}
	}
	return username, password, nil
}

// Store saves the username and password in the system keyring.
func Store(username, password string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	if err := set(ring, usernameKey, username); err != nil {
		return err
	}
	return set(ring, passwordKey, password)
}

// Clear removes stored credentials from the system keyring.
func Clear() error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	for _, key := range []string{usernameKey, passwordKey} {
		if err := ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			return fmt.Errorf("deleting credential %q: %w", key, err)
		}
	}
	return nil
}

func get(ring keyring.Keyring, key string) (string, error) {
	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

func set(ring keyring.Keyring, key, value string) error {
	err := ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}
