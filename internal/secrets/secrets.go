package secrets

import (
	"errors"
	"fmt"
	"strings"

	"founderreach-engine/internal/config"

	"github.com/zalando/go-keyring"
)

const (
	// “Service” groups the app’s secrets in the OS keychain.
	KeyringService = "founderreach"

	geminiAccount = "founderreach:gemini:api-key"
)

var ErrNotFound = errors.New("secret not found in keychain")

func GetLinkedInPassword(keyringAccount string) (string, error) {
	if strings.TrimSpace(keyringAccount) == "" {
		return "", errors.New("keyring account name is empty")
	}
	pw, err := keyring.Get(KeyringService, keyringAccount)
	if err != nil || strings.TrimSpace(pw) == "" {
		return "", ErrNotFound
	}
	return pw, nil
}

func SetLinkedInPassword(keyringAccount string, password string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, keyringAccount, password)
}

func DeleteLinkedInPassword(keyringAccount string) error {
	if strings.TrimSpace(keyringAccount) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, keyringAccount)
}

func LinkedInKeyringAccount(cfg config.Config) string {
	return fmt.Sprintf("founderreach:linkedin:%s", cfg.LinkedIn.Email)
}

func GetGeminiKey() (string, error) {
	key, err := keyring.Get(KeyringService, geminiAccount)
	if err != nil || strings.TrimSpace(key) == "" {
		return "", ErrNotFound
	}
	return key, nil
}

func SetGeminiKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("API key is empty")
	}
	return keyring.Set(KeyringService, geminiAccount, key)
}

func DeleteGeminiKey() error {
	return keyring.Delete(KeyringService, geminiAccount)
}
