package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	apierrors "github.com/diogo/bookrag/internal/errors"
	"github.com/diogo/bookrag/internal/models"
)

// Credentials holds the CSRF token and session cookie issued by the service
type Credentials struct {
	mu        sync.RWMutex `json:"-"`
	CSRFToken string       `json:"csrf_token"`
	Session   string       `json:"session,omitempty"`
}

// CSRF returns the CSRF token in a thread-safe manner
func (c *Credentials) CSRF() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.CSRFToken
}

// Cookies returns the cookies to send with every request (thread-safe)
func (c *Credentials) Cookies() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m := map[string]string{
		models.CookieCSRF: c.CSRFToken,
	}
	if c.Session != "" {
		m[models.CookieSession] = c.Session
	}
	return m
}

// Set updates both values atomically
func (c *Credentials) Set(csrf, session string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CSRFToken = csrf
	c.Session = session
}

// CookieListItem represents a cookie in browser export format
type CookieListItem struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// LoadCredentials loads credentials from the credentials file
func LoadCredentials() (*Credentials, error) {
	path, err := GetCredentialsPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w. Please import cookies first:\n  bookrag import-cookies <path-to-cookies.json>", apierrors.ErrNoCredentials)
		}
		return nil, fmt.Errorf("failed to read credentials file: %w", err)
	}

	return parseCredentials(data)
}

// parseCredentials parses credentials from JSON data.
// Supports both list format [{name, value}] and dict format {name: value}.
func parseCredentials(data []byte) (*Credentials, error) {
	var dictFormat map[string]string
	if err := json.Unmarshal(data, &dictFormat); err == nil {
		csrf, ok := dictFormat[models.CookieCSRF]
		if !ok || csrf == "" {
			return nil, fmt.Errorf("missing required cookie: %s", models.CookieCSRF)
		}
		return &Credentials{
			CSRFToken: csrf,
			Session:   dictFormat[models.CookieSession],
		}, nil
	}

	var listFormat []CookieListItem
	if err := json.Unmarshal(data, &listFormat); err == nil {
		creds := &Credentials{}
		for _, item := range listFormat {
			switch item.Name {
			case models.CookieCSRF:
				creds.CSRFToken = item.Value
			case models.CookieSession:
				creds.Session = item.Value
			}
		}

		if creds.CSRFToken == "" {
			return nil, fmt.Errorf("missing required cookie: %s", models.CookieCSRF)
		}
		return creds, nil
	}

	return nil, fmt.Errorf("invalid cookies format: expected list [{name, value}] or dict {name: value}")
}

// SaveCredentials saves credentials to the credentials file
func SaveCredentials(creds *Credentials) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	cookies := creds.Cookies()
	listFormat := []CookieListItem{
		{Name: models.CookieCSRF, Value: cookies[models.CookieCSRF]},
	}
	if session, ok := cookies[models.CookieSession]; ok {
		listFormat = append(listFormat, CookieListItem{Name: models.CookieSession, Value: session})
	}

	data, err := json.MarshalIndent(listFormat, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}

	// Owner read/write only
	if err := os.WriteFile(filepath.Join(configDir, "cookies.json"), data, 0o600); err != nil {
		return fmt.Errorf("failed to write credentials file: %w", err)
	}

	return nil
}

// ImportCredentials imports credentials from a cookie export file
func ImportCredentials(sourcePath string) (*Credentials, error) {
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("source file not found: %s", sourcePath)
		}
		return nil, fmt.Errorf("could not read file: %w", err)
	}

	creds, err := parseCredentials(data)
	if err != nil {
		return nil, err
	}

	return creds, SaveCredentials(creds)
}

// ValidateCredentials checks that credentials can authenticate a request
func ValidateCredentials(creds *Credentials) error {
	if creds == nil {
		return apierrors.ErrNoCredentials
	}
	if creds.CSRF() == "" {
		return fmt.Errorf("missing required cookie: %s", models.CookieCSRF)
	}
	return nil
}
