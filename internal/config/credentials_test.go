package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	apierrors "github.com/diogo/bookrag/internal/errors"
)

func TestParseCredentials_DictFormat(t *testing.T) {
	data := []byte(`{"csrf_token": "tok", "session": "sess"}`)

	creds, err := parseCredentials(data)
	if err != nil {
		t.Fatalf("parseCredentials() returned error: %v", err)
	}
	if creds.CSRF() != "tok" {
		t.Errorf("CSRF() = %s, want tok", creds.CSRF())
	}
	if creds.Session != "sess" {
		t.Errorf("Session = %s, want sess", creds.Session)
	}
}

func TestParseCredentials_DictFormat_MissingCSRF(t *testing.T) {
	_, err := parseCredentials([]byte(`{"session": "sess"}`))
	if err == nil {
		t.Error("parseCredentials() without csrf_token should return error")
	}
}

func TestParseCredentials_ListFormat(t *testing.T) {
	data := []byte(`[
		{"name": "csrf_token", "value": "tok"},
		{"name": "session", "value": "sess"},
		{"name": "_ga", "value": "ignored"}
	]`)

	creds, err := parseCredentials(data)
	if err != nil {
		t.Fatalf("parseCredentials() returned error: %v", err)
	}
	if creds.CSRFToken != "tok" || creds.Session != "sess" {
		t.Errorf("creds = %+v", creds)
	}
}

func TestParseCredentials_ListFormat_MissingCSRF(t *testing.T) {
	_, err := parseCredentials([]byte(`[{"name": "session", "value": "sess"}]`))
	if err == nil {
		t.Error("parseCredentials() without csrf_token should return error")
	}
}

func TestParseCredentials_InvalidJSON(t *testing.T) {
	_, err := parseCredentials([]byte(`not json`))
	if err == nil {
		t.Error("parseCredentials() with invalid JSON should return error")
	}
}

func TestCredentials_Cookies(t *testing.T) {
	creds := &Credentials{CSRFToken: "tok"}
	cookies := creds.Cookies()
	if len(cookies) != 1 || cookies["csrf_token"] != "tok" {
		t.Errorf("Cookies() = %v", cookies)
	}

	creds.Set("tok2", "sess")
	cookies = creds.Cookies()
	if cookies["csrf_token"] != "tok2" || cookies["session"] != "sess" {
		t.Errorf("Cookies() after Set = %v", cookies)
	}
}

func TestValidateCredentials(t *testing.T) {
	if err := ValidateCredentials(nil); !errors.Is(err, apierrors.ErrNoCredentials) {
		t.Errorf("ValidateCredentials(nil) = %v, want ErrNoCredentials", err)
	}
	if err := ValidateCredentials(&Credentials{}); err == nil {
		t.Error("ValidateCredentials() with empty token should fail")
	}
	if err := ValidateCredentials(&Credentials{CSRFToken: "tok"}); err != nil {
		t.Errorf("ValidateCredentials() = %v", err)
	}
}

func TestLoadCredentials_FileNotExists(t *testing.T) {
	setupConfigTestEnv(t)

	_, err := LoadCredentials()
	if !errors.Is(err, apierrors.ErrNoCredentials) {
		t.Errorf("LoadCredentials() = %v, want ErrNoCredentials", err)
	}
}

func TestSaveAndLoadCredentials(t *testing.T) {
	tmpDir := setupConfigTestEnv(t)

	if err := SaveCredentials(&Credentials{CSRFToken: "tok", Session: "sess"}); err != nil {
		t.Fatalf("SaveCredentials() returned error: %v", err)
	}

	info, err := os.Stat(filepath.Join(tmpDir, ".bookrag", "cookies.json"))
	if err != nil {
		t.Fatalf("Failed to stat credentials file: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("File permissions = %o, want 600", perm)
	}

	loaded, err := LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials() returned error: %v", err)
	}
	if loaded.CSRFToken != "tok" || loaded.Session != "sess" {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestImportCredentials(t *testing.T) {
	tmpDir := setupConfigTestEnv(t)

	if _, err := ImportCredentials(filepath.Join(tmpDir, "missing.json")); err == nil {
		t.Error("ImportCredentials() with missing source should fail")
	}

	src := filepath.Join(tmpDir, "export.json")
	if err := os.WriteFile(src, []byte(`{"csrf_token": "imported"}`), 0o600); err != nil {
		t.Fatalf("Failed to write source: %v", err)
	}

	creds, err := ImportCredentials(src)
	if err != nil {
		t.Fatalf("ImportCredentials() returned error: %v", err)
	}
	if creds.CSRF() != "imported" {
		t.Errorf("CSRF() = %s, want imported", creds.CSRF())
	}

	loaded, err := LoadCredentials()
	if err != nil {
		t.Fatalf("LoadCredentials() returned error: %v", err)
	}
	if loaded.CSRF() != "imported" {
		t.Errorf("persisted CSRF = %s, want imported", loaded.CSRF())
	}
}
