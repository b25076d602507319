package cookies

import (
	"os"
	"time"
)

// EnvironmentStore implements Store using environment variables. It lets
// CI jobs and one-off runs supply an msToken without touching disk.
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based jar store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(jar *Jar) error {
	return ErrStoreUnavailable
}

// Retrieve builds a jar from TOKSCRAPER_MS_TOKEN and TOKSCRAPER_SESSION_ID
func (e *EnvironmentStore) Retrieve(name string) (*Jar, error) {
	msToken := os.Getenv("TOKSCRAPER_MS_TOKEN")
	sessionID := os.Getenv("TOKSCRAPER_SESSION_ID")

	if msToken == "" && sessionID == "" {
		return nil, ErrJarNotFound
	}

	// Environment variables don't carry a jar name, so we use "default"
	// or the requested one
	if name == "" {
		name = "default"
	}

	jar := &Jar{
		Name:         name,
		LastModified: time.Now(),
	}
	if msToken != "" {
		jar.Cookies = append(jar.Cookies, Cookie{Name: "msToken", Value: msToken, Secure: true}.Normalize())
	}
	if sessionID != "" {
		jar.Cookies = append(jar.Cookies, Cookie{Name: "sessionid", Value: sessionID, HTTPOnly: true, Secure: true}.Normalize())
	}

	return jar, nil
}

// List returns a single jar if environment variables are set
func (e *EnvironmentStore) List() ([]*Jar, error) {
	jar, err := e.Retrieve("")
	if err != nil {
		return []*Jar{}, nil
	}
	return []*Jar{jar}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment cookies exist
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv("TOKSCRAPER_MS_TOKEN") != "" || os.Getenv("TOKSCRAPER_SESSION_ID") != ""
}
