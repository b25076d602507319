package cookies

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// DefaultDomain is applied to cookies whose export omitted the domain.
const DefaultDomain = ".tiktok.com"

// Cookie is a single browser cookie in the shape the execution context
// understands and file jars serialize.
type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	HTTPOnly bool      `json:"httpOnly,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
}

// Normalize fills in the domain and path fields cookie exports often omit.
func (c Cookie) Normalize() Cookie {
	if c.Domain == "" {
		c.Domain = DefaultDomain
	}
	if c.Path == "" {
		c.Path = "/"
	}
	return c
}

// Jar is a named set of cookies for one TikTok browsing identity.
type Jar struct {
	Name         string    `json:"name"`
	Cookies      []Cookie  `json:"cookies"`
	LastModified time.Time `json:"last_modified"`
}

// MSToken returns the msToken value if the jar carries one. The token is
// what makes search and recommendation endpoints return personalized
// rather than thin logged-out results.
func (j *Jar) MSToken() string {
	for _, c := range j.Cookies {
		if c.Name == "msToken" {
			return c.Value
		}
	}
	return ""
}

// Get returns the named cookie and whether it was present.
func (j *Jar) Get(name string) (Cookie, bool) {
	for _, c := range j.Cookies {
		if c.Name == name {
			return c, true
		}
	}
	return Cookie{}, false
}

// Store is the interface for storing and retrieving cookie jars
type Store interface {
	// Store saves a cookie jar
	Store(jar *Jar) error

	// Retrieve gets the jar with the given name
	Retrieve(name string) (*Jar, error)

	// List returns all stored jars
	List() ([]*Jar, error)

	// Delete removes the jar with the given name
	Delete(name string) error

	// Exists checks if a jar exists for a name
	Exists(name string) bool
}

// Manager handles jar storage with fallback mechanisms
type Manager struct {
	stores []Store
}

// NewManager creates a new jar manager with appropriate storage backends
func NewManager() (*Manager, error) {
	var stores []Store

	// Try keyring first (system keychain)
	keyringStore, err := NewKeyringStore()
	if err == nil {
		stores = append(stores, keyringStore)
	}

	// Always add encrypted file store as fallback
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "jars.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to create encrypted store: %w", err)
	}
	stores = append(stores, encryptedStore)

	// Add environment store as last resort
	stores = append(stores, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerFor creates a manager whose primary backend matches the
// configured store kind ("file", "keyring" or "encrypted"). The
// environment store always closes the chain so TOKSCRAPER_MS_TOKEN
// keeps working regardless of backend.
func NewManagerFor(kind string) (*Manager, error) {
	configDir, err := getConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config directory: %w", err)
	}

	var stores []Store
	switch kind {
	case "file":
		stores = append(stores, NewFileStore(filepath.Join(configDir, "jars")))
	case "keyring":
		keyringStore, err := NewKeyringStore()
		if err != nil {
			return nil, fmt.Errorf("keyring backend requested but unavailable: %w", err)
		}
		stores = append(stores, keyringStore)
	case "encrypted":
		encryptedStore, err := NewEncryptedFileStore(filepath.Join(configDir, "jars.enc"))
		if err != nil {
			return nil, fmt.Errorf("failed to create encrypted store: %w", err)
		}
		stores = append(stores, encryptedStore)
	default:
		return NewManager()
	}

	stores = append(stores, NewEnvironmentStore())
	return &Manager{stores: stores}, nil
}

// Store saves a jar using the first available store
func (m *Manager) Store(jar *Jar) error {
	if jar == nil || jar.Name == "" {
		return errors.New("jar name is required")
	}
	if len(jar.Cookies) == 0 {
		return errors.New("jar has no cookies")
	}

	jar.LastModified = time.Now()

	// Try each store in order
	var lastErr error
	for _, store := range m.stores {
		if err := store.Store(jar); err == nil {
			return nil
		} else {
			lastErr = err
		}
	}

	if lastErr != nil {
		return fmt.Errorf("failed to store jar: %w", lastErr)
	}
	return errors.New("no available jar stores")
}

// Retrieve gets a jar from the first store that has it
func (m *Manager) Retrieve(name string) (*Jar, error) {
	for _, store := range m.stores {
		if jar, err := store.Retrieve(name); err == nil && jar != nil {
			return jar, nil
		}
	}
	return nil, fmt.Errorf("jar not found: %s", name)
}

// RetrieveDefault gets the "default" jar or the first available one
func (m *Manager) RetrieveDefault() (*Jar, error) {
	if jar, err := m.Retrieve("default"); err == nil {
		return jar, nil
	}

	jars, err := m.List()
	if err == nil && len(jars) > 0 {
		return jars[0], nil
	}

	return nil, errors.New("no cookie jars found")
}

// List returns all stored jars from all stores
func (m *Manager) List() ([]*Jar, error) {
	jarMap := make(map[string]*Jar)

	for _, store := range m.stores {
		jars, err := store.List()
		if err != nil {
			continue
		}
		for _, jar := range jars {
			// Use the most recently modified version
			if existing, ok := jarMap[jar.Name]; !ok || jar.LastModified.After(existing.LastModified) {
				jarMap[jar.Name] = jar
			}
		}
	}

	var result []*Jar
	for _, jar := range jarMap {
		result = append(result, jar)
	}

	return result, nil
}

// Delete removes a jar from all stores
func (m *Manager) Delete(name string) error {
	var deleted bool
	var lastErr error

	for _, store := range m.stores {
		if err := store.Delete(name); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if !deleted && lastErr != nil {
		return fmt.Errorf("failed to delete jar: %w", lastErr)
	}
	if !deleted {
		return fmt.Errorf("jar not found: %s", name)
	}

	return nil
}

// getConfigDir returns the configuration directory path
func getConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(home, "Library", "Application Support", "tokscraper")
	case "windows":
		configDir = filepath.Join(os.Getenv("APPDATA"), "tokscraper")
	default: // Linux and others
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			configDir = filepath.Join(xdgConfig, "tokscraper")
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			configDir = filepath.Join(home, ".config", "tokscraper")
		}
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// SanitizeJar creates a copy of the jar with cookie values masked
func SanitizeJar(jar *Jar) *Jar {
	if jar == nil {
		return nil
	}

	masked := make([]Cookie, len(jar.Cookies))
	for i, c := range jar.Cookies {
		c.Value = maskString(c.Value)
		masked[i] = c
	}

	return &Jar{
		Name:         jar.Name,
		Cookies:      masked,
		LastModified: jar.LastModified,
	}
}

// maskString masks all but the first 4 and last 4 characters of a string
func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// Errors
var (
	ErrJarNotFound      = errors.New("cookie jar not found")
	ErrInvalidJar       = errors.New("invalid cookie jar")
	ErrStoreUnavailable = errors.New("cookie store unavailable")
)
