package cookies

import (
	"encoding/json"
	"fmt"

	"github.com/zalando/go-keyring"
)

const (
	keyringService = "tokscraper"
	keyringPrefix  = "tiktok_"
)

// KeyringStore implements Store using the system keychain
type KeyringStore struct{}

// NewKeyringStore creates a new keyring-based jar store
func NewKeyringStore() (*KeyringStore, error) {
	// Test if keyring is available
	testKey := "test_availability"
	err := keyring.Set(keyringService, testKey, "test")
	if err != nil {
		return nil, fmt.Errorf("keyring not available: %w", err)
	}
	_ = keyring.Delete(keyringService, testKey)

	return &KeyringStore{}, nil
}

// Store saves a jar to the system keychain
func (k *KeyringStore) Store(jar *Jar) error {
	if jar == nil || jar.Name == "" {
		return ErrInvalidJar
	}

	// Serialize jar to JSON
	data, err := json.Marshal(jar)
	if err != nil {
		return fmt.Errorf("failed to marshal jar: %w", err)
	}

	// Store in keyring
	key := keyringPrefix + jar.Name
	if err := keyring.Set(keyringService, key, string(data)); err != nil {
		return fmt.Errorf("failed to store in keyring: %w", err)
	}

	return nil
}

// Retrieve gets a jar from the system keychain
func (k *KeyringStore) Retrieve(name string) (*Jar, error) {
	if name == "" {
		return nil, ErrInvalidJar
	}

	key := keyringPrefix + name
	data, err := keyring.Get(keyringService, key)
	if err != nil {
		if err == keyring.ErrNotFound {
			return nil, ErrJarNotFound
		}
		return nil, fmt.Errorf("failed to retrieve from keyring: %w", err)
	}

	var jar Jar
	if err := json.Unmarshal([]byte(data), &jar); err != nil {
		return nil, fmt.Errorf("failed to unmarshal jar: %w", err)
	}

	return &jar, nil
}

// List returns all stored jars from the keychain
func (k *KeyringStore) List() ([]*Jar, error) {
	// go-keyring doesn't support listing all keys. This is a limitation
	// of the library and underlying APIs, so we return empty here and
	// let the other stores in the chain supply the listing.
	return []*Jar{}, nil
}

// Delete removes a jar from the system keychain
func (k *KeyringStore) Delete(name string) error {
	if name == "" {
		return ErrInvalidJar
	}

	key := keyringPrefix + name
	err := keyring.Delete(keyringService, key)
	if err != nil {
		if err == keyring.ErrNotFound {
			return ErrJarNotFound
		}
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}

	return nil
}

// Exists checks if a jar exists in the keychain
func (k *KeyringStore) Exists(name string) bool {
	if name == "" {
		return false
	}

	key := keyringPrefix + name
	_, err := keyring.Get(keyringService, key)
	return err == nil
}
