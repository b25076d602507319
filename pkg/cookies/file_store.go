package cookies

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// FileStore implements Store using plain JSON files, one jar per file,
// under a root directory. Values are stored unencrypted, which matches
// what the cookies already are in the browser's own profile directory.
type FileStore struct {
	root string
}

// NewFileStore creates a file-based jar store rooted at dir
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: dir}
}

// Store saves a jar to <root>/<name>.json
func (f *FileStore) Store(jar *Jar) error {
	if jar == nil || jar.Name == "" {
		return ErrInvalidJar
	}

	if err := os.MkdirAll(f.root, 0700); err != nil {
		return fmt.Errorf("failed to create jar directory: %w", err)
	}

	return SaveFile(f.jarPath(jar.Name), jar)
}

// Retrieve gets a jar from the store
func (f *FileStore) Retrieve(name string) (*Jar, error) {
	if name == "" {
		return nil, ErrInvalidJar
	}

	jar, err := LoadFile(f.jarPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrJarNotFound
		}
		return nil, err
	}
	jar.Name = name
	return jar, nil
}

// List returns all jars under the root directory
func (f *FileStore) List() ([]*Jar, error) {
	entries, err := os.ReadDir(f.root)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Jar{}, nil
		}
		return nil, fmt.Errorf("failed to read jar directory: %w", err)
	}

	var jars []*Jar
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".json")
		jar, err := f.Retrieve(name)
		if err != nil {
			continue
		}
		jars = append(jars, jar)
	}

	return jars, nil
}

// Delete removes a jar file
func (f *FileStore) Delete(name string) error {
	if name == "" {
		return ErrInvalidJar
	}

	if err := os.Remove(f.jarPath(name)); err != nil {
		if os.IsNotExist(err) {
			return ErrJarNotFound
		}
		return fmt.Errorf("failed to delete jar: %w", err)
	}
	return nil
}

// Exists checks if a jar file exists
func (f *FileStore) Exists(name string) bool {
	if name == "" {
		return false
	}
	_, err := os.Stat(f.jarPath(name))
	return err == nil
}

func (f *FileStore) jarPath(name string) string {
	return filepath.Join(f.root, name+".json")
}

// fileJar is the on-disk shape. Cookie export extensions write a bare
// array, the tool itself writes the named object; both are accepted.
type fileJar struct {
	Name         string    `json:"name"`
	Cookies      []Cookie  `json:"cookies"`
	LastModified time.Time `json:"last_modified"`
}

// exportCookie covers the field spellings browser export extensions use.
type exportCookie struct {
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Domain         string  `json:"domain"`
	Path           string  `json:"path"`
	ExpirationDate float64 `json:"expirationDate"`
	HTTPOnly       bool    `json:"httpOnly"`
	Secure         bool    `json:"secure"`
}

// LoadFile reads a cookie file. Both a bare cookie array (the format
// browser export extensions produce) and a named jar object are accepted.
func LoadFile(path string) (*Jar, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(content))
	if strings.HasPrefix(trimmed, "[") {
		var exported []exportCookie
		if err := json.Unmarshal(content, &exported); err != nil {
			return nil, fmt.Errorf("failed to parse cookie file %s: %w", path, err)
		}
		jar := &Jar{Name: jarNameFromPath(path)}
		for _, e := range exported {
			c := Cookie{
				Name:     e.Name,
				Value:    e.Value,
				Domain:   e.Domain,
				Path:     e.Path,
				HTTPOnly: e.HTTPOnly,
				Secure:   e.Secure,
			}
			if e.ExpirationDate > 0 {
				c.Expires = time.Unix(int64(e.ExpirationDate), 0)
			}
			jar.Cookies = append(jar.Cookies, c.Normalize())
		}
		return jar, nil
	}

	var fj fileJar
	if err := json.Unmarshal(content, &fj); err != nil {
		return nil, fmt.Errorf("failed to parse cookie file %s: %w", path, err)
	}
	jar := &Jar{
		Name:         fj.Name,
		LastModified: fj.LastModified,
	}
	if jar.Name == "" {
		jar.Name = jarNameFromPath(path)
	}
	for _, c := range fj.Cookies {
		jar.Cookies = append(jar.Cookies, c.Normalize())
	}
	return jar, nil
}

// SaveFile writes the jar as a named object, using a temporary file and
// rename so a crash never leaves a half-written jar behind.
func SaveFile(path string, jar *Jar) error {
	if jar == nil {
		return ErrInvalidJar
	}

	fj := fileJar{
		Name:         jar.Name,
		Cookies:      jar.Cookies,
		LastModified: jar.LastModified,
	}
	if fj.LastModified.IsZero() {
		fj.LastModified = time.Now()
	}

	content, err := json.MarshalIndent(fj, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal jar: %w", err)
	}

	tempFile := path + ".tmp"
	if err := os.WriteFile(tempFile, content, 0600); err != nil {
		return fmt.Errorf("failed to write jar file: %w", err)
	}

	return os.Rename(tempFile, path)
}

func jarNameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
