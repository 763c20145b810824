// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials and contact details from a directory of
// plain-text files. Each file in the directory represents one secret: the
// filename is the key name and the file contents (trimmed) are the value.
//
// Supported key files: contact-email (added to the User-Agent sent to the
// content source, as its etiquette asks).
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// ContactEmail names the secret holding the operator's contact address.
const ContactEmail = "contact-email"

// Secrets maps key file names to their trimmed contents.
type Secrets map[string]string

// Load reads all files in dir. A missing directory is not an error; Load
// returns an empty set. Unreadable files are logged and skipped.
func Load(dir string, logger *zap.Logger) (Secrets, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return Secrets{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(Secrets)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			logger.Warn("could not read secret", zap.String("name", name), zap.Error(err))
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Get returns the value for key, or fallback when the key is absent.
func (s Secrets) Get(key, fallback string) string {
	if v, ok := s[key]; ok {
		return v
	}
	return fallback
}

// Keys returns the loaded key names in sorted order. Values are never
// listed.
func (s Secrets) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UserAgent appends the contact email, when one is loaded, to base in the
// "name/version (mailto:addr)" form.
func (s Secrets) UserAgent(base string) string {
	email := s.Get(ContactEmail, "")
	if email == "" {
		return base
	}
	return fmt.Sprintf("%s (mailto:%s)", base, email)
}
