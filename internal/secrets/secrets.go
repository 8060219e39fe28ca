// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads lookup-service credentials from a directory.
// A plain file holds one secret: the filename is the key and the trimmed
// contents are the value. A file ending in ".env" holds several secrets
// as KEY=VALUE lines; OPENALEX_EMAIL becomes the key openalex-email.
//
// Known keys: openalex-email, openalex-api-key, crossref-email.
package secrets

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Known secret keys.
const (
	OpenAlexEmail  = "openalex-email"
	OpenAlexAPIKey = "openalex-api-key"
	CrossrefEmail  = "crossref-email"
)

// Load reads all files in dir and returns a map of key to value.
// A missing directory is not an error; Load returns an empty map.
// Unreadable files are logged and skipped. Plain files take precedence
// over .env entries with the same key.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	plain := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)

		if strings.HasSuffix(name, ".env") {
			env, err := godotenv.Read(path)
			if err != nil {
				slog.Warn("could not parse secrets env file", "file", name, "error", err)
				continue
			}
			for k, v := range env {
				if v = strings.TrimSpace(v); v != "" {
					secrets[envKey(k)] = v
				}
			}
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			slog.Warn("could not read secret", "file", name, "error", err)
			continue
		}
		if value := strings.TrimSpace(string(data)); value != "" {
			plain[name] = value
		}
	}

	for k, v := range plain {
		secrets[k] = v
	}
	return secrets, nil
}

// envKey converts an environment-style name to a secret key.
func envKey(k string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(k)), "_", "-")
}
