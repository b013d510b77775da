// Package wpconfig locates and parses the wp-config.php configuration
// artifact of a WordPress installation. Only the database connection
// constants are extracted; the file itself is never modified.
package wpconfig

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	apperrors "wp-backup/internal/errors"
)

// FileName is the configuration artifact searched for under a site root.
const FileName = "wp-config.php"

// SiteConfig holds the database credentials declared by wp-config.php.
// Password may legitimately be empty (socket or unauthenticated setups).
type SiteConfig struct {
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string
	DatabaseHost     string
}

// Validate checks that the mandatory fields were parsed.
func (c *SiteConfig) Validate() error {
	missing := []string{}
	if c.DatabaseName == "" {
		missing = append(missing, "DB_NAME")
	}
	if c.DatabaseUser == "" {
		missing = append(missing, "DB_USER")
	}
	if c.DatabaseHost == "" {
		missing = append(missing, "DB_HOST")
	}
	if len(missing) > 0 {
		return apperrors.NewConfigIncomplete(
			fmt.Sprintf("wp-config.php is missing required constants: %v", missing), nil)
	}
	return nil
}

// defineRe matches define('KEY', 'value') declarations with either quoting
// style. The first capture group is the constant name, the second the value.
var defineRe = regexp.MustCompile(`define\s*\(\s*['"]([A-Z_]+)['"]\s*,\s*['"]([^'"]*)['"]\s*\)`)

// Locate finds the configuration artifact directly under siteRoot.
func Locate(siteRoot string) (string, error) {
	path := filepath.Join(siteRoot, FileName)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", apperrors.NewConfigNotFound(
			fmt.Sprintf("no %s found under %s", FileName, siteRoot), err)
	}
	return path, nil
}

// Parse reads a wp-config.php file and extracts the database constants.
// The first declaration of each constant wins, matching PHP define semantics.
func Parse(path string) (*SiteConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigNotFound(
			fmt.Sprintf("cannot read %s", path), err)
	}

	cfg := &SiteConfig{}
	seen := map[string]bool{}
	for _, m := range defineRe.FindAllStringSubmatch(string(data), -1) {
		key, value := m[1], m[2]
		if seen[key] {
			continue
		}
		switch key {
		case "DB_NAME":
			cfg.DatabaseName = value
			seen[key] = true
		case "DB_USER":
			cfg.DatabaseUser = value
			seen[key] = true
		case "DB_PASSWORD":
			cfg.DatabasePassword = value
			seen[key] = true
		case "DB_HOST":
			cfg.DatabaseHost = value
			seen[key] = true
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Extract locates and parses the configuration artifact for a site root.
func Extract(siteRoot string) (*SiteConfig, error) {
	path, err := Locate(siteRoot)
	if err != nil {
		return nil, err
	}
	return Parse(path)
}

// FindAll walks root recursively and returns every wp-config.php path found,
// in lexical walk order. Used by archive validation, where more than one
// match means the archive is ambiguous.
func FindAll(root string) ([]string, error) {
	var matches []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == FileName {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}
	return matches, nil
}
