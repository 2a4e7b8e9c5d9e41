// Package config provides configuration loading for rulemine.
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// Dir returns the rulemine config directory, respecting XDG_CONFIG_HOME.
// Defaults to ~/.config/rulemine if XDG_CONFIG_HOME is not set.
func Dir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "rulemine"), nil
}

// AliasConfig holds item label rewrites declared by the user. Each key is a
// label as it appears in the transaction log and the value is the canonical
// item it is counted as (e.g. "coke=cola", "PROD-0042=cola").
type AliasConfig struct {
	Aliases map[string]string
}

// Resolve returns the canonical label for item, or item itself when no
// alias is declared.
func (c *AliasConfig) Resolve(item string) string {
	if c == nil {
		return item
	}
	if canonical, ok := c.Aliases[item]; ok {
		return canonical
	}
	return item
}

// LoadAliases reads the aliases file at {dir}/aliases and returns the parsed
// config. If the file does not exist, an empty config is returned without an
// error. Invalid or malformed lines are silently skipped.
func LoadAliases(dir string) (*AliasConfig, error) {
	cfg := &AliasConfig{
		Aliases: make(map[string]string),
	}

	path := filepath.Join(dir, "aliases")
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip blank lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue // no "=" or "=" is first character
		}

		alias := strings.TrimSpace(line[:idx])
		item := strings.TrimSpace(line[idx+1:])

		// Items are whitespace-separated in the log, so a label with inner
		// whitespace can never match.
		if alias == "" || item == "" || strings.ContainsAny(alias, " \t") || strings.ContainsAny(item, " \t") {
			continue
		}

		cfg.Aliases[alias] = item
	}

	if err := scanner.Err(); err != nil {
		return cfg, err
	}

	return cfg, nil
}
