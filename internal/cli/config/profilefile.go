package config

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// profileFilePath returns the location of the shared Databricks config
// file, honoring the DATABRICKS_CONFIG_FILE override.
func profileFilePath() string {
	if p := os.Getenv("DATABRICKS_CONFIG_FILE"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".databrickscfg")
}

// applyProfileFile fills still-empty connection fields from the named
// profile in the INI-style config file. A missing or unreadable file is
// not an error; values already resolved from higher-precedence sources
// are never replaced.
//
// The format is a flat "[section] / key = value" subset of INI, so a
// small scanner is used instead of a full INI dependency.
func applyProfileFile(cfg *Config, path string) {
	if path == "" {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close() //nolint:errcheck

	profile := cfg.Profile
	if profile == "" {
		profile = DefaultProfile
	}
	values := parseProfile(f, profile)

	fill := func(dst *string, key string) {
		if *dst == "" {
			if v, ok := values[key]; ok {
				*dst = v
			}
		}
	}
	fill(&cfg.Host, "host")
	fill(&cfg.Token, "token")
	fill(&cfg.WarehouseID, "warehouse_id")
	fill(&cfg.ClientID, "client_id")
	fill(&cfg.ClientSecret, "client_secret")
	if cfg.AuthType == DefaultAuthType {
		if v, ok := values["auth_type"]; ok {
			cfg.AuthType = v
		}
	}
}

// parseProfile extracts the key/value pairs of one profile section.
func parseProfile(r io.Reader, profile string) map[string]string {
	values := make(map[string]string)
	current := ""
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}
		if current != profile {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		values[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return values
}
