// Package secrets resolves credentials given inline or through files.
package secrets

import (
	"fmt"
	"os"
	"strings"
)

// Source is a credential as it appears in the config: either an inline value
// or a path to a file holding it. File wins when both are set.
type Source struct {
	// Name only appears in error messages.
	Name  string `mapstructure:"-"`
	Value string `mapstructure:"value"`
	File  string `mapstructure:"file"`
}

func (s Source) name() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return "secret"
}

// Configured reports whether the source carries a value or a file.
func (s Source) Configured() bool {
	return strings.TrimSpace(s.Value) != "" || strings.TrimSpace(s.File) != ""
}

// Load returns the trimmed secret. An unconfigured source or an empty file is an error.
func Load(src Source) (string, error) {
	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", src.name(), file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", src.name(), file)
		}
		return secret, nil
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		return "", fmt.Errorf("%s is not configured", src.name())
	}
	return secret, nil
}

// Optional is Load for secrets that may be absent: an unconfigured source
// yields an empty value and no error.
func Optional(src Source) (string, error) {
	if !src.Configured() {
		return "", nil
	}
	return Load(src)
}
