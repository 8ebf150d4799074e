// Package secrets resolves API credentials from the environment, a local
// secrets file or a dedicated key file.
package secrets

import (
	"cmp"
	"fmt"
	"os"
	"strings"
)

// Source is a single secret given inline or kept in a file of its own.
type Source struct {
	// Name is used in error messages.
	Name  string
	Value string
	// File takes precedence over Value when set.
	File string
}

// Load returns the trimmed secret of src.
func Load(src Source) (string, error) {
	name := cmp.Or(strings.TrimSpace(src.Name), "secret")

	if file := strings.TrimSpace(src.File); file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		secret := strings.TrimSpace(string(data))
		if secret == "" {
			return "", fmt.Errorf("%s file %q is empty", name, file)
		}
		return secret, nil
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		return "", fmt.Errorf("%s is not configured", name)
	}
	return secret, nil
}
