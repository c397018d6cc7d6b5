package bitquery

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteArtifact persists a raw feed response verbatim. The artifact is
// the hand-off point between the fetch and normalize steps and doubles
// as the audit trail for a run.
func WriteArtifact(path string, raw []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create artifact directory: %w", err)
		}
	}

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}

	return nil
}

// ReadArtifact loads a previously persisted feed response
func ReadArtifact(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact: %w", err)
	}

	return raw, nil
}
