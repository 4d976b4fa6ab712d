// internal/session/file.go
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tamzrod/session-keeper/internal/fsutil"
)

// LoadCredential reads a JSON object of name -> value from path.
func LoadCredential(path string) (Credential, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("session: read credential file: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		return nil, fmt.Errorf("session: parse credential file %s: %w", path, err)
	}
	if cred.Empty() {
		return nil, fmt.Errorf("session: credential file %s holds no cookies", path)
	}
	return cred, nil
}

// SaveCredential writes cred as indented JSON, replacing path atomically.
// The file is created with mode 0600.
func SaveCredential(path string, cred Credential) error {
	if cred.Empty() {
		return errors.New("session: refusing to save empty credential")
	}

	raw, err := json.MarshalIndent(cred, "", "  ")
	if err != nil {
		return err
	}

	if err := fsutil.WriteFileAtomic(path, append(raw, '\n'), 0o600, 0o700); err != nil {
		return fmt.Errorf("session: save credential: %w", err)
	}
	return nil
}
