package tempmail

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// ExportVersion is the current export format version.
const ExportVersion = 1

// ExportedSession contains all data needed to resume a mailbox session.
// WARNING: it contains the bearer token. Anyone holding it can read the mailbox.
type ExportedSession struct {
	// Version is the export format version. MUST be 1.
	Version int `json:"version"`
	// EmailAddress is the mailbox address. MUST contain exactly one @.
	EmailAddress string `json:"emailAddress"`
	// Token is the bearer credential of the mailbox. Non-empty.
	Token string `json:"token"`
	// ExportedAt is the export timestamp. Informational only.
	ExportedAt time.Time `json:"exportedAt"`
}

// Validate checks that the exported data can be imported.
func (e *ExportedSession) Validate() error {
	if e.Version != ExportVersion {
		return fmt.Errorf("%w: unsupported version %d, expected %d", ErrInvalidImportData, e.Version, ExportVersion)
	}
	if e.EmailAddress == "" {
		return fmt.Errorf("%w: emailAddress is required", ErrInvalidImportData)
	}
	if strings.Count(e.EmailAddress, "@") != 1 {
		return fmt.Errorf("%w: emailAddress must contain exactly one @", ErrInvalidImportData)
	}
	if e.Token == "" {
		return fmt.Errorf("%w: token is required", ErrInvalidImportData)
	}
	return nil
}

// Export returns the current session.
func (c *Client) Export() (*ExportedSession, error) {
	c.mu.RLock()
	id := c.identity
	c.mu.RUnlock()

	if id.token == "" {
		return nil, &NoActiveSessionError{Operation: "export"}
	}

	return &ExportedSession{
		Version:      ExportVersion,
		EmailAddress: id.address,
		Token:        id.token,
		ExportedAt:   time.Now().UTC(),
	}, nil
}

// Import replaces the current identity with an exported one. No network
// call is made; an expired token surfaces on the next listing.
func (c *Client) Import(data *ExportedSession) error {
	if data == nil {
		return fmt.Errorf("%w: data is nil", ErrInvalidImportData)
	}
	if err := data.Validate(); err != nil {
		return err
	}
	c.setIdentity(identity{address: data.EmailAddress, token: data.Token})
	return nil
}

// ExportToFile writes the current session to a JSON file with secure
// permissions (0600).
func (c *Client) ExportToFile(filePath string) error {
	data, err := c.Export()
	if err != nil {
		return err
	}

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal session data: %w", err) //coverage:ignore
	}

	if err := os.WriteFile(filePath, jsonData, 0600); err != nil {
		return fmt.Errorf("write file: %w", err)
	}

	return nil
}

// ImportFromFile reads a session written by ExportToFile and makes it the
// current identity.
func (c *Client) ImportFromFile(filePath string) error {
	jsonData, err := os.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	var data ExportedSession
	if err := json.Unmarshal(jsonData, &data); err != nil {
		return fmt.Errorf("%w: parse session data: %v", ErrInvalidImportData, err)
	}

	return c.Import(&data)
}
