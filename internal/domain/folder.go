package domain

import (
	"fmt"
	"time"
)

// Folder is one work-tracking folder under the tracking root, e.g. specs/012-password-reset.
type Folder struct {
	Path       string
	Name       string
	Number     int
	ModifiedAt time.Time
}

// Snapshot is the metadata of one saved context snapshot. Bodies are never read by the gate.
type Snapshot struct {
	ID        string
	Title     string
	CreatedAt time.Time
}

// FolderMarker records the folder selected for a session.
type FolderMarker struct {
	Path       string    `toml:"path"`
	SelectedAt time.Time `toml:"selected_at"`
}

// ConfirmationMarker suppresses re-asking about a folder for the rest of the
// session. Skipped records that the user chose to work without a folder.
type ConfirmationMarker struct {
	Path        string    `toml:"path,omitempty"`
	Skipped     bool      `toml:"skipped,omitempty"`
	ConfirmedAt time.Time `toml:"confirmed_at"`
}

// FolderName formats a new folder name such as "012-password-reset".
func FolderName(number int, slug string) string {
	return fmt.Sprintf("%03d-%s", number, slug)
}
