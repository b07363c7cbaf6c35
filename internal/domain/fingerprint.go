package domain

import "time"

type TaskFingerprint struct {
	Keywords  []string  `toml:"keywords"`
	Folder    string    `toml:"folder,omitempty"`
	CreatedAt time.Time `toml:"created_at"`
}

func (f TaskFingerprint) Empty() bool {
	return len(f.Keywords) == 0
}
