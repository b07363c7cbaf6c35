package toml

import (
	"fmt"
	"time"
)

const currentSchemaVersion = 1

// entrySchema is the on-disk envelope of one state entry. The payload lives in
// the [value] table.
type entrySchema struct {
	Version    int            `toml:"version"`
	Key        string         `toml:"key"`
	WrittenAt  string         `toml:"written_at"`
	TTLSeconds int64          `toml:"ttl_seconds"`
	Value      map[string]any `toml:"value"`
}

type writeSchema struct {
	Version    int    `toml:"version"`
	Key        string `toml:"key"`
	WrittenAt  string `toml:"written_at"`
	TTLSeconds int64  `toml:"ttl_seconds"`
	Value      any    `toml:"value"`
}

func (s *entrySchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s entrySchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported state schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

// expiresAt returns the instant the entry stops being readable, or the zero
// time when neither the writer nor the reader bounded it.
func (s entrySchema) expiresAt(readTTL time.Duration) time.Time {
	writtenAt := parseTime(s.WrittenAt)
	if writtenAt.IsZero() {
		return time.Time{}
	}

	ttl := time.Duration(s.TTLSeconds) * time.Second
	if readTTL > 0 && (ttl <= 0 || readTTL < ttl) {
		ttl = readTTL
	}
	if ttl <= 0 {
		return time.Time{}
	}

	return writtenAt.Add(ttl)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339Nano)
}
