package domain

import "strings"

type SessionID string

// DefaultSessionID is shared by every invocation that does not carry its own id.
const DefaultSessionID SessionID = "default"

func (id SessionID) OrDefault() SessionID {
	trimmed := SessionID(strings.TrimSpace(string(id)))
	if trimmed == "" {
		return DefaultSessionID
	}
	return trimmed
}

// StateName identifies one persisted fact inside a session namespace.
type StateName string

const (
	StateActiveFolder       StateName = "active_folder"
	StateFingerprint        StateName = "fingerprint"
	StateFolderConfirmed    StateName = "folder_confirmed"
	StateFlow               StateName = "flow"
	StateDispatchPreference StateName = "dispatch_preference"
)

type StateKey struct {
	Session SessionID
	Name    StateName
}

func KeyFor(session SessionID, name StateName) StateKey {
	return StateKey{Session: session.OrDefault(), Name: name}
}

func (k StateKey) String() string {
	return string(k.Session) + "/" + string(k.Name)
}
