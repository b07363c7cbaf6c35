package application

import "github.com/bnema/gatekeeper/internal/domain"

// GateCommand is one prompt submitted to the gate by the host runtime.
type GateCommand struct {
	Prompt    string
	SessionID domain.SessionID
	Cwd       string
}

type PreferCommand struct {
	SessionID domain.SessionID
	Mode      domain.DispatchMode
}

type UseFolderCommand struct {
	SessionID domain.SessionID
	Path      string
}
