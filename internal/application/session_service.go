package application

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bnema/gatekeeper/internal/domain"
	"github.com/bnema/gatekeeper/internal/policy/dispatch"
	"github.com/bnema/gatekeeper/internal/ports"
)

var sessionStateNames = []domain.StateName{
	domain.StateFlow,
	domain.StateActiveFolder,
	domain.StateFolderConfirmed,
	domain.StateFingerprint,
	domain.StateDispatchPreference,
}

// SessionService inspects and edits what the gate remembers about a session.
type SessionService struct {
	store    ports.StateStore
	folders  ports.FolderCatalog
	clock    ports.Clock
	dispatch *dispatch.Engine
	cfg      GateConfig
}

func NewSessionService(store ports.StateStore, folders ports.FolderCatalog, engine *dispatch.Engine, clock ports.Clock, cfg GateConfig) *SessionService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if engine == nil {
		engine = dispatch.NewEngine(dispatch.DefaultConfig())
	}

	return &SessionService{
		store:    store,
		folders:  folders,
		clock:    clock,
		dispatch: engine,
		cfg:      cfg,
	}
}

func (s *SessionService) Status(ctx context.Context, session domain.SessionID) (SessionStatus, error) {
	session = session.OrDefault()
	status := SessionStatus{Session: session}

	var (
		folder       domain.FolderMarker
		confirmation domain.ConfirmationMarker
		fingerprint  domain.TaskFingerprint
		flow         domain.QuestionFlow
		preference   domain.DispatchPreference
	)

	reads := []struct {
		name domain.StateName
		ttl  time.Duration
		dst  any
		set  func()
	}{
		{name: domain.StateActiveFolder, ttl: s.cfg.SessionTTL, dst: &folder, set: func() { status.ActiveFolder = &folder }},
		{name: domain.StateFolderConfirmed, ttl: s.cfg.confirmationTTL(), dst: &confirmation, set: func() { status.Confirmation = &confirmation }},
		{name: domain.StateFingerprint, ttl: s.cfg.SessionTTL, dst: &fingerprint, set: func() { status.Fingerprint = &fingerprint }},
		{name: domain.StateFlow, ttl: s.cfg.FlowTTL, dst: &flow, set: func() {
			if flow.Open() {
				status.Flow = &flow
			}
		}},
		{name: domain.StateDispatchPreference, ttl: s.dispatch.PreferenceTTL(), dst: &preference, set: func() {
			if preference.Active(s.clock.Now()) {
				status.Preference = &preference
			}
		}},
	}

	var errs error
	for _, read := range reads {
		found, err := s.store.Read(ctx, domain.KeyFor(session, read.name), read.ttl, read.dst)
		if err != nil {
			errs = errors.Join(errs, fmt.Errorf("read %s: %w", read.name, err))
			continue
		}
		if found {
			read.set()
		}
	}

	return status, errs
}

// Reset clears every entry of the session, including an open question.
func (s *SessionService) Reset(ctx context.Context, session domain.SessionID) error {
	var errs error
	for _, name := range sessionStateNames {
		if err := s.store.Clear(ctx, domain.KeyFor(session, name)); err != nil {
			errs = errors.Join(errs, fmt.Errorf("clear %s: %w", name, err))
		}
	}
	return errs
}

func (s *SessionService) Prefer(ctx context.Context, cmd PreferCommand) (domain.DispatchPreference, error) {
	if !cmd.Mode.Valid() {
		return domain.DispatchPreference{}, fmt.Errorf("%w: %q", domain.ErrInvalidMode, cmd.Mode)
	}

	preference := s.dispatch.Remember(cmd.Mode, s.clock.Now().UTC())
	if err := s.store.Write(ctx, domain.KeyFor(cmd.SessionID, domain.StateDispatchPreference), preference, s.dispatch.PreferenceTTL()); err != nil {
		return domain.DispatchPreference{}, fmt.Errorf("write dispatch preference: %w", err)
	}

	return preference, nil
}

func (s *SessionService) Revoke(ctx context.Context, session domain.SessionID) error {
	if err := s.store.Clear(ctx, domain.KeyFor(session, domain.StateDispatchPreference)); err != nil {
		return fmt.Errorf("clear dispatch preference: %w", err)
	}
	return nil
}

// UseFolder selects an existing folder without going through the question
// flow. The folder is left unconfirmed, so the next gated request asks to
// keep it once, and the task fingerprint is cleared.
func (s *SessionService) UseFolder(ctx context.Context, cmd UseFolderCommand) (domain.FolderMarker, error) {
	if !filepath.IsAbs(cmd.Path) {
		cmd.Path = filepath.Join(s.folders.Root(), cmd.Path)
	}

	exists, err := s.folders.Exists(ctx, cmd.Path)
	if err != nil {
		return domain.FolderMarker{}, fmt.Errorf("check folder: %w", err)
	}
	if !exists {
		return domain.FolderMarker{}, fmt.Errorf("%w: %s", domain.ErrFolderNotFound, cmd.Path)
	}

	now := s.clock.Now().UTC()
	marker := domain.FolderMarker{Path: cmd.Path, SelectedAt: now}
	if err := s.store.Write(ctx, domain.KeyFor(cmd.SessionID, domain.StateActiveFolder), marker, s.cfg.SessionTTL); err != nil {
		return domain.FolderMarker{}, fmt.Errorf("write active folder: %w", err)
	}

	for _, name := range []domain.StateName{domain.StateFolderConfirmed, domain.StateFingerprint} {
		if err := s.store.Clear(ctx, domain.KeyFor(cmd.SessionID, name)); err != nil {
			return domain.FolderMarker{}, fmt.Errorf("clear %s: %w", name, err)
		}
	}

	return marker, nil
}
