package status

import (
	"errors"
	"io"

	"github.com/bnema/gatekeeper/internal/application"
	tea "github.com/charmbracelet/bubbletea"
)

var ErrUnexpectedScreen = errors.New("status program finished with an unexpected model")

// frameMsg carries the fully rendered status frame.
type frameMsg string

// screen draws one session status and quits.
type screen struct {
	status application.SessionStatus
	opts   RenderOptions
	frame  string
}

func (s screen) Init() tea.Cmd {
	status, opts := s.status, s.opts
	return func() tea.Msg {
		return frameMsg(renderView(status, opts, newStyles()))
	}
}

func (s screen) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	frame, ok := msg.(frameMsg)
	if !ok {
		return s, nil
	}
	s.frame = string(frame)
	return s, tea.Quit
}

func (s screen) View() string {
	return s.frame
}

// Render draws the status of one session without a terminal attached.
func Render(status application.SessionStatus, opts RenderOptions) (string, error) {
	program := tea.NewProgram(
		screen{status: status, opts: opts},
		tea.WithInput(nil),
		tea.WithOutput(io.Discard),
	)

	final, err := program.Run()
	if err != nil {
		return "", err
	}

	done, ok := final.(screen)
	if !ok {
		return "", ErrUnexpectedScreen
	}
	return done.View(), nil
}
