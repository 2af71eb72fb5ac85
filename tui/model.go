package tui

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/njyeung/blockreel/player"
)

// Messages
type (
	playbackTickMsg     struct{}
	playbackFinishedMsg struct{ err error }
)

// State represents the app state
type state int

const (
	stateLoading state = iota
	statePlaying
	stateDone
)

// Model is the Bubble Tea model. While playing, the player writes
// frames to the terminal directly and View stays empty, the program
// only handles keys and lifecycle.
type Model struct {
	state  state
	player *player.AVPlayer
	path   string

	width   int
	height  int
	spinner spinner.Model
	status  string
	err     error
}

// NewModel creates a TUI model around a configured player
func NewModel(path string, p *player.AVPlayer) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return Model{
		state:   stateLoading,
		player:  p,
		path:    path,
		spinner: s,
		status:  fmt.Sprintf("Opening %s", runewidth.Truncate(filepath.Base(path), 40, "…")),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.startPlayback,
		m.waitForPlayback,
	)
}

// startPlayback blocks until playback ends, it runs as a command in its
// own goroutine
func (m Model) startPlayback() tea.Msg {
	return playbackFinishedMsg{err: m.player.Play(m.path)}
}

// waitForPlayback polls for the first playback session coming up
func (m Model) waitForPlayback() tea.Msg {
	time.Sleep(100 * time.Millisecond)
	return playbackTickMsg{}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.player.Stop()
			m.player.Close()
			m.state = stateDone
			return m, tea.Quit

		case " ":
			m.player.Pause()

		case "m":
			m.player.Mute()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case spinner.TickMsg:
		if m.state != stateLoading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case playbackTickMsg:
		if m.state != stateLoading {
			return m, nil
		}
		if m.player.IsPlaying() {
			m.state = statePlaying
			return m, nil
		}
		return m, m.waitForPlayback

	case playbackFinishedMsg:
		m.state = stateDone
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

// View renders the UI
func (m Model) View() string {
	switch m.state {
	case stateLoading:
		return m.viewLoading()
	default:
		// The player owns the screen once frames are flowing
		return ""
	}
}

// Err returns the playback error, if any, for the caller to report
// after the program has quit
func (m Model) Err() error {
	return m.err
}
