package terminal

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/matt-g-everett/termtx/frame"
	"github.com/matt-g-everett/termtx/stream"
	"github.com/matt-g-everett/termtx/util"
)

// LoadingMessage is shown while frames are being fetched.
const LoadingMessage = "Loading terminal animation..."

// blinkSteps is the length of one cursor blink cycle in ticks.
const blinkSteps = 30

// StatusMsg carries the outcome of a frame load into the program.
type StatusMsg frame.Status

// SequenceMsg swaps in a new frame sequence, for example after the frame
// directory changed on disk.
type SequenceMsg struct {
	Sequence *frame.Sequence
}

type tickMsg struct {
	gen int
}

// LoadCmd runs job and delivers its final status as a StatusMsg.
func LoadCmd(ctx context.Context, job *frame.Job) tea.Cmd {
	return func() tea.Msg {
		return StatusMsg(job.Run(ctx))
	}
}

// ModelOptions configure a Model.
type ModelOptions struct {
	Chrome Chrome
	Clock  stream.Options
	Keys   KeyMap
	// Load is run by Init when the model starts without frames. Its result
	// should be a StatusMsg.
	Load tea.Cmd
	Now  func() time.Time
}

// Model is a bubbletea program that plays a frame sequence inside a Chrome.
type Model struct {
	opts    ModelOptions
	clock   *stream.Clock
	status  frame.Status
	lut     []float64
	blink   int
	gen     int
	ticking bool
	width   int
	quit    bool
}

// NewModel creates a Model. A nil seq leaves the model loading until a
// StatusMsg arrives.
func NewModel(seq *frame.Sequence, opts ModelOptions) Model {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Keys.Toggle.Keys() == nil {
		opts.Keys = DefaultKeyMap()
	}
	m := Model{opts: opts, lut: util.GenerateLut(blinkSteps)}
	if seq == nil {
		m.status = frame.Status{State: frame.Loading}
		seq = frame.NewSequence()
	} else {
		m.status = frame.Status{State: frame.Ready, Sequence: seq}
	}
	m.clock = stream.NewClock(seq, opts.Clock, opts.Now())
	m.ticking = m.clock.Playing()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.status.State == frame.Loading && m.opts.Load != nil {
		cmds = append(cmds, m.opts.Load)
	}
	if m.clock.Playing() {
		cmds = append(cmds, m.tick(m.gen))
	}
	return tea.Batch(cmds...)
}

// Clock exposes the underlying animation clock.
func (m Model) Clock() *stream.Clock {
	return m.clock
}

// Status returns the frame load status.
func (m Model) Status() frame.Status {
	return m.status
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.opts.Keys.Quit):
			m.quit = true
			return m, tea.Quit
		case key.Matches(msg, m.opts.Keys.Toggle):
			m.clock.Toggle(m.opts.Now())
			return m.schedule()
		case key.Matches(msg, m.opts.Keys.Reset):
			m.clock.Reset()
			return m.schedule()
		}

	case tea.MouseMsg:
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.clock.Toggle(m.opts.Now())
			return m.schedule()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case StatusMsg:
		m.status = frame.Status(msg)
		if m.status.State == frame.Ready {
			m.clock.SetSequence(m.status.Sequence, m.opts.Now())
		}
		return m.schedule()

	case SequenceMsg:
		if msg.Sequence == nil {
			return m, nil
		}
		m.status = frame.Status{State: frame.Ready, Sequence: msg.Sequence}
		m.clock.SetSequence(msg.Sequence, m.opts.Now())
		return m.schedule()

	case tickMsg:
		if msg.gen != m.gen || !m.ticking {
			return m, nil
		}
		m.clock.Tick(m.opts.Now())
		m.blink++
		if !m.clock.Playing() {
			m.ticking = false
			return m, nil
		}
		return m, m.tick(m.gen)
	}
	return m, nil
}

// schedule starts a tick chain when the clock plays and none is running,
// and retires the current one when it stops. A retired chain is recognised
// by its generation.
func (m Model) schedule() (tea.Model, tea.Cmd) {
	switch {
	case m.clock.Playing() && !m.ticking:
		m.gen++
		m.ticking = true
		return m, m.tick(m.gen)
	case !m.clock.Playing():
		m.ticking = false
	}
	return m, nil
}

func (m Model) tick(gen int) tea.Cmd {
	return tea.Tick(m.clock.TickInterval(), func(time.Time) tea.Msg {
		return tickMsg{gen: gen}
	})
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quit {
		return ""
	}

	var v stream.View
	switch m.status.State {
	case frame.Loading:
		v = stream.View{Lines: []string{LoadingMessage}, State: stream.Stopped.String()}
	case frame.Failed:
		v = stream.View{Lines: []string{m.status.Message}, State: stream.Stopped.String()}
	default:
		v = stream.ViewOf(m.clock, "")
	}

	out := m.opts.Chrome.Render(v, util.Sample(m.lut, m.blink)) + "\n" + m.help()
	if m.width > 0 {
		lines := strings.Split(out, "\n")
		for i, l := range lines {
			lines[i] = ansi.Truncate(l, m.width, "")
		}
		out = strings.Join(lines, "\n")
	}
	return out
}

func (m Model) help() string {
	var parts []string
	for _, b := range m.opts.Keys.ShortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return lipgloss.NewStyle().Faint(true).Render(strings.Join(parts, " • "))
}
