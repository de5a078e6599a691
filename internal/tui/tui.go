// Package tui is the terminal front end. It follows the session through a
// subscription and starts cycles on the request controller.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dmorgan81/promptshot/internal/controller"
	"github.com/dmorgan81/promptshot/internal/log"
	"github.com/dmorgan81/promptshot/internal/session"
	"github.com/dmorgan81/promptshot/internal/store"
)

const (
	Placeholder = "Generated image will appear here"

	imageRows = 24
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).BorderStyle(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("196")).Padding(0, 1)
	areaStyle   = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("240")).Align(lipgloss.Center, lipgloss.Center)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
)

type (
	snapshotMsg session.Snapshot
	startedMsg  struct{ err error }
	savedMsg    struct {
		name string
		err  error
	}
)

type Model struct {
	ctx        context.Context
	controller *controller.Controller
	uploader   store.Uploader
	snaps      <-chan session.Snapshot

	snap    session.Snapshot
	input   textinput.Model
	spinner spinner.Model
	notice  string
	width   int
	now     func() time.Time

	// picture holds the drawn image and rendered its ID. rendered stays
	// empty when drawing fails, leaving only the summary.
	picture  viewport.Model
	rendered string
	render   func(data []byte, width, height int) (string, error)
}

// New subscribes to the controller's session. Call the returned func once the model is done.
func New(ctx context.Context, c *controller.Controller, u store.Uploader) (Model, func()) {
	ti := textinput.New()
	ti.Placeholder = "Describe the image"
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	snaps, cancel := c.Session().Subscribe()
	return Model{
		ctx:        ctx,
		controller: c,
		uploader:   u,
		snaps:      snaps,
		snap:       c.Session().Snapshot(),
		input:      ti,
		spinner:    s,
		width:      80,
		now:        time.Now,
		picture:    viewport.New(imageWidth(80), imageRows),
		render:     Render,
	}, cancel
}

// Run blocks until the user quits or ctx is done.
func Run(ctx context.Context, c *controller.Controller, u store.Uploader, in io.Reader, out io.Writer) error {
	m, cancel := New(ctx, c, u)
	defer cancel()

	_, err := tea.NewProgram(m, tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out), tea.WithAltScreen()).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.waitForSnapshot())
}

func (m Model) waitForSnapshot() tea.Cmd {
	snaps := m.snaps
	return func() tea.Msg {
		s, ok := <-snaps
		if !ok {
			return nil
		}
		return snapshotMsg(s)
	}
}

func (m Model) start(prompt string) tea.Cmd {
	ctx, c := m.ctx, m.controller
	return func() tea.Msg {
		return startedMsg{err: c.Start(ctx, prompt)}
	}
}

func (m Model) save() tea.Cmd {
	ctx, u, snap, now := m.ctx, m.uploader, m.snap, m.now()
	return func() tea.Msg {
		name, err := store.Save(ctx, u, *snap.Image, snap.Prompt, now)
		return savedMsg{name: name, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-4, 10)
		m.picture.Width = imageWidth(msg.Width)
		m.rendered = ""
		m.drawImage()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			// submit is disabled while a cycle runs
			if m.snap.Loading() {
				return m, nil
			}
			m.notice = ""
			return m, m.start(m.input.Value())
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.picture, cmd = m.picture.Update(msg)
			return m, cmd
		case "ctrl+s":
			if m.snap.Image == nil || m.uploader == nil {
				m.notice = "No image to save"
				return m, nil
			}
			m.notice = "Saving..."
			return m, m.save()
		}

	case snapshotMsg:
		wasLoading := m.snap.Loading()
		m.snap = session.Snapshot(msg)
		m.drawImage()
		cmds := []tea.Cmd{m.waitForSnapshot()}
		if !wasLoading && m.snap.Loading() {
			cmds = append(cmds, m.spinner.Tick)
		}
		return m, tea.Batch(cmds...)

	case startedMsg:
		if errors.Is(msg.err, controller.ErrBusy) {
			m.notice = "A generation is already running"
		}
		return m, nil

	case savedMsg:
		if msg.err != nil {
			log.FromContextOrDiscard(m.ctx).Error("saving image failed", "error", msg.err)
			m.notice = "Saving failed: " + msg.err.Error()
		} else {
			m.notice = "Saved as " + msg.name
		}
		return m, nil

	case spinner.TickMsg:
		if !m.snap.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("promptshot"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.snap.Loading() {
		b.WriteString(mutedStyle.Render("[ Generating... ]"))
	} else {
		b.WriteString(mutedStyle.Render("[ Generate: enter ]"))
	}
	b.WriteString("\n\n")

	if m.snap.Error != "" {
		b.WriteString(errorStyle.Render(m.snap.Error))
		b.WriteString("\n\n")
	}

	b.WriteString(areaStyle.Width(max(m.width-2, 20)).Height(5).Render(m.area()))
	b.WriteString("\n")

	if m.notice != "" {
		b.WriteString(noticeStyle.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(mutedStyle.Render("enter: generate • ctrl+s: save • esc: quit"))
	return b.String()
}

func (m Model) area() string {
	switch {
	case m.snap.Loading():
		return fmt.Sprintf("%s Generating image... attempt %d of %d", m.spinner.View(), m.snap.Attempt, m.controller.Attempts())
	case m.snap.Image != nil && m.rendered == m.snap.Image.ID:
		return m.picture.View() + "\n" + m.snap.Prompt + "\n" + mutedStyle.Render(Summary(*m.snap.Image))
	case m.snap.Image != nil:
		return m.snap.Prompt + "\n" + Summary(*m.snap.Image)
	default:
		return mutedStyle.Render(Placeholder)
	}
}

// drawImage renders the current image into the picture viewport once per image.
func (m *Model) drawImage() {
	img := m.snap.Image
	if img == nil {
		m.rendered = ""
		m.picture.SetContent("")
		return
	}
	if m.rendered == img.ID {
		return
	}
	out, err := m.render(img.Data, m.picture.Width, m.picture.Height)
	if err != nil {
		log.FromContextOrDiscard(m.ctx).Warn("rendering image failed", "id", img.ID, "error", err)
		m.rendered = ""
		m.picture.SetContent("")
		return
	}
	m.picture.SetContent(out)
	m.picture.GotoTop()
	m.rendered = img.ID
}

func imageWidth(termWidth int) int {
	return max(termWidth-6, 10)
}
