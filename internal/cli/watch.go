package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Ekats/mycelica-layout/internal/layout"
)

// Theme holds the color scheme for the watch display.
type Theme struct {
	Status  lipgloss.Color
	Success lipgloss.Color
	Error   lipgloss.Color
	Hint    lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:  lipgloss.Color("#5FAFD7"), // light blue
	Success: lipgloss.Color("#00D787"), // green
	Error:   lipgloss.Color("#FF005F"), // red
	Hint:    lipgloss.Color("#6C6C6C"), // dim gray
}

func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) successStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the live layout feed",
	Long: `Subscribe to the layout server's WebSocket feed and show a live
summary of each published layout.

Examples:
  mycelica watch
  mycelica watch --server http://localhost:8487`,
	RunE: runWatch,
}

// layoutMsg carries a freshly published layout.
type layoutMsg layout.Result

// feedClosedMsg signals the subscription ended.
type feedClosedMsg struct {
	err error
}

// watchModel is the bubbletea model for the live feed.
type watchModel struct {
	updates  <-chan layout.Result
	closed   <-chan error
	spinner  spinner.Model
	theme    Theme
	latest   *layout.Result
	count    int
	lastSeen time.Time
	err      error
	quitting bool
}

func newWatchModel(updates <-chan layout.Result, closed <-chan error) watchModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return watchModel{
		updates: updates,
		closed:  closed,
		spinner: sp,
		theme:   defaultTheme,
	}
}

// Init starts the spinner and the feed reader.
func (m watchModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForUpdate(),
	)
}

// Update handles messages and returns the updated model.
func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case layoutMsg:
		result := layout.Result(msg)
		m.latest = &result
		m.count++
		m.lastSeen = time.Now()
		return m, m.waitForUpdate()

	case feedClosedMsg:
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the feed summary.
func (m watchModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

func (m watchModel) renderContent() string {
	if m.quitting {
		return m.theme.hintStyle().Render("\nStopped watching.\n")
	}
	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Feed closed: %s\n", m.err))
	}

	header := m.theme.statusStyle().Render("Watching layout feed")
	hint := m.theme.hintStyle().Render("Press q to quit")

	if m.latest == nil {
		return fmt.Sprintf("%s %s waiting for first layout...\n%s\n", header, m.spinner.View(), hint)
	}

	r := m.latest
	body := fmt.Sprintf(
		"  Mode:       %s\n  Positions:  %d\n  Clusters:   %d\n  Merged:     %d\n  Boundaries: %d\n",
		r.Mode, len(r.Positions), len(r.Clusters), len(r.MergeMap), len(r.Boundaries))

	status := m.theme.successStyle().Render(
		fmt.Sprintf("✓ %d updates, last %s", m.count, m.lastSeen.Format("15:04:05")))

	return fmt.Sprintf("%s %s\n\n%s\n%s\n%s\n", header, m.spinner.View(), status, body, hint)
}

// waitForUpdate blocks on the feed channels in a command, keeping Update
// non-blocking.
func (m watchModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		select {
		case result, ok := <-m.updates:
			if !ok {
				return feedClosedMsg{}
			}
			return layoutMsg(result)
		case err := <-m.closed:
			return feedClosedMsg{err: err}
		}
	}
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	updates := make(chan layout.Result, 1)
	closed := make(chan error, 1)

	go func() {
		err := apiClient().Subscribe(ctx, func(result layout.Result) error {
			select {
			case updates <- result:
			case <-ctx.Done():
				return ctx.Err()
			}
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			closed <- err
		}
	}()

	p := tea.NewProgram(newWatchModel(updates, closed))
	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("watch UI error: %w", err)
	}

	if m, ok := finalModel.(watchModel); ok && m.err != nil {
		return m.err
	}
	return nil
}
