package app

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/rbrandt/copilot-usage-tui/internal/logger"
	"github.com/rbrandt/copilot-usage-tui/internal/models"
	"github.com/rbrandt/copilot-usage-tui/internal/services"
	"github.com/rbrandt/copilot-usage-tui/internal/ui/styles"
)

// KeyMap defines the keybindings for the dashboard.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Enter       key.Binding
	Escape      key.Binding
	Quit        key.Binding
	ForceQuit   key.Binding
	Menu        key.Binding
	Refresh     key.Binding
	Theme       key.Binding
	Reconfigure key.Binding
	CacheStatus key.Binding
	Help        key.Binding
	Yes         key.Binding
	No          key.Binding
	ToggleDebug key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Enter:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Escape:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:        key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		ForceQuit:   key.NewBinding(key.WithKeys("ctrl+c")),
		Menu:        key.NewBinding(key.WithKeys("/", ":"), key.WithHelp("/", "menu")),
		Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Theme:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Reconfigure: key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "reconfigure")),
		CacheStatus: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "cache status")),
		Help:        key.NewBinding(key.WithKeys("h", "?"), key.WithHelp("h", "help")),
		Yes:         key.NewBinding(key.WithKeys("y", "enter"), key.WithHelp("y", "confirm")),
		No:          key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
		ToggleDebug: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "toggle debug")),
	}
}

// Model is the dashboard application model. A single goroutine (the Bubble
// Tea update loop) owns all of its state; background work reaches it only
// through the orchestrator's result channel.
type Model struct {
	ctx    context.Context
	mgr    *services.Manager
	sched  Scheduler
	keymap KeyMap
	styles styles.Styles

	spinner spinner.Model

	mode  Mode
	stats models.UsageStats

	theme     models.Theme
	prevTheme models.Theme

	cacheInfo  models.CacheInfo
	errMessage string
	errDebug   string
	showDebug  bool

	menuIndex   int
	menuScroll  int
	themeIndex  int
	modelScroll int

	width  int
	height int

	action string

	changes <-chan struct{}
}

// NewModel builds the dashboard around already-loaded stats. ctx bounds the
// cache watcher; cancel it once the program returns.
func NewModel(ctx context.Context, mgr *services.Manager, initial models.UsageStats, theme models.Theme) *Model {
	m := &Model{
		ctx:    ctx,
		mgr:    mgr,
		sched:  NewScheduler(),
		keymap: DefaultKeyMap(),
		mode:   ModeDashboard,
		stats:  initial,
		theme:  theme,
	}
	m.applyTheme(theme)
	return m
}

// Action returns the exit token ("quit" or "reconfigure") once the program
// has finished.
func (m *Model) Action() string {
	return m.action
}

// Theme returns the currently applied theme.
func (m *Model) Theme() models.Theme {
	return m.theme
}

func (m *Model) applyTheme(t models.Theme) {
	m.theme = t
	m.styles = styles.New(t)

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(m.styles.Palette().Accent)
	m.spinner = s
}

// Init starts the frame loop and the cache watcher.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.sched.Interval(m.mode)),
		watchCacheCmd(m.ctx, m.mgr),
	)
}

// Update handles messages and advances the state machine.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.modelScroll = clampScroll(m.modelScroll, len(m.stats.Models), m.visibleModelRows())
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case spinner.TickMsg:
		if !m.mode.Loading() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case TickMsg:
		m.drainResults()
		return m, tickCmd(m.sched.Interval(m.mode))

	case cacheWatchMsg:
		m.changes = msg.changes
		return m, waitForCacheChangeCmd(m.changes)

	case CacheChangedMsg:
		cmds := []tea.Cmd{reloadCachedStatsCmd(m.mgr)}
		if m.changes != nil {
			cmds = append(cmds, waitForCacheChangeCmd(m.changes))
		}
		return m, tea.Batch(cmds...)

	case StatsReloadedMsg:
		m.stats = msg.Stats
		m.modelScroll = clampScroll(m.modelScroll, len(m.stats.Models), m.visibleModelRows())
		return m, nil
	}

	return m, nil
}

// drainResults applies every pending orchestrator result. Results carrying a
// generation other than the current one are discarded: they belong to work
// that was cancelled or superseded.
func (m *Model) drainResults() {
	for {
		r, ok := m.mgr.TryRecv()
		if !ok {
			return
		}
		m.applyResult(r)
	}
}

func (m *Model) applyResult(r services.Result) {
	if r.Gen != m.mgr.CurrentGen() {
		logger.Debug("discarding stale result", "kind", r.Kind.String(), "gen", r.Gen)
		return
	}

	switch r.Kind {
	case services.RefreshComplete:
		if r.Err != nil {
			m.errMessage = r.Message
			m.errDebug = r.Debug
			m.showDebug = false
			m.mode = ModeShowError
			return
		}
		m.stats = *r.Stats
		m.modelScroll = clampScroll(m.modelScroll, len(m.stats.Models), m.visibleModelRows())
		m.mode = ModeDashboard

	case services.CacheInfoReady:
		m.cacheInfo = r.Info
		m.mode = ModeShowCacheInfo

	case services.ThemeSaved:
		// Visual change already applied; persistence failure was logged.
	}
}

// handleKey dispatches a key event to the handler for the current mode.
func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keymap.ForceQuit) {
		m.action = ActionQuit
		return tea.Quit
	}

	switch m.mode {
	case ModeDashboard:
		return m.handleDashboardKey(msg)
	case ModeCommandMenu:
		return m.handleMenuKey(msg)
	case ModeThemeSelector:
		return m.handleThemeKey(msg)
	case ModeConfirmRefresh:
		return m.handleConfirmRefreshKey(msg)
	case ModeConfirmReconfigure:
		return m.handleConfirmReconfigureKey(msg)
	case ModeLoadingRefresh, ModeLoadingCache:
		return m.handleLoadingKey(msg)
	case ModeShowError:
		return m.handleErrorKey(msg)
	case ModeShowHelp, ModeShowCacheInfo:
		m.mode = ModeDashboard
		return nil
	}
	return nil
}

func (m *Model) handleDashboardKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Quit):
		m.action = ActionQuit
		return tea.Quit

	case key.Matches(msg, m.keymap.Menu):
		m.menuIndex = 0
		m.menuScroll = 0
		m.mode = ModeCommandMenu

	case key.Matches(msg, m.keymap.Refresh):
		m.mode = ModeConfirmRefresh

	case key.Matches(msg, m.keymap.Theme):
		m.openThemeSelector()

	case key.Matches(msg, m.keymap.Reconfigure):
		m.mode = ModeConfirmReconfigure

	case key.Matches(msg, m.keymap.CacheStatus):
		return m.startCacheInfo()

	case key.Matches(msg, m.keymap.Help):
		m.mode = ModeShowHelp

	case key.Matches(msg, m.keymap.Up):
		m.modelScroll = clampScroll(m.modelScroll-1, len(m.stats.Models), m.visibleModelRows())

	case key.Matches(msg, m.keymap.Down):
		m.modelScroll = clampScroll(m.modelScroll+1, len(m.stats.Models), m.visibleModelRows())
	}
	return nil
}

func (m *Model) handleMenuKey(msg tea.KeyMsg) tea.Cmd {
	commands := MenuCommands()

	switch {
	case key.Matches(msg, m.keymap.Escape):
		m.mode = ModeDashboard
		return nil

	case key.Matches(msg, m.keymap.Up):
		m.menuIndex = wrapIndex(m.menuIndex, -1, len(commands))
		m.menuScroll = scrollWindow(m.menuIndex, m.menuScroll, menuWindow)
		return nil

	case key.Matches(msg, m.keymap.Down):
		m.menuIndex = wrapIndex(m.menuIndex, 1, len(commands))
		m.menuScroll = scrollWindow(m.menuIndex, m.menuScroll, menuWindow)
		return nil

	case key.Matches(msg, m.keymap.Enter):
		return m.executeCommand(commands[m.menuIndex].ID)
	}

	// Letter shortcuts jump to the entry and execute it.
	for _, c := range commands {
		if msg.String() == c.Shortcut {
			return m.executeCommand(c.ID)
		}
	}
	return nil
}

func (m *Model) executeCommand(id string) tea.Cmd {
	switch id {
	case "refresh":
		m.mode = ModeConfirmRefresh
	case "theme":
		m.openThemeSelector()
	case "reconfigure":
		m.mode = ModeConfirmReconfigure
	case "cache":
		return m.startCacheInfo()
	case "help":
		m.mode = ModeShowHelp
	case "quit":
		m.action = ActionQuit
		return tea.Quit
	}
	return nil
}

func (m *Model) openThemeSelector() {
	m.prevTheme = m.theme
	m.themeIndex = int(m.theme)
	m.mode = ModeThemeSelector
}

func (m *Model) startCacheInfo() tea.Cmd {
	m.mode = ModeLoadingCache
	m.mgr.SpawnCacheInfo()
	return m.spinner.Tick
}

func (m *Model) handleThemeKey(msg tea.KeyMsg) tea.Cmd {
	names := models.ThemeNames()

	switch {
	case key.Matches(msg, m.keymap.Up):
		m.themeIndex = wrapIndex(m.themeIndex, -1, len(names))
		m.applyTheme(models.Theme(m.themeIndex))

	case key.Matches(msg, m.keymap.Down):
		m.themeIndex = wrapIndex(m.themeIndex, 1, len(names))
		m.applyTheme(models.Theme(m.themeIndex))

	case key.Matches(msg, m.keymap.Enter):
		// Already applied optimistically; persist in the background.
		m.mgr.SpawnSaveTheme(m.theme.String())
		m.mode = ModeDashboard

	case key.Matches(msg, m.keymap.Escape):
		m.applyTheme(m.prevTheme)
		m.mode = ModeDashboard
	}
	return nil
}

func (m *Model) handleConfirmRefreshKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Yes):
		m.mode = ModeLoadingRefresh
		m.mgr.SpawnRefresh()
		return m.spinner.Tick

	case key.Matches(msg, m.keymap.No):
		m.mode = ModeDashboard
	}
	return nil
}

func (m *Model) handleConfirmReconfigureKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keymap.Yes):
		m.action = ActionReconfigure
		return tea.Quit

	case key.Matches(msg, m.keymap.No):
		m.mode = ModeDashboard
	}
	return nil
}

// handleLoadingKey implements soft cancellation: Esc detaches the UI and
// bumps the generation so the in-flight result is discarded on arrival. The
// background task itself keeps running to completion.
func (m *Model) handleLoadingKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keymap.Escape) {
		m.mgr.Cancel()
		m.mode = ModeDashboard
	}
	return nil
}

func (m *Model) handleErrorKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, m.keymap.ToggleDebug) {
		m.showDebug = !m.showDebug
		return nil
	}
	m.mode = ModeDashboard
	return nil
}

// menuWindow is how many menu entries are visible at once.
const menuWindow = 6

// visibleModelRows returns how many per-model rows fit the current terminal,
// with a sane default before the first WindowSizeMsg arrives.
func (m *Model) visibleModelRows() int {
	if m.height <= 0 {
		return 10
	}
	rows := m.height - 12
	if rows < 1 {
		rows = 1
	}
	return rows
}
