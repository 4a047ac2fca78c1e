// Package app implements the interactive dashboard as a Bubble Tea model:
// a modal state machine driven by keyboard events and asynchronous results.
package app

// Mode identifies the active modal state. Exactly one Mode is active at a
// time; every key event is dispatched through the handler for the current
// mode, never through global flags.
type Mode int

const (
	// ModeDashboard is the initial state showing the usage overview.
	ModeDashboard Mode = iota
	// ModeCommandMenu shows the command palette.
	ModeCommandMenu
	// ModeThemeSelector shows the theme picker with live preview.
	ModeThemeSelector
	// ModeConfirmRefresh gates a refresh behind a yes/no prompt.
	ModeConfirmRefresh
	// ModeConfirmReconfigure gates reconfiguration behind a yes/no prompt.
	ModeConfirmReconfigure
	// ModeShowHelp shows the keybinding reference.
	ModeShowHelp
	// ModeLoadingRefresh animates while a refresh is in flight.
	ModeLoadingRefresh
	// ModeLoadingCache animates while cache info is being gathered.
	ModeLoadingCache
	// ModeShowCacheInfo shows the cache status popup.
	ModeShowCacheInfo
	// ModeShowError shows a dismissible failure with a debug toggle.
	ModeShowError
)

// String returns the string representation of a Mode.
func (m Mode) String() string {
	switch m {
	case ModeDashboard:
		return "dashboard"
	case ModeCommandMenu:
		return "command-menu"
	case ModeThemeSelector:
		return "theme-selector"
	case ModeConfirmRefresh:
		return "confirm-refresh"
	case ModeConfirmReconfigure:
		return "confirm-reconfigure"
	case ModeShowHelp:
		return "help"
	case ModeLoadingRefresh:
		return "loading-refresh"
	case ModeLoadingCache:
		return "loading-cache"
	case ModeShowCacheInfo:
		return "cache-info"
	case ModeShowError:
		return "error"
	default:
		return "unknown"
	}
}

// Loading reports whether the mode animates a spinner.
func (m Mode) Loading() bool {
	return m == ModeLoadingRefresh || m == ModeLoadingCache
}

// Exit action tokens handed back to the CLI shell when the loop ends.
const (
	ActionQuit        = "quit"
	ActionReconfigure = "reconfigure"
)

// Command is one entry in the command menu. Shortcut is a single-letter key
// that selects and executes the entry directly.
type Command struct {
	ID       string
	Label    string
	Shortcut string
}

// MenuCommands returns the command menu entries in display order.
func MenuCommands() []Command {
	return []Command{
		{ID: "refresh", Label: "Refresh Data", Shortcut: "r"},
		{ID: "theme", Label: "Change Theme", Shortcut: "t"},
		{ID: "reconfigure", Label: "Reconfigure", Shortcut: "c"},
		{ID: "cache", Label: "Cache Status", Shortcut: "s"},
		{ID: "help", Label: "Help", Shortcut: "h"},
		{ID: "quit", Label: "Quit", Shortcut: "q"},
	}
}

// wrapIndex moves an index by delta within [0, n), wrapping at both ends.
func wrapIndex(i, delta, n int) int {
	if n <= 0 {
		return 0
	}
	i = (i + delta) % n
	if i < 0 {
		i += n
	}
	return i
}

// clampScroll clamps a scroll offset so the visible window stays within the
// list. A list shorter than the window always scrolls to zero.
func clampScroll(offset, total, visible int) int {
	maxOffset := total - visible
	if maxOffset < 0 {
		maxOffset = 0
	}
	if offset > maxOffset {
		offset = maxOffset
	}
	if offset < 0 {
		offset = 0
	}
	return offset
}

// scrollWindow adjusts a scroll offset so the selected index is visible.
func scrollWindow(selected, offset, visible int) int {
	if visible <= 0 {
		return 0
	}
	if selected < offset {
		return selected
	}
	if selected >= offset+visible {
		return selected - visible + 1
	}
	return offset
}
