package tui

// StateChangedMsg tells the active page to re-read the reconciler
// snapshot. It is produced both by finished operation commands and by
// the reconciler's change hook (forwarded through Program.Send), which
// is how the delayed forced logout reaches the screen.
type StateChangedMsg struct{}

// reportSavedMsg carries the outcome of a report download.
type reportSavedMsg struct {
	path string
	err  error
}
