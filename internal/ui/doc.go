// Package ui draws session snapshots with Bubble Tea.
//
// The session controller owns all state and input handling; this package only
// renders. Program wraps a tea.Program started without an input reader and
// forwards every Snapshot to the Model as a frameMsg. The Model keeps the most
// recent snapshot together with the purely visual state that belongs to the
// terminal rather than the session: window size, per-pane scroll offsets, the
// blinking field caret, the fetch spinner and the description viewport.
//
// Layout, top to bottom:
//   - a header with the confirmed repository and release counts,
//   - two rows of fields (owner and repo, then the release and asset patterns),
//   - the assets pane on the left and the releases pane on the right,
//   - a row of action buttons,
//   - the description box (release notes or asset details),
//   - the status line and the key help footer.
package ui
