// Package viz renders read-only system snapshots for the terminal.
//
// Nothing here mutates a [physics.System]; every entry point takes a
// [physics.Snapshot] so a frame always shows one consistent instant.
//
//   - [Projection]: world coordinates to screen coordinates, using the
//     system's world radius for scale
//   - [Canvas]: Braille-based pixel canvas (2x4 dots per cell)
//   - [Frame]: a bordered lipgloss panel with bodies, trails and a legend
package viz
