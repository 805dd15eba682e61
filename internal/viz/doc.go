// Package viz draws body sets in the terminal.
//
// The package implements a live renderer using the Bubble Tea framework:
//
//   - [Model]: a running simulation with a braille canvas and a side panel
//   - [Canvas]: Braille-based pixel canvas with per-cell colors and text
//   - [Viewport]: the physical to screen mapping, screen = physical*scale + center
//   - [DrawScene]: trails, bodies and distance labels
//   - [NewLauncher]: preset picker that starts a live model
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	+/-   - Zoom
//	Tab   - Select next body
//	T     - Cycle color themes
//	R     - Reset to initial state
//	G     - Toggle GIF recording
//	Q     - Quit
//
// Scales and radii in system files are written for an 800 pixel window and
// are converted to the canvas size by [NewViewport] and [Viewport.Radius].
package viz
