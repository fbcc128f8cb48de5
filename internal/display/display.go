// Package display presents the machine's screen and feeds host input back to
// it. The default build opens an ebiten window; build with -tags headless to
// run without one.
package display

// Source is the emulated machine as seen by a display. RunFrame, input and
// Framebuffer are all called from the display's goroutine.
type Source interface {
	RunFrame() error
	Framebuffer() []byte
	KeyDown(code uint8)
	KeyUp(code uint8)
	SetMouseButton(down bool)
}
