//go:build !headless

package display

import (
	"context"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/brand7n/macemu/internal/video"
)

// Display is an ebiten window. Emulation runs inside Update, so the
// framebuffer is never read while the CPU is writing it.
type Display struct {
	src   Source
	scale int
	log   *slog.Logger

	ctx  context.Context
	err  error
	img  *ebiten.Image
	pix  []byte
	keys []ebiten.Key
}

func New(src Source, scale int, log *slog.Logger) *Display {
	if scale < 1 {
		scale = 1
	}
	if log == nil {
		log = slog.Default()
	}
	return &Display{
		src:   src,
		scale: scale,
		log:   log,
		pix:   make([]byte, video.Width*video.Height*4),
	}
}

// Run opens the window and blocks until it is closed, ctx is cancelled or
// the machine stops with an error.
func (d *Display) Run(ctx context.Context) error {
	d.ctx = ctx
	ebiten.SetWindowSize(video.Width*d.scale, video.Height*d.scale)
	ebiten.SetWindowTitle("macemu")
	ebiten.SetTPS(video.FrameRate)
	ebiten.SetRunnableOnUnfocused(true)

	if err := ebiten.RunGame(d); err != nil {
		return err
	}
	return d.err
}

func (d *Display) Update() error {
	select {
	case <-d.ctx.Done():
		return ebiten.Termination
	default:
	}

	d.input()

	if err := d.src.RunFrame(); err != nil {
		d.log.Error("display: machine stopped", "error", err)
		d.err = err
		return ebiten.Termination
	}
	return nil
}

func (d *Display) input() {
	d.keys = inpututil.AppendJustPressedKeys(d.keys[:0])
	for _, k := range d.keys {
		if code, ok := macKeys[k]; ok {
			d.src.KeyDown(code)
		}
	}
	d.keys = inpututil.AppendJustReleasedKeys(d.keys[:0])
	for _, k := range d.keys {
		if code, ok := macKeys[k]; ok {
			d.src.KeyUp(code)
		}
	}
	d.src.SetMouseButton(ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))
}

func (d *Display) Draw(screen *ebiten.Image) {
	if d.img == nil {
		d.img = ebiten.NewImage(video.Width, video.Height)
	}
	video.Decode(d.src.Framebuffer(), d.pix)
	d.img.WritePixels(d.pix)
	screen.DrawImage(d.img, nil)
}

func (d *Display) Layout(_, _ int) (int, int) {
	return video.Width, video.Height
}

// macKeys maps host keys to keyboard scan codes.
var macKeys = map[ebiten.Key]uint8{
	ebiten.KeyA: 0x00, ebiten.KeyS: 0x01, ebiten.KeyD: 0x02, ebiten.KeyF: 0x03,
	ebiten.KeyH: 0x04, ebiten.KeyG: 0x05, ebiten.KeyZ: 0x06, ebiten.KeyX: 0x07,
	ebiten.KeyC: 0x08, ebiten.KeyV: 0x09, ebiten.KeyB: 0x0b, ebiten.KeyQ: 0x0c,
	ebiten.KeyW: 0x0d, ebiten.KeyE: 0x0e, ebiten.KeyR: 0x0f, ebiten.KeyY: 0x10,
	ebiten.KeyT: 0x11, ebiten.KeyDigit1: 0x12, ebiten.KeyDigit2: 0x13, ebiten.KeyDigit3: 0x14,
	ebiten.KeyDigit4: 0x15, ebiten.KeyDigit6: 0x16, ebiten.KeyDigit5: 0x17, ebiten.KeyEqual: 0x18,
	ebiten.KeyDigit9: 0x19, ebiten.KeyDigit7: 0x1a, ebiten.KeyMinus: 0x1b, ebiten.KeyDigit8: 0x1c,
	ebiten.KeyDigit0: 0x1d, ebiten.KeyBracketRight: 0x1e, ebiten.KeyO: 0x1f, ebiten.KeyU: 0x20,
	ebiten.KeyBracketLeft: 0x21, ebiten.KeyI: 0x22, ebiten.KeyP: 0x23, ebiten.KeyEnter: 0x24,
	ebiten.KeyL: 0x25, ebiten.KeyJ: 0x26, ebiten.KeyQuote: 0x27, ebiten.KeyK: 0x28,
	ebiten.KeySemicolon: 0x29, ebiten.KeyBackslash: 0x2a, ebiten.KeyComma: 0x2b, ebiten.KeySlash: 0x2c,
	ebiten.KeyN: 0x2d, ebiten.KeyM: 0x2e, ebiten.KeyPeriod: 0x2f, ebiten.KeyTab: 0x30,
	ebiten.KeySpace: 0x31, ebiten.KeyBackquote: 0x32, ebiten.KeyBackspace: 0x33,
}
