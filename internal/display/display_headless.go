//go:build headless

package display

import (
	"context"
	"log/slog"
	"time"

	"github.com/brand7n/macemu/internal/video"
)

// Display paces emulation at video.FrameRate without opening a window.
type Display struct {
	src Source
	log *slog.Logger
}

func New(src Source, _ int, log *slog.Logger) *Display {
	if log == nil {
		log = slog.Default()
	}
	return &Display{src: src, log: log}
}

// Run blocks until ctx is cancelled or the machine stops with an error.
func (d *Display) Run(ctx context.Context) error {
	ticker := time.NewTicker(time.Second / video.FrameRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := d.src.RunFrame(); err != nil {
				d.log.Error("display: machine stopped", "error", err)
				return err
			}
		}
	}
}
