// Package video describes the machine's 1 bit per pixel screen buffer and
// turns it into RGBA pixels.
package video

// FrameRate is the vertical refresh rate.
const FrameRate = 60

const (
	Width  = 512
	Height = 342

	// Stride is the number of bytes per scan line.
	Stride = Width / 8
	// Size is the number of bytes in one screen buffer.
	Size = Stride * Height

	// MainOffset and AltOffset locate the two screen pages relative to the
	// end of RAM.
	MainOffset = 0x5900
	AltOffset  = 0xd900
)

// Base returns the RAM offset of the main or alternate screen page.
func Base(ramSize uint32, alternate bool) uint32 {
	if alternate {
		return ramSize - AltOffset
	}
	return ramSize - MainOffset
}

// Decode expands a 1 bpp bitmap into RGBA pixels. A set bit is black, the
// most significant bit is the leftmost pixel. Short input decodes as white.
func Decode(fb []byte, dst []byte) {
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			offset := y*Stride + x/8
			var on bool
			if offset < len(fb) {
				on = fb[offset]>>(7-uint(x%8))&1 != 0
			}

			c := byte(0xff)
			if on {
				c = 0x00
			}

			idx := (y*Width + x) * 4
			dst[idx] = c
			dst[idx+1] = c
			dst[idx+2] = c
			dst[idx+3] = 0xff
		}
	}
}
