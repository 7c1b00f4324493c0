package indicator

import "fmt"

// Color holds the three RGB channel intensities. Zero means de-energized.
type Color struct {
	R, G, B uint8
}

var (
	Dark   = Color{}
	Red    = Color{R: 255}
	Green  = Color{G: 255}
	Blue   = Color{B: 255}
	Yellow = Color{R: 255, G: 255}
	Cyan   = Color{G: 255, B: 255}
	White  = Color{R: 255, G: 255, B: 255}
)

// IsDark reports whether every channel is off
func (c Color) IsDark() bool { return c == Dark }

// Hex formats the color as #rrggbb
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string { return c.Hex() }
