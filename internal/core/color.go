package core

// Color is a palette index shared by the terminal and LCD frontends.
type Color uint8

const (
	ColorDefault Color = iota
	ColorBlack
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorOrange
	ColorGray
)

// RGB returns the 8-bit channels used by pixel frontends. ColorDefault
// renders as white on the LCD.
func (c Color) RGB() (r, g, b uint8) {
	switch c {
	case ColorBlack:
		return 0, 0, 0
	case ColorRed:
		return 0xff, 0x00, 0x00
	case ColorGreen:
		return 0x00, 0xff, 0x00
	case ColorYellow:
		return 0xff, 0xff, 0x00
	case ColorBlue:
		return 0x00, 0x00, 0xff
	case ColorMagenta:
		return 0xff, 0x00, 0xff
	case ColorCyan:
		return 0x00, 0xff, 0xff
	case ColorOrange:
		return 0xff, 0xa5, 0x00
	case ColorGray:
		return 0x80, 0x80, 0x80
	default:
		return 0xff, 0xff, 0xff
	}
}

// UsageColor grades a CPU percentage: red above 80, yellow above 50.
func UsageColor(percent uint8) Color {
	switch {
	case percent > 80:
		return ColorRed
	case percent > 50:
		return ColorYellow
	default:
		return ColorGreen
	}
}
