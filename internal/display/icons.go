package display

import (
	"os"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
)

// Icon represents a visual icon with Unicode and ASCII fallbacks.
type Icon struct {
	Unicode string
	ASCII   string
	Color   Color
}

// IconSystem handles icon rendering with fallbacks.
type IconSystem interface {
	RenderIcon(name string) string
	RenderIconWithColor(name string, colorSystem ColorSystem) string
	IsUnicodeSupported() bool
}

type iconSystem struct {
	unicodeSupported bool
	icons            map[string]Icon
}

// NewIconSystem creates a new icon system with Unicode detection.
func NewIconSystem() IconSystem {
	is := &iconSystem{
		unicodeSupported: detectUnicodeSupport(),
	}
	is.initializeIcons()
	return is
}

// detectUnicodeSupport checks if the terminal supports Unicode characters.
func detectUnicodeSupport() bool {
	if os.Getenv("FORCE_UNICODE") != "" {
		return true
	}
	if os.Getenv("NO_UNICODE") != "" {
		return false
	}
	if os.Getenv("LANG") == "C" || os.Getenv("LC_ALL") == "C" {
		return false
	}
	term := os.Getenv("TERM")
	if term == "dumb" || term == "vt100" {
		return false
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return false
	}
	return true
}

func (is *iconSystem) initializeIcons() {
	is.icons = map[string]Icon{
		"success": {
			Unicode: "✅",
			ASCII:   "[OK]",
			Color:   ColorGreen,
		},
		"error": {
			Unicode: "❌",
			ASCII:   "[ERR]",
			Color:   ColorRed,
		},
		"warning": {
			Unicode: "⚠️",
			ASCII:   "[WARN]",
			Color:   ColorYellow,
		},
		"info": {
			Unicode: "ℹ️",
			ASCII:   "[INFO]",
			Color:   ColorBlue,
		},
		"database": {
			Unicode: "\U0001f5c4",
			ASCII:   "[DB]",
			Color:   ColorCyan,
		},
		"archive": {
			Unicode: "\U0001f4e6",
			ASCII:   "[ZIP]",
			Color:   ColorBlue,
		},
		"container": {
			Unicode: "\U0001f433",
			ASCII:   "[DKR]",
			Color:   ColorBrightBlue,
		},
		"done": {
			Unicode: "✓",
			ASCII:   "OK",
			Color:   ColorGreen,
		},
		"failed": {
			Unicode: "✗",
			ASCII:   "FAIL",
			Color:   ColorRed,
		},
		"arrow-right": {
			Unicode: "→",
			ASCII:   "->",
			Color:   ColorBlue,
		},
		"bullet": {
			Unicode: "•",
			ASCII:   "*",
			Color:   ColorWhite,
		},
	}
}

func (is *iconSystem) getIcon(name string) Icon {
	if icon, exists := is.icons[name]; exists {
		return icon
	}
	return Icon{Unicode: "?", ASCII: "?", Color: ColorWhite}
}

// RenderIcon returns the Unicode or ASCII form depending on the terminal.
func (is *iconSystem) RenderIcon(name string) string {
	icon := is.getIcon(name)
	if is.unicodeSupported && utf8.ValidString(icon.Unicode) {
		return icon.Unicode
	}
	return icon.ASCII
}

// RenderIconWithColor returns the icon with its color applied.
func (is *iconSystem) RenderIconWithColor(name string, colorSystem ColorSystem) string {
	icon := is.getIcon(name)
	iconText := is.RenderIcon(name)
	if colorSystem.IsColorSupported() {
		return colorSystem.Colorize(iconText, icon.Color)
	}
	return iconText
}

// IsUnicodeSupported returns whether Unicode is supported.
func (is *iconSystem) IsUnicodeSupported() bool {
	return is.unicodeSupported
}
