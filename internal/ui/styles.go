package ui

import "fmt"

// ANSI256 color codes for the loupe console output.
const (
	colorAccent = 74  // blue, identifiers and headings
	colorValue  = 250 // light gray, field values
	colorMuted  = 245 // medium gray, secondary text
)

var noColor bool

// RenderAccent returns s in the accent (blue) color.
func RenderAccent(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorAccent, s)
}

// RenderMuted returns s in the muted (gray) color.
func RenderMuted(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorMuted, s)
}

// RenderValue returns s styled as a field value (light gray).
func RenderValue(s string) string {
	if noColor {
		return s
	}
	return fmt.Sprintf("\x1b[38;5;%dm%s\x1b[0m", colorValue, s)
}

// ForceNoColor disables color output globally.
func ForceNoColor() {
	noColor = true
}
