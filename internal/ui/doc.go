// Package ui holds the plain terminal output shared by procmon's
// non-interactive commands: the color palette, status glyphs, a stderr
// spinner, the branded header, and the printed process and specs tables.
//
// Value formatting (bytes, rates, runtimes, percentages) lives here too so
// the dashboard and `procmon snapshot` print the same text for the same
// record.
//
// Use DisableColors() to switch to monochrome output (for --no-color).
package ui
