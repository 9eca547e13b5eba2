// Package output renders command results for the terminal.
//
// Three formats are supported. Terminal output is styled with lipgloss and
// pterm, and template details are rendered as markdown through glamour. Text
// output carries the same content with all styling stripped, and JSON output
// is meant for scripts.
package output
