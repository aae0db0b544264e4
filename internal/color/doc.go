// Package color decides whether the dashboard is drawn in colour.
//
// Colours are dropped when the user asks for it on the command line or sets
// the NO_COLOR environment variable (see https://no-color.org). Otherwise
// lipgloss keeps the profile it detected for the terminal.
package color
