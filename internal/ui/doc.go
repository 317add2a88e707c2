// Package ui holds the colour themes shared by the line-mode CLI and the TUI
// dashboard. Each channel has its own accent so that the two answers can be
// told apart at a glance.
package ui
