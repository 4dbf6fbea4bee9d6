// Package ui provides styling and output helpers for the tempmail CLI.
package ui

import "github.com/charmbracelet/lipgloss"

// Palette. Adaptive colors keep addresses and previews readable on light
// terminals as well as dark ones.
var (
	accent = lipgloss.AdaptiveColor{Light: "#0B6E99", Dark: "#5FD7FF"}
	good   = lipgloss.AdaptiveColor{Light: "#2E7D32", Dark: "#87D787"}
	bad    = lipgloss.AdaptiveColor{Light: "#B71C1C", Dark: "#FF6B6B"}
	notice = lipgloss.AdaptiveColor{Light: "#8D6E00", Dark: "#FFD75F"}
	muted  = lipgloss.AdaptiveColor{Light: "#6C6C6C", Dark: "#9E9E9E"}
)

var (
	// AddressStyle renders mailbox addresses.
	AddressStyle = lipgloss.NewStyle().Foreground(accent).Underline(true)

	// SubjectStyle renders message subjects and table indexes.
	SubjectStyle = lipgloss.NewStyle().Bold(true)

	// LabelStyle renders field labels in message details.
	LabelStyle = lipgloss.NewStyle().Foreground(muted)

	ErrorStyle   = lipgloss.NewStyle().Foreground(bad).Bold(true)
	SuccessStyle = lipgloss.NewStyle().Foreground(good)
	InfoStyle    = lipgloss.NewStyle().Foreground(accent)
	WaitStyle    = lipgloss.NewStyle().Foreground(muted).Italic(true)
	TimeoutStyle = lipgloss.NewStyle().Foreground(notice)
)

const (
	MailboxIcon = "📭"
	MessageIcon = "✉"
	WaitIcon    = "⏳"
	TimeoutIcon = "⌛"
	SuccessIcon = "✔"
	ErrorIcon   = "✖"
	InfoIcon    = "›"
)
