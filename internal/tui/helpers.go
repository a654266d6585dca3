package tui

import (
	"strings"

	"github.com/andy/invoicer/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// numberBadge shows the invoice number, or a draft marker before first save
func numberBadge(inv *domain.Invoice) string {
	if inv.IsSaved() {
		return inv.InvoiceNumber
	}
	return draftBadgeStyle.Render("DRAFT")
}

// padRight pads s to width by display cell count, so styled badges line up
func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// truncateStr truncates a string to the specified length with ellipsis
func truncateStr(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
