package chatlog

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type RenderOptions struct {
	Now time.Time
	// Limit keeps only the most recent entries when positive.
	Limit int
	// BotSender names the sender whose entries are styled as bot output.
	BotSender string
}

func renderView(entries []domain.LogEntry, opts RenderOptions, s styles) string {
	total := len(entries)
	if opts.Limit > 0 && total > opts.Limit {
		entries = entries[total-opts.Limit:]
	}

	lines := []string{
		s.title.Render("Chat Log"),
		s.header.Render(headerText(len(entries), total)),
	}

	if len(entries) == 0 {
		lines = append(lines, s.empty.Render("No messages logged yet."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, entry := range entries {
		lines = append(lines, s.section.Render(renderEntry(entry, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func headerText(shown, total int) string {
	if shown == total {
		return fmt.Sprintf("entries: %d", total)
	}

	return fmt.Sprintf("entries: %d of %d", shown, total)
}

func renderEntry(entry domain.LogEntry, opts RenderOptions, s styles) string {
	senderStyle := s.sender
	if opts.BotSender != "" && entry.Sender == opts.BotSender {
		senderStyle = s.bot
	}

	kindStyle := s.original
	if entry.Kind == domain.LogTranslated {
		kindStyle = s.translated
	}

	ageStyle := lipgloss.NewStyle().Foreground(ageColor(entry.Timestamp, opts.Now))

	heading := lipgloss.JoinHorizontal(
		lipgloss.Top,
		senderStyle.Render(entry.Sender),
		" ",
		kindStyle.Render("["+string(entry.Kind)+"]"),
		" ",
		ageStyle.Render(formatTimestamp(entry.Timestamp, opts.Now)),
	)

	return lipgloss.JoinVertical(lipgloss.Left, heading, s.message.Render(strings.TrimRight(entry.Message, "\n")))
}

func formatTimestamp(ts, now time.Time) string {
	if ts.IsZero() {
		return "unknown time"
	}

	stamp := ts.Format("15:04 on 02 Jan")
	if now.IsZero() {
		return stamp
	}

	return fmt.Sprintf("%s (%s)", stamp, formatAgo(ts, now))
}

func formatAgo(ts, now time.Time) string {
	elapsed := now.Sub(ts)
	switch {
	case elapsed < time.Minute:
		return "just now"
	case elapsed < time.Hour:
		return plural(int(elapsed.Minutes()), "minute") + " ago"
	case elapsed < 24*time.Hour:
		return plural(int(elapsed.Hours()), "hour") + " ago"
	default:
		return plural(int(math.Floor(elapsed.Hours()/24)), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}

	return fmt.Sprintf("%d %ss", n, unit)
}

// ageColor fades entries older than a day towards grey.
func ageColor(ts, now time.Time) lipgloss.Color {
	if now.IsZero() || ts.IsZero() || ts.After(now) {
		return lipgloss.Color("255")
	}

	window := 24 * time.Hour
	fresh := window.Seconds() - now.Sub(ts).Seconds()
	return interpolateColor(fresh, 0, window.Seconds())
}

func interpolateColor(value, min, max float64) lipgloss.Color {
	if max == min {
		return lipgloss.Color("255")
	}

	normalized := (value - min) / (max - min)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	// ANSI 256 greyscale ramp, 240 faded to 255 bright.
	interpolated := 240.0 + (255.0-240.0)*normalized

	return lipgloss.Color(fmt.Sprintf("%d", int(interpolated)))
}
