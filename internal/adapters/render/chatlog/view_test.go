package chatlog

import (
	"testing"
	"time"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEntries(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	output, err := Render([]domain.LogEntry{
		{Sender: "alice@s.whatsapp.net", Timestamp: now.Add(-3 * time.Hour), Message: "¿Dónde está la estación?", Kind: domain.LogOriginal},
		{Sender: "Bot", Timestamp: now.Add(-3 * time.Hour), Message: "Where is the station?", Kind: domain.LogTranslated},
	}, RenderOptions{Now: now, BotSender: "Bot"})

	require.NoError(t, err)
	assert.Contains(t, output, "Chat Log")
	assert.Contains(t, output, "entries: 2")
	assert.Contains(t, output, "alice@s.whatsapp.net")
	assert.Contains(t, output, "[original]")
	assert.Contains(t, output, "[translated]")
	assert.Contains(t, output, "Where is the station?")
	assert.Contains(t, output, "08:00 on 14 Feb (3 hours ago)")
}

func TestRenderEmptyLog(t *testing.T) {
	output, err := Render(nil, RenderOptions{})

	require.NoError(t, err)
	assert.Contains(t, output, "entries: 0")
	assert.Contains(t, output, "No messages logged yet.")
}

func TestRenderLimitKeepsNewest(t *testing.T) {
	base := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)
	entries := []domain.LogEntry{
		{Sender: "a", Timestamp: base, Message: "first", Kind: domain.LogOriginal},
		{Sender: "a", Timestamp: base.Add(time.Minute), Message: "second", Kind: domain.LogOriginal},
		{Sender: "a", Timestamp: base.Add(2 * time.Minute), Message: "third", Kind: domain.LogOriginal},
	}

	output, err := Render(entries, RenderOptions{Limit: 2})

	require.NoError(t, err)
	assert.Contains(t, output, "entries: 2 of 3")
	assert.NotContains(t, output, "first")
	assert.Contains(t, output, "second")
	assert.Contains(t, output, "third")
}

func TestFormatAgo(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	cases := []struct {
		ago  time.Duration
		want string
	}{
		{ago: 10 * time.Second, want: "just now"},
		{ago: time.Minute, want: "1 minute ago"},
		{ago: 45 * time.Minute, want: "45 minutes ago"},
		{ago: 26 * time.Hour, want: "1 day ago"},
		{ago: 72 * time.Hour, want: "3 days ago"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, formatAgo(now.Add(-tc.ago), now))
	}
}

func TestAgeColorFadesOldEntries(t *testing.T) {
	now := time.Date(2026, 2, 14, 11, 0, 0, 0, time.UTC)

	assert.Equal(t, lipgloss.Color("255"), ageColor(now, now))
	assert.Equal(t, lipgloss.Color("240"), ageColor(now.Add(-48*time.Hour), now))
	assert.Equal(t, lipgloss.Color("255"), ageColor(time.Time{}, now))
}
