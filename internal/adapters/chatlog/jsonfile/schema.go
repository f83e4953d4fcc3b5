package jsonfile

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/bnema/voxlate/internal/domain"
)

// timestampLayout matches JavaScript's Date.toISOString so existing log
// files stay readable by the tools built around them.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

type entrySchema struct {
	Sender    string `json:"sender"`
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Type      string `json:"type"`
}

func toSchema(entry domain.LogEntry) entrySchema {
	return entrySchema{
		Sender:    entry.Sender,
		Timestamp: entry.Timestamp.UTC().Format(timestampLayout),
		Message:   entry.Message,
		Type:      string(entry.Kind),
	}
}

func fromSchema(entry entrySchema) (domain.LogEntry, error) {
	var ts time.Time
	if entry.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339Nano, entry.Timestamp)
		if err != nil {
			return domain.LogEntry{}, fmt.Errorf("parse timestamp %q: %w", entry.Timestamp, err)
		}
		ts = parsed
	}

	return domain.LogEntry{
		Sender:    entry.Sender,
		Timestamp: ts,
		Message:   entry.Message,
		Kind:      domain.LogKind(entry.Type),
	}, nil
}

// Encode writes entries in the on-disk log format.
func Encode(w io.Writer, entries []domain.LogEntry) error {
	encoded := make([]entrySchema, 0, len(entries))
	for _, entry := range entries {
		encoded = append(encoded, toSchema(entry))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)

	return enc.Encode(encoded)
}
