package domain

import "time"

type LogKind string

const (
	LogOriginal   LogKind = "original"
	LogTranslated LogKind = "translated"
)

type LogEntry struct {
	Sender    string
	Timestamp time.Time
	Message   string
	Kind      LogKind
}
