package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/bnema/voxlate/internal/domain"
	"github.com/bnema/voxlate/internal/ports"
)

// BotSender is the sender recorded on translated log entries.
const BotSender = "Bot"

// autoDetect asks the remote translator to detect the source language itself.
const autoDetect = "auto"

// Replies holds the user-facing reply templates. {text} is replaced with the
// translated or transcribed text and {lang} with the target language name.
type Replies struct {
	Translated       string
	AlreadyTarget    string
	TranslateFailed  string
	TranscribeFailed string
	VoiceFailed      string
	TranscriptOnly   string
}

func DefaultReplies() Replies {
	return Replies{
		Translated:       "🈶 translated:\n{text}",
		AlreadyTarget:    "✅ Message is already in {lang}.",
		TranslateFailed:  "❌ Failed to translate text.",
		TranscribeFailed: "❌ Failed to transcribe voice message.",
		VoiceFailed:      "❌ Failed to process voice message.",
		TranscriptOnly:   "📝 Transcribed:\n{text}\n⚠️ But failed to translate.",
	}
}

func (r Replies) withDefaults() Replies {
	defaults := DefaultReplies()
	fill := func(value *string, fallback string) {
		if strings.TrimSpace(*value) == "" {
			*value = fallback
		}
	}
	fill(&r.Translated, defaults.Translated)
	fill(&r.AlreadyTarget, defaults.AlreadyTarget)
	fill(&r.TranslateFailed, defaults.TranslateFailed)
	fill(&r.TranscribeFailed, defaults.TranscribeFailed)
	fill(&r.VoiceFailed, defaults.VoiceFailed)
	fill(&r.TranscriptOnly, defaults.TranscriptOnly)

	return r
}

func (r Replies) forTarget(target string) Replies {
	r.AlreadyTarget = strings.ReplaceAll(r.AlreadyTarget, "{lang}", domain.LanguageName(target))
	return r
}

func render(template, text string) string {
	return strings.ReplaceAll(template, "{text}", text)
}

type VoiceTranscriber interface {
	Transcribe(ctx context.Context, fetcher ports.AudioFetcher, ref domain.AudioRef) (string, error)
}

type DispatcherConfig struct {
	TargetLanguage string
	Replies        Replies
}

// Dispatcher turns one inbound event into at most one reply. Failures are
// logged and answered with a category reply; they never propagate.
type Dispatcher struct {
	detector    ports.LanguageDetector
	translator  ports.Translator
	transcriber VoiceTranscriber
	chatLog     ports.ChatLog
	clock       ports.Clock
	logger      *slog.Logger
	target      string
	replies     Replies
}

func NewDispatcher(
	detector ports.LanguageDetector,
	translator ports.Translator,
	transcriber VoiceTranscriber,
	chatLog ports.ChatLog,
	clock ports.Clock,
	logger *slog.Logger,
	cfg DispatcherConfig,
) *Dispatcher {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	target := domain.NormalizeLanguage(cfg.TargetLanguage)
	if target == "" {
		target = domain.DefaultTargetLanguage
	}

	return &Dispatcher{
		detector:    detector,
		translator:  translator,
		transcriber: transcriber,
		chatLog:     chatLog,
		clock:       clock,
		logger:      logger.With("component", "dispatcher"),
		target:      target,
		replies:     cfg.Replies.withDefaults().forTarget(target),
	}
}

func (d *Dispatcher) TargetLanguage() string {
	return d.target
}

// Dispatch handles event and returns the reply to send, if any. Audio takes
// precedence over text when an event carries both.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.InboundEvent, fetcher ports.AudioFetcher) (domain.Reply, bool) {
	logger := d.logger.With("sender", event.Sender, "message_id", event.ID)
	if event.FromSelf {
		logger.Debug("skip self-originated message")
		return domain.Reply{}, false
	}
	if err := event.Validate(); err != nil {
		logger.Debug("skip inbound event", "error", err)
		return domain.Reply{}, false
	}

	var text string
	switch event.Kind() {
	case domain.PayloadAudio:
		text = d.handleAudio(ctx, logger, event, fetcher)
	default:
		text = d.handleText(ctx, logger, event.Sender, event.Text)
	}

	return domain.Reply{To: event.Sender, Text: text}, true
}

func (d *Dispatcher) handleText(ctx context.Context, logger *slog.Logger, sender, text string) string {
	d.record(ctx, logger, sender, text, domain.LogOriginal)

	lang := domain.NormalizeLanguage(d.detector.Detect(text))
	if lang == d.target {
		logger.Debug("message already in target language", "lang", lang)
		return d.replies.AlreadyTarget
	}

	translated, alreadyTarget, err := d.translate(ctx, logger, text, lang)
	if err != nil {
		logger.Error("translate message", "lang", lang, "error", err)
		return d.replies.TranslateFailed
	}
	if alreadyTarget {
		return d.replies.AlreadyTarget
	}

	return render(d.replies.Translated, translated)
}

func (d *Dispatcher) handleAudio(ctx context.Context, logger *slog.Logger, event domain.InboundEvent, fetcher ports.AudioFetcher) string {
	transcript, err := d.transcriber.Transcribe(ctx, fetcher, *event.Audio)
	if err != nil {
		logger.Error("transcribe voice message", "error", err)

		var stageErr *domain.TranscriptionError
		if errors.As(err, &stageErr) && stageErr.Stage == domain.StageTranscribe {
			return d.replies.TranscribeFailed
		}
		return d.replies.VoiceFailed
	}

	d.record(ctx, logger, event.Sender, transcript, domain.LogOriginal)

	lang := domain.NormalizeLanguage(d.detector.Detect(transcript))
	if lang == d.target {
		return render(d.replies.Translated, transcript)
	}

	translated, alreadyTarget, err := d.translate(ctx, logger, transcript, lang)
	if err != nil {
		logger.Error("translate transcript", "lang", lang, "error", err)
		return render(d.replies.TranscriptOnly, transcript)
	}
	if alreadyTarget {
		return render(d.replies.Translated, transcript)
	}

	return render(d.replies.Translated, translated)
}

// translate reports alreadyTarget when the remote found text to be in the
// target language after all; nothing is logged as translated then.
func (d *Dispatcher) translate(ctx context.Context, logger *slog.Logger, text, lang string) (translated string, alreadyTarget bool, err error) {
	source := lang
	if source == "" {
		source = autoDetect
	}

	translation, err := d.translator.Translate(ctx, text, source, d.target)
	if err != nil {
		return "", false, err
	}
	if domain.SameLanguage(translation.SourceLang, d.target) {
		logger.Debug("remote detected target language", "lang", translation.SourceLang)
		return "", true, nil
	}

	d.record(ctx, logger, BotSender, translation.Text, domain.LogTranslated)
	return translation.Text, false, nil
}

func (d *Dispatcher) record(ctx context.Context, logger *slog.Logger, sender, message string, kind domain.LogKind) {
	entry := domain.LogEntry{
		Sender:    sender,
		Timestamp: d.clock.Now(),
		Message:   message,
		Kind:      kind,
	}
	if err := d.chatLog.Append(ctx, entry); err != nil {
		logger.Warn("append chat log", "kind", kind, "error", err)
	}
}
