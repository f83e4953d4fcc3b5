package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/bnema/voxlate/internal/adapters/cache/memory"
	"github.com/bnema/voxlate/internal/adapters/chatlog/chain"
	"github.com/bnema/voxlate/internal/adapters/chatlog/jsonfile"
	"github.com/bnema/voxlate/internal/adapters/chatlog/postgres"
	"github.com/bnema/voxlate/internal/adapters/detect/whatlang"
	"github.com/bnema/voxlate/internal/adapters/media/ffmpeg"
	chatlogrender "github.com/bnema/voxlate/internal/adapters/render/chatlog"
	credchain "github.com/bnema/voxlate/internal/adapters/secrets/chain"
	filestore "github.com/bnema/voxlate/internal/adapters/secrets/file"
	passstore "github.com/bnema/voxlate/internal/adapters/secrets/pass"
	"github.com/bnema/voxlate/internal/adapters/transcribe/command"
	"github.com/bnema/voxlate/internal/adapters/transcribe/whisper"
	"github.com/bnema/voxlate/internal/adapters/translate/google"
	"github.com/bnema/voxlate/internal/adapters/transport/bridge"
	"github.com/bnema/voxlate/internal/adapters/transport/discord"
	"github.com/bnema/voxlate/internal/application"
	"github.com/bnema/voxlate/internal/config"
	"github.com/bnema/voxlate/internal/domain"
	"github.com/bnema/voxlate/internal/ports"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type rootOptions struct {
	configPath string
	loaded     *app
}

type app struct {
	cfg         config.Config
	viper       *viper.Viper
	logger      *slog.Logger
	level       *slog.LevelVar
	logRenderer func([]domain.LogEntry, chatlogrender.RenderOptions) (string, error)
	now         func() time.Time
}

// app loads configuration once per command invocation.
func (o *rootOptions) app(cmd *cobra.Command) (*app, error) {
	if o.loaded != nil {
		return o.loaded, nil
	}

	v := viper.New()
	cfg, err := config.Load(v, o.configPath)
	if err != nil {
		return nil, err
	}

	level := new(slog.LevelVar)
	parsed, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	level.Set(parsed)

	o.loaded = &app{
		cfg:         cfg,
		viper:       v,
		logger:      newLogger(cfg.Log.Format, level, cmd.ErrOrStderr()),
		level:       level,
		logRenderer: chatlogrender.Render,
		now:         time.Now,
	}

	return o.loaded, nil
}

func (a *app) newTranslator() *application.TranslationService {
	remote := google.New(a.cfg.Translation.Endpoint, a.cfg.Translation.Timeout)

	return application.NewTranslationService(remote, memory.New(), ports.SystemClock{}, a.logger, application.TranslationConfig{
		MaxAttempts: a.cfg.Translation.MaxAttempts,
		RetryDelay:  a.cfg.Translation.RetryDelay,
		Throttle:    a.cfg.Translation.Throttle,
	})
}

func (a *app) newDetector() ports.LanguageDetector {
	return whatlang.New(whatlang.DefaultMinConfidence)
}

func (a *app) newTranscriber() (ports.Transcriber, error) {
	switch a.cfg.Transcription.Backend {
	case config.TranscriberCommand:
		transcriber, err := command.New(a.cfg.Transcription.Command)
		if err != nil {
			return nil, fmt.Errorf("wire command transcriber: %w", err)
		}
		return transcriber, nil
	case config.TranscriberOpenAI:
		return whisper.New(whisper.Config{
			APIKey:  a.cfg.Transcription.OpenAIAPIKey,
			BaseURL: a.cfg.Transcription.OpenAIBaseURL,
			Model:   a.cfg.Transcription.OpenAIModel,
		}), nil
	default:
		return nil, fmt.Errorf("%w: unknown transcription backend %q", config.ErrInvalidConfig, a.cfg.Transcription.Backend)
	}
}

func (a *app) newTranscriptionPipeline() (*application.TranscriptionPipeline, error) {
	converter, err := ffmpeg.NewConverter(a.cfg.Media.FFmpegPath)
	if err != nil {
		return nil, fmt.Errorf("wire audio converter: %w", err)
	}

	transcriber, err := a.newTranscriber()
	if err != nil {
		return nil, err
	}

	return application.NewTranscriptionPipeline(converter, transcriber, a.logger, application.TranscriptionConfig{
		WorkDir:      a.cfg.Transcription.WorkDir,
		TargetFormat: a.cfg.Media.TargetFormat,
	}), nil
}

// openChatLog returns the configured chat log and a release func that is
// always safe to call.
func (a *app) openChatLog(ctx context.Context) (ports.ChatLog, func(), error) {
	noop := func() {}

	switch a.cfg.ChatLog.Backend {
	case config.ChatLogJSON:
		store, err := jsonfile.NewStore(a.cfg.ChatLog.Path)
		if err != nil {
			return nil, noop, fmt.Errorf("wire json chat log: %w", err)
		}
		return store, noop, nil
	case config.ChatLogPostgres:
		pg, err := postgres.Open(ctx, a.cfg.ChatLog.PostgresURL, postgres.DefaultTable)
		if err != nil {
			return nil, noop, fmt.Errorf("wire postgres chat log: %w", err)
		}
		if !a.cfg.ChatLog.Mirror {
			return pg, pg.Close, nil
		}

		file, err := jsonfile.NewStore(a.cfg.ChatLog.Path)
		if err != nil {
			pg.Close()
			return nil, noop, fmt.Errorf("wire json chat log mirror: %w", err)
		}
		chained, err := chain.NewStore(pg, file)
		if err != nil {
			pg.Close()
			return nil, noop, fmt.Errorf("wire chat log chain: %w", err)
		}
		return chained, pg.Close, nil
	default:
		return nil, noop, fmt.Errorf("%w: unknown chat log backend %q", config.ErrInvalidConfig, a.cfg.ChatLog.Backend)
	}
}

func (a *app) newDialer() (ports.Dialer, error) {
	switch a.cfg.Session.Transport {
	case config.TransportBridge:
		return bridge.NewDialer(bridge.Config{URL: a.cfg.Session.BridgeURL}, a.logger), nil
	case config.TransportDiscord:
		dialer, err := discord.NewDialer(discord.Config{Token: a.cfg.Session.DiscordToken}, a.logger)
		if err != nil {
			return nil, fmt.Errorf("wire discord transport: %w", err)
		}
		return dialer, nil
	default:
		return nil, fmt.Errorf("%w: unknown transport %q", config.ErrInvalidConfig, a.cfg.Session.Transport)
	}
}

func (a *app) newCredentialStore() (ports.CredentialStore, error) {
	switch a.cfg.Session.CredentialsBackend {
	case config.CredentialsFile:
		return filestore.NewStore(a.cfg.Session.CredentialsDir), nil
	case config.CredentialsPass:
		store, err := passstore.NewStore(passstore.DefaultEntry)
		if err != nil {
			return nil, fmt.Errorf("wire pass credential store: %w", err)
		}
		return store, nil
	case config.CredentialsChain:
		store, err := credchain.NewPassFirstWithFileFallback(a.cfg.Session.CredentialsDir)
		if err != nil {
			return nil, fmt.Errorf("wire credential store chain: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown credentials backend %q", config.ErrInvalidConfig, a.cfg.Session.CredentialsBackend)
	}
}

func (a *app) replies() application.Replies {
	r := a.cfg.Replies
	return application.Replies{
		Translated:       r.Translated,
		AlreadyTarget:    r.AlreadyTarget,
		TranslateFailed:  r.TranslateFailed,
		TranscribeFailed: r.TranscribeFailed,
		VoiceFailed:      r.VoiceFailed,
		TranscriptOnly:   r.TranscriptOnly,
	}
}

func (a *app) newDispatcher(translator ports.Translator, transcriber application.VoiceTranscriber, chatLog ports.ChatLog) *application.Dispatcher {
	return application.NewDispatcher(a.newDetector(), translator, transcriber, chatLog, ports.SystemClock{}, a.logger, application.DispatcherConfig{
		TargetLanguage: a.cfg.TargetLanguage,
		Replies:        a.replies(),
	})
}
