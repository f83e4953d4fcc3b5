// Package config loads voxlate settings from a TOML file, the environment
// and built-in defaults, in that order of precedence (environment wins).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	appDir     = "voxlate"
	envPrefix  = "VOXLATE"

	TransportBridge  = "bridge"
	TransportDiscord = "discord"

	TranscriberCommand = "command"
	TranscriberOpenAI  = "openai"

	CredentialsFile  = "file"
	CredentialsPass  = "pass"
	CredentialsChain = "chain"

	ChatLogJSON     = "json"
	ChatLogPostgres = "postgres"

	LogFormatText = "text"
	LogFormatJSON = "json"
	LogFormatOTel = "otel"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	TargetLanguage string              `mapstructure:"target_language"`
	Translation    TranslationConfig   `mapstructure:"translation"`
	Transcription  TranscriptionConfig `mapstructure:"transcription"`
	Media          MediaConfig         `mapstructure:"media"`
	Session        SessionConfig       `mapstructure:"session"`
	ChatLog        ChatLogConfig       `mapstructure:"chatlog"`
	HTTP           HTTPConfig          `mapstructure:"http"`
	Log            LogConfig           `mapstructure:"log"`
	Replies        RepliesConfig       `mapstructure:"replies"`
}

type TranslationConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	RetryDelay  time.Duration `mapstructure:"retry_delay"`
	Throttle    time.Duration `mapstructure:"throttle"`
	Endpoint    string        `mapstructure:"endpoint"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type TranscriptionConfig struct {
	Backend       string   `mapstructure:"backend"`
	Command       []string `mapstructure:"command"`
	OpenAIModel   string   `mapstructure:"openai_model"`
	OpenAIBaseURL string   `mapstructure:"openai_base_url"`
	OpenAIAPIKey  string   `mapstructure:"openai_api_key"`
	WorkDir       string   `mapstructure:"work_dir"`
}

type MediaConfig struct {
	FFmpegPath   string `mapstructure:"ffmpeg_path"`
	TargetFormat string `mapstructure:"target_format"`
}

// SessionConfig.CredentialsBackend is file, pass, or chain (pass with a
// file fallback).
type SessionConfig struct {
	Transport          string        `mapstructure:"transport"`
	BridgeURL          string        `mapstructure:"bridge_url"`
	DiscordToken       string        `mapstructure:"discord_token"`
	CredentialsBackend string        `mapstructure:"credentials_backend"`
	CredentialsDir     string        `mapstructure:"credentials_dir"`
	ReconnectInitial   time.Duration `mapstructure:"reconnect_initial"`
	ReconnectMax       time.Duration `mapstructure:"reconnect_max"`
	MessageTimeout     time.Duration `mapstructure:"message_timeout"`
}

type ChatLogConfig struct {
	Backend     string `mapstructure:"backend"`
	Path        string `mapstructure:"path"`
	PostgresURL string `mapstructure:"postgres_url"`
	// Mirror keeps the JSON file as a fallback when the postgres backend fails.
	Mirror bool `mapstructure:"mirror"`
}

type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type RepliesConfig struct {
	Translated       string `mapstructure:"translated"`
	AlreadyTarget    string `mapstructure:"already_target"`
	TranslateFailed  string `mapstructure:"translate_failed"`
	TranscribeFailed string `mapstructure:"transcribe_failed"`
	VoiceFailed      string `mapstructure:"voice_failed"`
	TranscriptOnly   string `mapstructure:"transcript_only"`
}

func Default() Config {
	return Config{
		TargetLanguage: "en",
		Translation: TranslationConfig{
			MaxAttempts: 5,
			RetryDelay:  5 * time.Second,
			Throttle:    time.Second,
			Endpoint:    "https://translate.googleapis.com",
			Timeout:     15 * time.Second,
		},
		Transcription: TranscriptionConfig{
			Backend:     TranscriberCommand,
			Command:     []string{"python", "transcribe.py"},
			OpenAIModel: "whisper-1",
		},
		Media: MediaConfig{
			FFmpegPath:   "ffmpeg",
			TargetFormat: "mp3",
		},
		Session: SessionConfig{
			Transport:          TransportBridge,
			BridgeURL:          "ws://127.0.0.1:8765/ws",
			CredentialsBackend: CredentialsFile,
			CredentialsDir:     "~/.local/share/voxlate/auth",
			ReconnectInitial:   time.Second,
			ReconnectMax:       30 * time.Second,
			MessageTimeout:     2 * time.Minute,
		},
		ChatLog: ChatLogConfig{
			Backend: ChatLogJSON,
			Path:    "./chatLogs.json",
		},
		HTTP: HTTPConfig{Port: 3000},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatText,
		},
		Replies: RepliesConfig{
			Translated:       "🈶 translated:\n{text}",
			AlreadyTarget:    "✅ Message is already in {lang}.",
			TranslateFailed:  "❌ Failed to translate text.",
			TranscribeFailed: "❌ Failed to transcribe voice message.",
			VoiceFailed:      "❌ Failed to process voice message.",
			TranscriptOnly:   "📝 Transcribed:\n{text}\n⚠️ But failed to translate.",
		},
	}
}

// Load reads configuration into v. An explicit path must exist; otherwise
// the standard locations are searched and a missing file is not an error.
func Load(v *viper.Viper, path string) (Config, error) {
	if v == nil {
		v = viper.New()
	}

	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("http.port", envPrefix+"_HTTP_PORT", "PORT"); err != nil {
		return Config{}, fmt.Errorf("bind port env: %w", err)
	}
	if err := v.BindEnv("transcription.openai_api_key", envPrefix+"_TRANSCRIPTION_OPENAI_API_KEY", "OPENAI_API_KEY"); err != nil {
		return Config{}, fmt.Errorf("bind openai key env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		for _, dir := range searchDirs() {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("target_language", d.TargetLanguage)

	v.SetDefault("translation.max_attempts", d.Translation.MaxAttempts)
	v.SetDefault("translation.retry_delay", d.Translation.RetryDelay)
	v.SetDefault("translation.throttle", d.Translation.Throttle)
	v.SetDefault("translation.endpoint", d.Translation.Endpoint)
	v.SetDefault("translation.timeout", d.Translation.Timeout)

	v.SetDefault("transcription.backend", d.Transcription.Backend)
	v.SetDefault("transcription.command", d.Transcription.Command)
	v.SetDefault("transcription.openai_model", d.Transcription.OpenAIModel)
	v.SetDefault("transcription.openai_base_url", d.Transcription.OpenAIBaseURL)
	v.SetDefault("transcription.openai_api_key", d.Transcription.OpenAIAPIKey)
	v.SetDefault("transcription.work_dir", d.Transcription.WorkDir)

	v.SetDefault("media.ffmpeg_path", d.Media.FFmpegPath)
	v.SetDefault("media.target_format", d.Media.TargetFormat)

	v.SetDefault("session.transport", d.Session.Transport)
	v.SetDefault("session.bridge_url", d.Session.BridgeURL)
	v.SetDefault("session.discord_token", d.Session.DiscordToken)
	v.SetDefault("session.credentials_backend", d.Session.CredentialsBackend)
	v.SetDefault("session.credentials_dir", d.Session.CredentialsDir)
	v.SetDefault("session.reconnect_initial", d.Session.ReconnectInitial)
	v.SetDefault("session.reconnect_max", d.Session.ReconnectMax)
	v.SetDefault("session.message_timeout", d.Session.MessageTimeout)

	v.SetDefault("chatlog.backend", d.ChatLog.Backend)
	v.SetDefault("chatlog.path", d.ChatLog.Path)
	v.SetDefault("chatlog.postgres_url", d.ChatLog.PostgresURL)
	v.SetDefault("chatlog.mirror", d.ChatLog.Mirror)

	v.SetDefault("http.port", d.HTTP.Port)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("replies.translated", d.Replies.Translated)
	v.SetDefault("replies.already_target", d.Replies.AlreadyTarget)
	v.SetDefault("replies.translate_failed", d.Replies.TranslateFailed)
	v.SetDefault("replies.transcribe_failed", d.Replies.TranscribeFailed)
	v.SetDefault("replies.voice_failed", d.Replies.VoiceFailed)
	v.SetDefault("replies.transcript_only", d.Replies.TranscriptOnly)
}

func searchDirs() []string {
	dirs := make([]string, 0, 3)
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		dirs = append(dirs, filepath.Join(xdg, appDir))
	}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".config", appDir))
	}

	return append(dirs, ".")
}

// DefaultPath is where `config init` writes when no path is given.
func DefaultPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appDir, configName+"."+configType), nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, ".config", appDir, configName+"."+configType), nil
}

func (c *Config) normalize() error {
	c.TargetLanguage = strings.TrimSpace(c.TargetLanguage)
	c.Session.Transport = strings.ToLower(strings.TrimSpace(c.Session.Transport))
	c.Session.CredentialsBackend = strings.ToLower(strings.TrimSpace(c.Session.CredentialsBackend))
	c.Transcription.Backend = strings.ToLower(strings.TrimSpace(c.Transcription.Backend))
	c.ChatLog.Backend = strings.ToLower(strings.TrimSpace(c.ChatLog.Backend))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))

	var err error
	if c.Session.CredentialsDir, err = expandHome(c.Session.CredentialsDir); err != nil {
		return err
	}
	if c.ChatLog.Path, err = expandHome(c.ChatLog.Path); err != nil {
		return err
	}
	if c.Transcription.WorkDir, err = expandHome(c.Transcription.WorkDir); err != nil {
		return err
	}

	return nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

func (c Config) Validate() error {
	var problems []error
	invalid := func(format string, args ...any) {
		problems = append(problems, fmt.Errorf(format, args...))
	}

	if c.TargetLanguage == "" {
		invalid("target_language is empty")
	}
	if c.Translation.MaxAttempts < 1 {
		invalid("translation.max_attempts must be at least 1, got %d", c.Translation.MaxAttempts)
	}
	if c.Translation.RetryDelay < 0 || c.Translation.Throttle < 0 {
		invalid("translation delays must not be negative")
	}

	switch c.Transcription.Backend {
	case TranscriberCommand:
		if len(c.Transcription.Command) == 0 || strings.TrimSpace(c.Transcription.Command[0]) == "" {
			invalid("transcription.command is empty")
		}
	case TranscriberOpenAI:
		if c.Transcription.OpenAIAPIKey == "" {
			invalid("transcription.openai_api_key is required for the openai backend")
		}
	default:
		invalid("unknown transcription.backend %q", c.Transcription.Backend)
	}

	switch c.Session.Transport {
	case TransportBridge:
		if c.Session.BridgeURL == "" {
			invalid("session.bridge_url is empty")
		}
	case TransportDiscord:
		if strings.TrimSpace(c.Session.DiscordToken) == "" {
			invalid("session.discord_token is required for the discord transport")
		}
	default:
		invalid("unknown session.transport %q", c.Session.Transport)
	}
	switch c.Session.CredentialsBackend {
	case CredentialsFile, CredentialsChain:
		if c.Session.CredentialsDir == "" {
			invalid("session.credentials_dir is empty")
		}
	case CredentialsPass:
	default:
		invalid("unknown session.credentials_backend %q", c.Session.CredentialsBackend)
	}
	if c.Session.ReconnectInitial <= 0 || c.Session.ReconnectMax < c.Session.ReconnectInitial {
		invalid("session reconnect delays must be positive with reconnect_max >= reconnect_initial")
	}

	switch c.ChatLog.Backend {
	case ChatLogJSON:
		if c.ChatLog.Path == "" {
			invalid("chatlog.path is empty")
		}
	case ChatLogPostgres:
		if c.ChatLog.PostgresURL == "" {
			invalid("chatlog.postgres_url is required for the postgres backend")
		}
		if c.ChatLog.Mirror && c.ChatLog.Path == "" {
			invalid("chatlog.path is required when mirroring")
		}
	default:
		invalid("unknown chatlog.backend %q", c.ChatLog.Backend)
	}

	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		invalid("http.port %d is out of range", c.HTTP.Port)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		invalid("%w", err)
	}
	if !slices.Contains([]string{LogFormatText, LogFormatJSON, LogFormatOTel}, c.Log.Format) {
		invalid("unknown log.format %q", c.Log.Format)
	}

	if len(problems) == 0 {
		return nil
	}

	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(problems...))
}

func ParseLevel(raw string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo, fmt.Errorf("parse log.level %q: %w", raw, err)
	}

	return level, nil
}
