package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	configFileMode  = 0o600
	configDirMode   = 0o700
	tempFilePattern = ".config-*.toml.tmp"
)

var ErrConfigExists = errors.New("config file already exists")

// fileSchema mirrors Config with durations spelled as strings so the
// written file reads the way a person would type it.
type fileSchema struct {
	TargetLanguage string              `toml:"target_language"`
	Translation    translationSchema   `toml:"translation"`
	Transcription  transcriptionSchema `toml:"transcription"`
	Media          mediaSchema         `toml:"media"`
	Session        sessionSchema       `toml:"session"`
	ChatLog        chatLogSchema       `toml:"chatlog"`
	HTTP           httpSchema          `toml:"http"`
	Log            logSchema           `toml:"log"`
	Replies        repliesSchema       `toml:"replies"`
}

type translationSchema struct {
	MaxAttempts int    `toml:"max_attempts"`
	RetryDelay  string `toml:"retry_delay"`
	Throttle    string `toml:"throttle"`
	Endpoint    string `toml:"endpoint"`
	Timeout     string `toml:"timeout"`
}

type transcriptionSchema struct {
	Backend       string   `toml:"backend"`
	Command       []string `toml:"command"`
	OpenAIModel   string   `toml:"openai_model"`
	OpenAIBaseURL string   `toml:"openai_base_url"`
	WorkDir       string   `toml:"work_dir"`
}

type mediaSchema struct {
	FFmpegPath   string `toml:"ffmpeg_path"`
	TargetFormat string `toml:"target_format"`
}

type sessionSchema struct {
	Transport          string `toml:"transport"`
	BridgeURL          string `toml:"bridge_url"`
	DiscordToken       string `toml:"discord_token"`
	CredentialsBackend string `toml:"credentials_backend"`
	CredentialsDir     string `toml:"credentials_dir"`
	ReconnectInitial   string `toml:"reconnect_initial"`
	ReconnectMax       string `toml:"reconnect_max"`
	MessageTimeout     string `toml:"message_timeout"`
}

type chatLogSchema struct {
	Backend     string `toml:"backend"`
	Path        string `toml:"path"`
	PostgresURL string `toml:"postgres_url"`
	Mirror      bool   `toml:"mirror"`
}

type httpSchema struct {
	Port int `toml:"port"`
}

type logSchema struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type repliesSchema struct {
	Translated       string `toml:"translated"`
	AlreadyTarget    string `toml:"already_target"`
	TranslateFailed  string `toml:"translate_failed"`
	TranscribeFailed string `toml:"transcribe_failed"`
	VoiceFailed      string `toml:"voice_failed"`
	TranscriptOnly   string `toml:"transcript_only"`
}

// toSchema leaves the OpenAI API key out; it belongs in the environment.
func toSchema(c Config) fileSchema {
	return fileSchema{
		TargetLanguage: c.TargetLanguage,
		Translation: translationSchema{
			MaxAttempts: c.Translation.MaxAttempts,
			RetryDelay:  c.Translation.RetryDelay.String(),
			Throttle:    c.Translation.Throttle.String(),
			Endpoint:    c.Translation.Endpoint,
			Timeout:     c.Translation.Timeout.String(),
		},
		Transcription: transcriptionSchema{
			Backend:       c.Transcription.Backend,
			Command:       c.Transcription.Command,
			OpenAIModel:   c.Transcription.OpenAIModel,
			OpenAIBaseURL: c.Transcription.OpenAIBaseURL,
			WorkDir:       c.Transcription.WorkDir,
		},
		Media: mediaSchema{
			FFmpegPath:   c.Media.FFmpegPath,
			TargetFormat: c.Media.TargetFormat,
		},
		Session: sessionSchema{
			Transport:          c.Session.Transport,
			BridgeURL:          c.Session.BridgeURL,
			DiscordToken:       c.Session.DiscordToken,
			CredentialsBackend: c.Session.CredentialsBackend,
			CredentialsDir:     c.Session.CredentialsDir,
			ReconnectInitial:   c.Session.ReconnectInitial.String(),
			ReconnectMax:       c.Session.ReconnectMax.String(),
			MessageTimeout:     c.Session.MessageTimeout.String(),
		},
		ChatLog: chatLogSchema{
			Backend:     c.ChatLog.Backend,
			Path:        c.ChatLog.Path,
			PostgresURL: c.ChatLog.PostgresURL,
			Mirror:      c.ChatLog.Mirror,
		},
		HTTP: httpSchema{Port: c.HTTP.Port},
		Log: logSchema{
			Level:  c.Log.Level,
			Format: c.Log.Format,
		},
		Replies: repliesSchema(c.Replies),
	}
}

// WriteDefault writes the default configuration to path, replacing an
// existing file only when force is set.
func WriteDefault(path string, force bool) error {
	return Write(path, Default(), force)
}

func Write(path string, cfg Config, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%w: %s", ErrConfigExists, path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("stat config file: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(toSchema(cfg))
	if err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}

	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempName, path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false

	return nil
}
