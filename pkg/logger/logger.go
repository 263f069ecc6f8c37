package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level      string   `yaml:"level"`
	Targets    []string `yaml:"targets"`
	Filename   string   `yaml:"filename"`
	MaxSize    int      `yaml:"max_size_in_mb"`
	MaxBackups int      `yaml:"max_backups"`
	MaxAge     int      `yaml:"max_age_in_days"`
	Compress   bool     `yaml:"compress"`
}

var (
	mu     sync.RWMutex
	global = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
)

// InitGlobalLogger replaces the package logger with one built from cfg.
// Unknown levels fall back to info, no targets means console only.
func InitGlobalLogger(cfg *Config) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	writers := make([]io.Writer, 0, len(cfg.Targets))
	for _, target := range cfg.Targets {
		switch target {
		case "console":
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr})
		case "file":
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.Filename,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   cfg.Compress,
			})
		}
	}

	if len(writers) == 0 {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr})
	}

	l := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()

	mu.Lock()
	global = l
	mu.Unlock()
}

func Debug(msg string, args ...any) {
	log(zerolog.DebugLevel, msg, args)
}

func Info(msg string, args ...any) {
	log(zerolog.InfoLevel, msg, args)
}

func Warn(msg string, args ...any) {
	log(zerolog.WarnLevel, msg, args)
}

func Error(msg string, args ...any) {
	log(zerolog.ErrorLevel, msg, args)
}

func log(level zerolog.Level, msg string, args []any) {
	mu.RLock()
	l := global
	mu.RUnlock()

	event := l.WithLevel(level)
	if len(args) > 0 {
		event = event.Fields(normalize(args))
	}
	event.Msg(msg)
}

// normalize turns errors into their messages and pads a dangling key.
func normalize(args []any) []any {
	out := make([]any, 0, len(args)+1)
	for i, arg := range args {
		if err, ok := arg.(error); ok && i%2 == 1 {
			out = append(out, err.Error())

			continue
		}
		out = append(out, arg)
	}
	if len(out)%2 == 1 {
		out = append(out, "")
	}

	return out
}
