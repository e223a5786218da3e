// Package logging provides the process-wide structured logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// Logger is the package-global logger. It is safe to use from init() in any
// other package since it is configured with a default before main() runs.
var Logger zerolog.Logger

var logFile *os.File

// Config controls how Init builds the logger.
type Config struct {
	Level      zerolog.Level
	Output     io.Writer
	Pretty     bool
	TimeFormat string
	LogToFile  bool
	LogDir     string
}

// DefaultConfig returns the configuration used before any explicit Init call.
func DefaultConfig() Config {
	return Config{
		Level:      zerolog.InfoLevel,
		Output:     os.Stderr,
		Pretty:     false,
		TimeFormat: time.RFC3339,
		LogToFile:  false,
		LogDir:     os.TempDir(),
	}
}

// Init (re)configures the global Logger.
func Init(cfg Config) error {
	zerolog.TimeFieldFormat = cfg.TimeFormat

	var console io.Writer = cfg.Output
	if cfg.Pretty {
		console = zerolog.ConsoleWriter{Out: cfg.Output, TimeFormat: cfg.TimeFormat}
	}

	writers := []io.Writer{console}
	if cfg.LogToFile {
		if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		name := fmt.Sprintf("shellmind-%s.log", time.Now().Format("20060102-150405"))
		f, err := os.Create(filepath.Join(cfg.LogDir, name))
		if err != nil {
			return fmt.Errorf("create log file: %w", err)
		}
		logFile = f
		writers = append(writers, f)
	}

	var output io.Writer
	if len(writers) == 1 {
		output = writers[0]
	} else {
		output = zerolog.MultiLevelWriter(writers...)
	}

	Logger = zerolog.New(output).Level(cfg.Level).With().Timestamp().Logger()
	return nil
}

// GetLogFilePath returns the path of the active log file, if any.
func GetLogFilePath() string {
	if logFile == nil {
		return ""
	}
	return logFile.Name()
}

// Close flushes and closes the log file, if one is open.
func Close() error {
	if logFile == nil {
		return nil
	}
	err := logFile.Close()
	logFile = nil
	return err
}

// ParseLevel parses a level name, defaulting to info on unknown input.
func ParseLevel(s string) zerolog.Level {
	switch s {
	case "debug", "DEBUG":
		return zerolog.DebugLevel
	case "warn", "WARN", "warning", "WARNING":
		return zerolog.WarnLevel
	case "error", "ERROR":
		return zerolog.ErrorLevel
	case "fatal", "FATAL":
		return zerolog.FatalLevel
	default:
		return zerolog.InfoLevel
	}
}

func init() {
	_ = Init(DefaultConfig())
}
