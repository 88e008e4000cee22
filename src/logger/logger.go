package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"exchange-core/src/config"
)

var Logger zerolog.Logger
var logFile *lumberjack.Logger

// InitLogger configures the global zerolog logger from the loaded
// configuration. File output goes through lumberjack so the log rotates
// instead of growing without bound.
func InitLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	logFilePath := cfg.Logging.File

	if logFilePath == "" || logFilePath == "none" || logFilePath == "disabled" {
		logFile = nil
	} else {
		logFile = &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    cfg.Logging.MaxSizeMB,
			MaxBackups: cfg.Logging.MaxBackups,
			MaxAge:     cfg.Logging.MaxAgeDays,
			Compress:   true,
		}
	}

	logFormat := os.Getenv("LOG_FORMAT")

	var writers []io.Writer

	if logFormat == "pretty" {
		consoleWriter := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		writers = append(writers, consoleWriter)
	} else {
		writers = append(writers, os.Stdout)
	}

	if logFile != nil {
		writers = append(writers, logFile)
	}

	multiWriter := io.MultiWriter(writers...)

	Logger = zerolog.New(multiWriter).With().
		Timestamp().
		Logger()

	log.Logger = Logger

	if logFile != nil {
		Logger.Info().
			Str("log_file", logFilePath).
			Str("log_level", level.String()).
			Msg("Logger initialized - writing to console and file")
	} else {
		Logger.Info().
			Str("log_level", level.String()).
			Msg("Logger initialized - writing to console only")
	}
}

func CloseLogger() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}

func GetLogger() zerolog.Logger {
	return Logger
}
