// Package logging configures the process-wide zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/adrg/xdg"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogFileName is the log file location relative to the XDG state home.
const LogFileName = "modinstaller/modinstaller.log"

// Level maps a verbosity count to a log level: 0 warn, 1 info, 2 debug,
// anything higher trace.
func Level(verbosity int) zerolog.Level {
	switch {
	case verbosity <= 0:
		return zerolog.WarnLevel
	case verbosity == 1:
		return zerolog.InfoLevel
	case verbosity == 2:
		return zerolog.DebugLevel
	}
	return zerolog.TraceLevel
}

// Setup configures the global logger to write to stderr and, when logFile
// is set, to the append-only log file. The returned function closes the
// log file.
func Setup(verbosity int, logFile bool) func() {
	return setup(os.Stderr, verbosity, logFile)
}

func setup(console io.Writer, verbosity int, logFile bool) func() {
	zerolog.SetGlobalLevel(Level(verbosity))

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		TimeFormat: time.Kitchen,
		NoColor:    os.Getenv("NO_COLOR") != "",
	}}

	var f *os.File
	var ferr error
	var path string
	if logFile {
		path, f, ferr = openLogFile()
		if ferr == nil {
			writers = append(writers, f)
		}
	}

	log.Logger = zerolog.New(io.MultiWriter(writers...)).With().Timestamp().Logger()
	if verbosity >= 2 {
		log.Logger = log.Logger.With().Caller().Logger()
	}
	if ferr != nil {
		log.Warn().Err(ferr).Msg("log file unavailable, logging to console only")
	}
	log.Debug().Int("verbosity", verbosity).Str("logFile", path).Msg("logger initialized")

	return func() {
		if f != nil {
			_ = f.Close()
		}
	}
}

// GetLogger returns the global logger tagged with component.
func GetLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

func openLogFile() (string, *os.File, error) {
	path, err := xdg.StateFile(LogFileName)
	if err != nil {
		return "", nil, fmt.Errorf("log file path: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return path, nil, fmt.Errorf("open log file: %w", err)
	}
	return path, f, nil
}
