// Package logger creates the zerolog loggers of the ntru command.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-colorable"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/term"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	LogLevelFlag = "loglevel"
	LogFileFlag  = "logfile"
	LogJSONFlag  = "log-json"

	dirPermMode = 0744 // rwxr--r--

	consoleTimeFormat = time.RFC3339
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	zerolog.TimestampFunc = utcNow
}

func utcNow() time.Time {
	return time.Now().UTC()
}

// Config is the logging configuration.
type Config struct {
	MinLevel string // trace | debug | info | warn | error

	// Console is nil when the logger does not write on the terminal.
	Console *ConsoleConfig
	// Rolling is nil when the logger does not write in a file.
	Rolling *RollingConfig
}

type ConsoleConfig struct {
	NoColor bool
	AsJSON  bool
	Out     io.Writer // os.Stderr if nil
}

type RollingConfig struct {
	Filename string

	MaxSize    int // megabytes
	MaxBackups int // files
	MaxAge     int // days
}

const (
	defaultMinLevel   = "info"
	defaultMaxSize    = 1
	defaultMaxBackups = 5
)

// CreateConfig returns the configuration of a logger writing events at
// minLevel and above on the terminal and, if logFile is not empty, in a
// rolling file.
func CreateConfig(minLevel string, asJSON bool, logFile string) *Config {

	if minLevel == "" {
		minLevel = defaultMinLevel
	}

	cfg := &Config{
		MinLevel: minLevel,
		Console:  &ConsoleConfig{AsJSON: asJSON},
	}

	if logFile != "" {
		cfg.Rolling = &RollingConfig{
			Filename:   logFile,
			MaxSize:    defaultMaxSize,
			MaxBackups: defaultMaxBackups,
		}
	}

	return cfg
}

// resilientMultiWriter writes on every writer, ignoring the errors of
// individual writers so that a broken terminal does not stop file logging.
type resilientMultiWriter struct {
	level   zerolog.Level
	writers []io.Writer
}

func (w resilientMultiWriter) Write(p []byte) (n int, err error) {
	for _, out := range w.writers {
		_, _ = out.Write(p)
	}
	return len(p), nil
}

func (w resilientMultiWriter) WriteLevel(level zerolog.Level, p []byte) (n int, err error) {
	if w.level <= level {
		return w.Write(p)
	}
	return len(p), nil
}

// Create builds a logger from cfg. A nil cfg logs at info level on the terminal.
// An invalid level falls back to info, and the fallback is logged.
func Create(cfg *Config) *zerolog.Logger {

	if cfg == nil {
		cfg = CreateConfig("", false, "")
	}

	var writers []io.Writer

	if cfg.Console != nil {
		writers = append(writers, createConsoleWriter(*cfg.Console))
	}

	var rollingErr error
	if cfg.Rolling != nil {
		var w io.Writer
		if w, rollingErr = createRollingWriter(*cfg.Rolling); rollingErr == nil {
			writers = append(writers, w)
		}
	}

	level, levelErr := zerolog.ParseLevel(cfg.MinLevel)
	if levelErr != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	log := zerolog.New(resilientMultiWriter{level, writers}).With().Timestamp().Logger()

	if levelErr != nil {
		log.Error().Msgf("Failed to parse log level %q, using %q instead", cfg.MinLevel, level)
	}

	if rollingErr != nil {
		log.Error().Err(rollingErr).Msgf("Cannot log into %s", cfg.Rolling.Filename)
	}

	return &log
}

// CreateFromContext builds the logger configured by the global flags of the command.
func CreateFromContext(c *cli.Context) *zerolog.Logger {
	return Create(CreateConfig(c.String(LogLevelFlag), c.Bool(LogJSONFlag), c.String(LogFileFlag)))
}

func createConsoleWriter(cfg ConsoleConfig) io.Writer {

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	if cfg.AsJSON {
		return out
	}

	noColor := cfg.NoColor
	if f, ok := out.(*os.File); ok {
		noColor = noColor || !term.IsTerminal(int(f.Fd()))
		out = colorable.NewColorable(f)
	} else {
		noColor = true
	}

	return zerolog.ConsoleWriter{
		Out:        out,
		NoColor:    noColor,
		TimeFormat: consoleTimeFormat,
	}
}

func createRollingWriter(cfg RollingConfig) (io.Writer, error) {

	if dir := filepath.Dir(cfg.Filename); dir != "" {
		if err := os.MkdirAll(dir, dirPermMode); err != nil {
			return nil, err
		}
	}

	return &lumberjack.Logger{
		Filename:   cfg.Filename,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
	}, nil
}
