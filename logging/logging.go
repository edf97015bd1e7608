package logging

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// Options configures the audit log sink.
type Options struct {
	File   string
	Level  string
	Syslog bool
	// Stdout defaults to os.Stdout.
	Stdout io.Writer
}

// Logger is the audit sink handed to the monitor. It writes to stdout and,
// once started, to the configured file.
type Logger struct {
	*logrus.Logger
	options Options
	output  *os.File
}

func New(options Options) (*Logger, error) {
	if options.Stdout == nil {
		options.Stdout = os.Stdout
	}

	logger := logrus.New()
	logger.SetOutput(options.Stdout)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		DisableColors:   options.File != "" || !isTerminal(options.Stdout),
	})
	logger.SetLevel(logrus.InfoLevel)
	if options.Level != "" {
		level, err := logrus.ParseLevel(options.Level)
		if err != nil {
			return nil, err
		}
		logger.SetLevel(level)
	}
	return &Logger{Logger: logger, options: options}, nil
}

// Start opens the log file and attaches syslog. Neither failure is fatal:
// the daemon keeps logging to stdout.
func (l *Logger) Start() error {
	if l.options.File != "" {
		if dir := filepath.Dir(l.options.File); dir != "" {
			_ = os.MkdirAll(dir, 0o755)
		}
		output, err := os.OpenFile(l.options.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		switch {
		case errors.Is(err, fs.ErrPermission):
			l.Warnf("Cannot write to %s, logging to stdout only", l.options.File)
		case err != nil:
			return fmt.Errorf("open log output: %w", err)
		default:
			l.output = output
			l.SetOutput(io.MultiWriter(l.options.Stdout, output))
		}
	}
	if l.options.Syslog {
		if err := addSyslogHook(l.Logger); err != nil {
			l.Warnf("Syslog unavailable: %v", err)
		}
	}
	return nil
}

// Close flushes and closes the log file.
func (l *Logger) Close() error {
	if l.output == nil {
		return nil
	}
	l.SetOutput(l.options.Stdout)
	err := l.output.Sync()
	return errors.Join(err, l.output.Close())
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
