package logging

import (
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/grovetools/luminashot/config"
	"github.com/grovetools/luminashot/pkg/paths"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
)

var (
	loggers   = make(map[string]*logrus.Entry)
	loggersMu sync.Mutex

	// activeConfig is the configuration new loggers are built from. It is
	// loaded lazily from the default location unless Configure is called.
	activeConfig *config.Config

	verboseOverride bool
	jsonOverride    bool
)

// Configure sets the configuration for loggers and rebuilds the ones
// already handed out.
func Configure(cfg *config.Config) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	activeConfig = cfg
	for component, entry := range loggers {
		setup(entry.Logger, component)
	}
}

// SetVerbose forces debug level on every logger.
func SetVerbose(verbose bool) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	verboseOverride = verbose
	for component, entry := range loggers {
		setup(entry.Logger, component)
	}
}

// SetJSON switches every logger to logrus' JSON formatter.
func SetJSON(enabled bool) {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	jsonOverride = enabled
	for component, entry := range loggers {
		setup(entry.Logger, component)
	}
}

// Reset drops every cached logger and override.
func Reset() {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	loggers = make(map[string]*logrus.Entry)
	activeConfig = nil
	verboseOverride = false
	jsonOverride = false
}

// NewLogger creates and returns a pre-configured logger for a specific component.
// Loggers are cached per component.
func NewLogger(component string) *logrus.Entry {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if logger, exists := loggers[component]; exists {
		return logger
	}

	logger := logrus.New()
	setup(logger, component)

	entry := logger.WithField("component", component)
	loggers[component] = entry
	return entry
}

func loadConfig() Config {
	var logCfg Config

	cfg := activeConfig
	if cfg == nil {
		loaded, err := config.LoadDefault("")
		if err != nil {
			return logCfg
		}
		cfg = loaded
	}

	if err := cfg.UnmarshalExtension("logging", &logCfg); err != nil {
		logrus.Warnf("Failed to parse 'logging' config: %v", err)
	}
	return logCfg
}

// setup applies configuration, environment and overrides to logger.
// Callers hold loggersMu.
func setup(logger *logrus.Logger, component string) {
	logCfg := loadConfig()

	levelStr := "info"
	if env := os.Getenv("LUMINASHOT_LOG_LEVEL"); env != "" {
		levelStr = env
	} else if logCfg.Level != "" {
		levelStr = logCfg.Level
	}
	level, err := logrus.ParseLevel(levelStr)
	if err != nil {
		level = logrus.InfoLevel
	}
	if verboseOverride && level < logrus.DebugLevel {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	logger.SetReportCaller(os.Getenv("LUMINASHOT_LOG_CALLER") == "true" || logCfg.ReportCaller)

	switch {
	case jsonOverride || logCfg.Format.Preset == "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case logCfg.Format.Preset == "simple":
		logger.SetFormatter(&TextFormatter{Config: FormatConfig{
			DisableTimestamp: true,
			DisableComponent: true,
		}})
	default:
		logger.SetFormatter(&TextFormatter{Config: logCfg.Format})
	}

	logger.ReplaceHooks(make(logrus.LevelHooks))
	if hook := openFileSink(logger, logCfg.File, component); hook != nil {
		logger.AddHook(hook)
	}

	if shouldLogToStderr(logCfg.Format.StructuredToStderr, level) {
		logger.SetOutput(GetGlobalOutput())
	} else {
		logger.SetOutput(io.Discard)
	}
}

func openFileSink(logger *logrus.Logger, sink FileSinkConfig, component string) *fileHook {
	if !sink.Enabled {
		return nil
	}

	path := paths.ExpandHome(sink.Path)
	if path == "" {
		path = paths.LogFilePath(component, time.Now().Format("2006-01-02"))
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		logger.Warnf("Failed to create log directory for %s: %v", path, err)
		return nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		logger.Warnf("Failed to open log file %s: %v", path, err)
		return nil
	}

	var formatter logrus.Formatter = &TextFormatter{}
	if sink.Format == "json" {
		formatter = &logrus.JSONFormatter{}
	}
	return &fileHook{writer: file, formatter: formatter}
}

// fileHook writes every entry to a file with its own formatter, independent
// of the logger's stderr output and level-gated by the logger itself.
type fileHook struct {
	mu        sync.Mutex
	writer    io.Writer
	formatter logrus.Formatter
}

func (h *fileHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *fileHook) Fire(entry *logrus.Entry) error {
	line, err := h.formatter.Format(entry)
	if err != nil {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	_, err = h.writer.Write(line)
	return err
}

// shouldLogToStderr implements the structured_to_stderr policy. In "auto"
// mode logs reach stderr only when debugging or when stderr is not a
// terminal.
func shouldLogToStderr(mode string, level logrus.Level) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		isDebug := level >= logrus.DebugLevel
		fd := os.Stderr.Fd()
		isInteractive := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
		return isDebug || !isInteractive
	}
}
