// Package logging provides categorized file-based logging for lacsverts.
// Logs are written to <dir>/<date>_<category>.log with one file per category,
// because the terminal UI owns stdout and stderr while it runs.
// When logging is disabled every category gets a no-op logger.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config resolution
	CategorySession Category = "session" // Session store reads/writes, file watch
	CategoryAPI     Category = "api"     // Backend HTTP calls
	CategoryAuth    Category = "auth"    // Identity provider redirect and callback
	CategoryUI      Category = "ui"      // Page lifecycle, navigation
	CategoryBrowser Category = "browser" // Browser-automated login
)

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	Enabled    bool
	Level      string
	Dir        string
	Categories map[string]bool
}

var (
	mu      sync.RWMutex
	opts    Options
	level   = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	loggers = make(map[Category]*zap.Logger)
	files   = make(map[Category]*os.File)
	nop     = zap.NewNop()
)

// Initialize applies the options. Calling it again closes the open files and
// starts over with the new options.
func Initialize(o Options) error {
	CloseAll()

	mu.Lock()
	opts = o
	mu.Unlock()

	if err := SetLevel(o.Level); err != nil {
		return err
	}
	if !o.Enabled {
		return nil
	}
	if o.Dir == "" {
		return fmt.Errorf("logging enabled without a directory")
	}
	if err := os.MkdirAll(o.Dir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	boot := Get(CategoryBoot)
	boot.Info("logging initialized",
		zap.String("dir", o.Dir),
		zap.String("level", level.String()))
	return nil
}

// SetLevel changes the level of every category at once.
func SetLevel(name string) error {
	if name == "" {
		name = "info"
	}
	lvl, err := zapcore.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", name, err)
	}
	level.SetLevel(lvl)
	return nil
}

// IsCategoryEnabled returns whether a specific category writes anything.
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()

	if !opts.Enabled {
		return false
	}
	enabled, exists := opts.Categories[string(category)]
	return !exists || enabled
}

// Get returns (or creates) the logger for a category.
func Get(category Category) *zap.Logger {
	if !IsCategoryEnabled(category) {
		return nop
	}

	mu.RLock()
	if l, ok := loggers[category]; ok {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	name := fmt.Sprintf("%s_%s.log", time.Now().Format("2006-01-02"), category)
	f, err := os.OpenFile(filepath.Join(opts.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] could not open %s log: %v\n", category, err)
		return nop
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), zapcore.AddSync(f), level)
	l := zap.New(core).With(zap.String("category", string(category)))

	loggers[category] = l
	files[category] = f
	return l
}

// CloseAll flushes and closes every category file.
func CloseAll() {
	mu.Lock()
	defer mu.Unlock()

	for cat, l := range loggers {
		_ = l.Sync()
		if f := files[cat]; f != nil {
			f.Close()
		}
	}
	loggers = make(map[Category]*zap.Logger)
	files = make(map[Category]*os.File)
}

// Convenience helpers for the categories logged from many places.

func API(msg string, fields ...zap.Field)     { Get(CategoryAPI).Info(msg, fields...) }
func APIDebug(msg string, fields ...zap.Field) { Get(CategoryAPI).Debug(msg, fields...) }
func APIWarn(msg string, fields ...zap.Field)  { Get(CategoryAPI).Warn(msg, fields...) }

func Session(msg string, fields ...zap.Field)      { Get(CategorySession).Info(msg, fields...) }
func SessionDebug(msg string, fields ...zap.Field) { Get(CategorySession).Debug(msg, fields...) }

func Auth(msg string, fields ...zap.Field)      { Get(CategoryAuth).Info(msg, fields...) }
func AuthError(msg string, fields ...zap.Field) { Get(CategoryAuth).Error(msg, fields...) }

func UI(msg string, fields ...zap.Field)      { Get(CategoryUI).Info(msg, fields...) }
func UIDebug(msg string, fields ...zap.Field) { Get(CategoryUI).Debug(msg, fields...) }
