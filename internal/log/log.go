package log

import (
	"sync/atomic"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"productcatalog/internal/config"
)

var base atomic.Pointer[zap.Logger]

func init() { base.Store(zap.NewNop()) }

// New builds a JSON logger writing to stdout and, when set, the configured log file.
func New(cfg config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	zc.OutputPaths = []string{"stdout"}
	if cfg.LogFile != "" {
		zc.OutputPaths = append(zc.OutputPaths, cfg.LogFile)
	}
	return zc.Build()
}

// NewOrFallback never returns a nil logger. When the configured sinks cannot
// be opened it drops the log file, and failing that returns a no-op logger;
// the first error is returned for reporting.
func NewOrFallback(cfg config.Config) (*zap.Logger, error) {
	l, err := New(cfg)
	if err == nil {
		return l, nil
	}
	if cfg.LogFile != "" {
		stdout := cfg
		stdout.LogFile = ""
		if l, serr := New(stdout); serr == nil {
			return l, err
		}
	}
	return zap.NewNop(), err
}

// Init installs the logger used by the request helpers.
func Init(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	base.Store(l)
}

// L returns the installed logger.
func L() *zap.Logger { return base.Load() }

func write(level zapcore.Level, audit bool, c *fiber.Ctx, action string, err error, fields map[string]any) {
	ce := base.Load().Check(level, action)
	if ce == nil {
		return
	}
	fs := make([]zap.Field, 0, 8)
	if audit {
		fs = append(fs, zap.Bool("audit", true))
	}
	if c != nil {
		fs = append(fs,
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
		)
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			fs = append(fs, zap.String("req_id", rid))
		}
	}
	if err != nil {
		fs = append(fs, zap.Error(err))
	}
	if len(fields) > 0 {
		fs = append(fs, zap.Any("fields", fields))
	}
	ce.Write(fs...)
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.InfoLevel, false, c, action, nil, fields)
}

// Audit records a state-changing action.
func Audit(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.InfoLevel, true, c, action, nil, fields)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	write(zapcore.WarnLevel, false, c, action, nil, fields)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	write(zapcore.ErrorLevel, false, c, action, err, fields)
}
