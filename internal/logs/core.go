package logs

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/adscout/backend/internal/models"
)

// Core is a zapcore.Core that renders entries as text and appends them to a Buffer.
type Core struct {
	zapcore.LevelEnabler
	buf    *Buffer
	fields []zapcore.Field
}

// NewCore creates a capture core writing to buf at the levels enab allows.
func NewCore(buf *Buffer, enab zapcore.LevelEnabler) *Core {
	return &Core{LevelEnabler: enab, buf: buf}
}

func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	clone := &Core{LevelEnabler: c.LevelEnabler, buf: c.buf}
	clone.fields = append(append(clone.fields, c.fields...), fields...)
	return clone
}

func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}
	c.buf.Append(models.LogEntry{
		Type:      entryType(ent.Level),
		Message:   render(ent.Message, enc.Fields),
		Timestamp: ent.Time,
	})
	return nil
}

func (c *Core) Sync() error { return nil }

func entryType(l zapcore.Level) string {
	switch {
	case l >= zapcore.ErrorLevel:
		return "error"
	case l == zapcore.WarnLevel:
		return "warn"
	case l == zapcore.DebugLevel:
		return "debug"
	default:
		return "info"
	}
}

func render(msg string, fields map[string]any) string {
	if len(fields) == 0 {
		return msg
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var sb strings.Builder
	sb.WriteString(msg)
	for _, k := range keys {
		fmt.Fprintf(&sb, " %s=%v", k, fields[k])
	}
	return sb.String()
}

// NewLogger builds the production zap logger (JSON to stdout) teed into buf.
func NewLogger(level string, buf *Buffer) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if level != "" {
		lvl, err := zap.ParseAtomicLevel(level)
		if err != nil {
			return nil, fmt.Errorf("parse log level: %w", err)
		}
		config.Level = lvl
	}
	return config.Build(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, NewCore(buf, config.Level))
	}))
}
