package log

import (
	"bytes"
	"testing"

	"github.com/nalgeon/be"
	"go.uber.org/zap/zapcore"
)

func TestSetLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel(LevelInfo) })
	tests := []struct {
		in   string
		want zapcore.Level
	}{
		{LevelDebug, zapcore.DebugLevel},
		{LevelInfo, zapcore.InfoLevel},
		{LevelWarn, zapcore.WarnLevel},
		{LevelError, zapcore.ErrorLevel},
		{LevelFatal, zapcore.FatalLevel},
		{"unknown", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		SetLevel(tt.in)
		be.Equal(t, zapLevel.Level(), tt.want)
	}
}

func TestNewFiltersByLevel(t *testing.T) {
	t.Cleanup(func() { SetLevel(LevelInfo) })
	var buf bytes.Buffer
	l := New(&buf)

	SetLevel(LevelWarn)
	l.Infof("hidden %d", 1)
	be.Equal(t, buf.Len(), 0)

	l.Warnf("shown %d", 2)
	be.True(t, bytes.Contains(buf.Bytes(), []byte("shown 2")))
	be.True(t, bytes.Contains(buf.Bytes(), []byte("WARN")))
}

func TestNop(t *testing.T) {
	Nop().Errorf("nothing %s", "happens")
}
