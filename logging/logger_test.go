package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reset(t *testing.T) {
	t.Helper()
	mutex.Lock()
	moduleLoggers = make(map[string]*slog.Logger)
	moduleLevelVars = make(map[string]*slog.LevelVar)
	globalConfig = Config{Level: "info", Format: "text"}
	output = os.Stdout
	mutex.Unlock()
}

func TestModuleLevelOverride(t *testing.T) {
	reset(t)
	Initialize(Config{
		Level:  "info",
		Format: "text",
		Modules: map[string]string{
			"sequencer": "debug",
			"device":    "warn",
		},
	})

	tests := []struct {
		module    string
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"sequencer", true, true, true},
		{"device", false, false, true},
		{"other", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.module, func(t *testing.T) {
			h := GetLogger(tt.module).Handler()
			ctx := context.Background()
			assert.Equal(t, tt.wantDebug, h.Enabled(ctx, slog.LevelDebug))
			assert.Equal(t, tt.wantInfo, h.Enabled(ctx, slog.LevelInfo))
			assert.Equal(t, tt.wantWarn, h.Enabled(ctx, slog.LevelWarn))
		})
	}
}

func TestInitializeUpdatesExistingLoggers(t *testing.T) {
	reset(t)
	logger := GetLogger("config")
	assert.False(t, logger.Handler().Enabled(context.Background(), slog.LevelDebug))

	Initialize(Config{Level: "debug", Format: "text"})
	assert.True(t, GetLogger("config").Handler().Enabled(context.Background(), slog.LevelDebug))
}

func TestJSONFormatCarriesModule(t *testing.T) {
	reset(t)
	var buf bytes.Buffer
	SetOutput(&buf)
	Initialize(Config{Level: "info", Format: "json"})

	GetLogger("metrics").Info("hello", "answer", 42)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "hello", entry["msg"])
	assert.Equal(t, "metrics", entry["module"])
	assert.EqualValues(t, 42, entry["answer"])
}

func TestParseLevel(t *testing.T) {
	assert.Nil(t, parseLevel("verbose"))
	require.NotNil(t, parseLevel("WARNING"))
	assert.Equal(t, slog.LevelWarn, *parseLevel("WARNING"))
	assert.Equal(t, slog.LevelInfo, levelOrInfo(""))
}
