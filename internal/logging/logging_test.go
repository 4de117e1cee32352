package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// capture points the global logger at a buffer for one test.
func capture(t *testing.T, cfg Config) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	cfg.Output = &buf
	Init(cfg)
	t.Cleanup(func() { Init(Config{Level: slog.LevelInfo}) })
	return &buf
}

func TestInitLevels(t *testing.T) {
	buf := capture(t, Config{Level: slog.LevelInfo})

	DebugLog("hidden")
	Info("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.False(t, Debug)
}

func TestInitDebugLevel(t *testing.T) {
	buf := capture(t, Config{Level: slog.LevelDebug})

	DebugLog("walk check", KeyDog, "Biscuit")

	assert.Contains(t, buf.String(), "walk check")
	assert.Contains(t, buf.String(), "Biscuit")
	assert.True(t, Debug)
}

func TestInitJSONHandler(t *testing.T) {
	buf := capture(t, Config{Level: slog.LevelInfo, JSON: true})

	Info("alarm fired", KeyReminderID, int64(7))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "alarm fired", line["msg"])
	assert.Equal(t, float64(7), line[KeyReminderID])
}

func TestWithCarriesAttrs(t *testing.T) {
	buf := capture(t, Config{Level: slog.LevelInfo})

	With(KeyDog, "Rex").Info("fed")

	assert.Contains(t, buf.String(), "Rex")
}

func TestWarnAndError(t *testing.T) {
	buf := capture(t, Config{Level: slog.LevelInfo})

	Warn("skip stale")
	Error("db closed")

	out := buf.String()
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "ERROR")
}

func TestHandlerMasksSecretKeys(t *testing.T) {
	buf := capture(t, Config{Level: slog.LevelInfo})

	Info("webhook saved", "api_token", "super-secret-value")

	out := buf.String()
	assert.NotContains(t, out, "super-secret-value")
	assert.Contains(t, out, "********")
}

func TestHandlerMasksWebhookURLs(t *testing.T) {
	buf := capture(t, Config{Level: slog.LevelInfo})

	url := "https://discord.com/api/webhooks/123456789/" + strings.Repeat("t", 40)
	Info("dispatching", "url", url)

	out := buf.String()
	assert.NotContains(t, out, strings.Repeat("t", 40))
	assert.Contains(t, out, "https://discord.com/api/webhook")
}

func TestHandlerLeavesLocalURLs(t *testing.T) {
	buf := capture(t, Config{Level: slog.LevelInfo})

	Info("dispatching", "url", "http://localhost:8080/hook/with/a/long/path")

	assert.Contains(t, buf.String(), "http://localhost:8080/hook/with/a/long/path")
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key       string
		sensitive bool
	}{
		{"token", true},
		{"api_token", true},
		{"Authorization", true},
		{"webhook_secret", true},
		{"PASSWORD", true},
		{"dog", false},
		{"reminder_id", false},
		{"count", false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.sensitive, IsSensitiveKey(tt.key))
		})
	}
}

func TestMaskValue(t *testing.T) {
	assert.Equal(t, "", MaskValue(""))
	assert.Equal(t, "***", MaskValue("abc"))
	assert.Equal(t, "********", MaskValue("a-much-longer-secret"))
}

func TestMaskURL(t *testing.T) {
	short := "https://example.com/h"
	assert.Equal(t, short, MaskURL(short))

	long := "https://hooks.slack.com/services/T000/B000/" + strings.Repeat("x", 30)
	masked := MaskURL(long)
	assert.True(t, strings.HasSuffix(masked, "***"))
	assert.Less(t, len(masked), len(long))
}

func TestMaskStringOnlyTouchesURLs(t *testing.T) {
	s := "delivery to https://discord.com/api/webhooks/9876543210/secrettoken failed twice"
	masked := MaskString(s)
	assert.NotContains(t, masked, "secrettoken")
	assert.Contains(t, masked, "failed twice")
}

func TestLoggerNeverNil(t *testing.T) {
	assert.NotNil(t, Logger())
}
