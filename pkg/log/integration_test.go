package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	sberrors "github.com/YuminosukeSato/stumpboost/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestTestLoggerLevelsAndFields(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelDebug)

	testLogger.Debug("debug message", "key1", "value1", "number", 42)
	testLogger.Info("info message", OperationKey, OperationFit)
	testLogger.Warn("warning message", "warning_code", "TEST_WARNING")
	testLogger.Error("error message", ErrAttrKey, fmt.Errorf("boom"))

	require.NotEmpty(t, buffer.String())
	for _, msg := range []string{"debug message", "info message", "warning message", "error message"} {
		assert.True(t, testLogger.ContainsMessage(msg), msg)
	}
	assert.True(t, testLogger.ContainsField("key1", "value1"))
	assert.True(t, testLogger.ContainsField("number", 42.0))
	assert.True(t, testLogger.ContainsField(ErrAttrKey, "boom"))
}

func TestTestLoggerWithSharesBuffer(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelDebug)

	contextLogger := testLogger.With(ModelNameKey, "AdaBoostClassifier", ComponentKey, "ensemble")
	contextLogger.Info("round fitted", IterationKey, 3, AlphaKey, 0.5)

	entries := testLogger.EntriesWithMessage("round fitted")
	require.Len(t, entries, 1)
	assert.Equal(t, "AdaBoostClassifier", entries[0][ModelNameKey])
	assert.Equal(t, 3.0, entries[0][IterationKey])
	assert.Equal(t, 0.5, entries[0][AlphaKey])
}

func TestTestLoggerEnabled(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)
	ctx := context.Background()

	assert.True(t, testLogger.Enabled(ctx, LevelInfo))
	assert.True(t, testLogger.Enabled(ctx, LevelError))
	assert.False(t, testLogger.Enabled(ctx, LevelDebug))

	testLogger.Debug("this should not appear")
	testLogger.Info("this should appear")
	assert.False(t, testLogger.ContainsMessage("this should not appear"))
	assert.True(t, testLogger.ContainsMessage("this should appear"))
}

func TestTestLoggerProvider(t *testing.T) {
	provider, logger := NewTestLoggerProvider(LevelDebug)

	provider.GetLogger().Info("provider test message")
	provider.GetLoggerWithName("tree.stump").Info("named logger message")

	assert.True(t, logger.ContainsMessage("provider test message"))
	assert.True(t, logger.ContainsField(ComponentKey, "tree.stump"))

	provider.SetLevel(LevelError)
	provider.GetLogger().Info("suppressed")
	assert.False(t, logger.ContainsMessage("suppressed"))
}

func TestZerologProviderWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelInfo)

	logger := p.GetLoggerWithName("ensemble.engine").With(ModelNameKey, "AdaBoostClassifier")
	logger.Debug("hidden")
	logger.Info("round fitted", IterationKey, 1, AxisKey, "horizontal")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, "info", lines[0]["level"])
	assert.Equal(t, "round fitted", lines[0]["message"])
	assert.Equal(t, "ensemble.engine", lines[0][ComponentKey])
	assert.Equal(t, "AdaBoostClassifier", lines[0][ModelNameKey])
	assert.Equal(t, 1.0, lines[0][IterationKey])
	assert.Equal(t, "horizontal", lines[0][AxisKey])

	assert.False(t, logger.Enabled(context.Background(), LevelDebug))
	assert.True(t, logger.Enabled(context.Background(), LevelWarn))

	buf.Reset()
	p.SetLevel(LevelDebug)
	p.GetLogger().Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestZerologProviderErrorStack(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelDebug)

	err := sberrors.NewValueError("FitStump", "labels must be +1 or -1")
	p.GetLogger().Error("fit failed", ErrAttrKey, err, "odd")

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	assert.Equal(t, err.Error(), lines[0][ErrAttrKey])
	assert.NotEmpty(t, lines[0][StacktraceAttrKey])
	assert.Equal(t, "odd", lines[0]["!BADKEY"])
}

func TestZerologProviderEmbedsStructuredErrors(t *testing.T) {
	var buf bytes.Buffer
	p := NewZerologProvider(&buf, LevelDebug)

	p.GetLogger().Warn("stopped", "warning", sberrors.NewConvergenceWarning("AdaBoost", 4, "zero training error"))

	lines := decodeLines(t, &buf)
	require.Len(t, lines, 1)
	warning, ok := lines[0]["warning"].(map[string]interface{})
	require.True(t, ok, "warning should be an object, got %T", lines[0]["warning"])
	assert.Equal(t, "ConvergenceWarning", warning["type"])
	assert.Equal(t, 4.0, warning["iterations"])
}

func TestWarningsRouteThroughProvider(t *testing.T) {
	testProvider, logger := NewTestLoggerProvider(LevelDebug)
	prev := SetProvider(testProvider)
	defer SetProvider(prev)

	sberrors.Warn(sberrors.NewUndefinedMetricWarning("margin", "zero total confidence", 0))

	assert.True(t, logger.ContainsField(ComponentKey, "warnings"))
	assert.True(t, logger.ContainsMessage("'margin' is ill-defined"))
}

func TestToLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "info", want: LevelInfo},
		{in: "warn", want: LevelWarn},
		{in: "error", want: LevelError},
		{in: "verbose", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ToLogLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				var valErr *sberrors.ValidationError
				assert.True(t, sberrors.As(err, &valErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetupLoggerTo(t *testing.T) {
	prev := currentProvider()
	defer SetProvider(prev)

	var buf bytes.Buffer
	require.NoError(t, SetupLoggerTo(&buf, "warn"))
	GetLoggerWithName("dataset").Info("dropped")
	GetLoggerWithName("dataset").Warn("kept")

	assert.NotContains(t, buf.String(), "dropped")
	assert.Contains(t, buf.String(), "kept")

	assert.Error(t, SetupLoggerTo(&buf, "loud"))
}

func TestConcurrentLogging(t *testing.T) {
	testLogger, _ := NewTestLogger(LevelInfo)

	const goroutines, perGoroutine = 4, 5
	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				testLogger.Info("concurrent", "goroutine_id", id, "message_id", j)
			}
		}(i)
	}
	wg.Wait()

	entries, err := testLogger.GetLogEntries()
	require.NoError(t, err)
	assert.Len(t, entries, goroutines*perGoroutine)
}

func BenchmarkZerologLogging(b *testing.B) {
	var buf bytes.Buffer
	logger := NewZerologProvider(&buf, LevelInfo).GetLoggerWithName("bench")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		logger.Info("benchmark message", IterationKey, i, OperationKey, OperationPredict)
		buf.Reset()
	}
}
