package log

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/YuminosukeSato/tabreg/pkg/errors"
)

func TestTestLogger(t *testing.T) {
	testLogger, buffer := NewTestLogger(LevelInfo)

	testLogger.Debug("hidden")
	testLogger.Info("Training completed", OperationKey, OperationFit, SamplesKey, 80)
	testLogger.With(ModelKindKey, "linear").Warn("slow fit")

	if strings.Contains(buffer.String(), "hidden") {
		t.Error("debug record should be filtered at info level")
	}
	if !testLogger.ContainsMessage("Training completed") {
		t.Error("expected training message")
	}
	if !testLogger.ContainsField(SamplesKey, float64(80)) {
		t.Error("expected samples field")
	}
	if !testLogger.ContainsField(ModelKindKey, "linear") {
		t.Error("expected field added by With")
	}

	entries, err := testLogger.GetLogEntries()
	if err != nil {
		t.Fatalf("GetLogEntries: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("expected 2 entries, got %d", len(entries))
	}
}

func TestLoggerEnabled(t *testing.T) {
	tests := []struct {
		name   string
		logger Logger
	}{
		{name: "test logger", logger: func() Logger { l, _ := NewTestLogger(LevelWarn); return l }()},
		{name: "zerolog logger", logger: NewZerologLogger(&bytes.Buffer{}, LevelWarn)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.logger.Enabled(ctx, LevelInfo) {
				t.Error("info should be disabled at warn level")
			}
			if !tt.logger.Enabled(ctx, LevelWarn) || !tt.logger.Enabled(ctx, LevelError) {
				t.Error("warn and error should be enabled at warn level")
			}
		})
	}
}

func TestZerologLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZerologLogger(&buf, LevelDebug).With(EstimatorIDKey, "exp-1")

	logger.Error("Training failed", errors.NewNotSplitError("Train"), OperationKey, OperationFit)

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not JSON: %v (%s)", err, buf.String())
	}
	if entry["message"] != "Training failed" {
		t.Errorf("unexpected message: %v", entry["message"])
	}
	if entry[EstimatorIDKey] != "exp-1" {
		t.Errorf("missing With field: %v", entry)
	}
	if entry[OperationKey] != OperationFit {
		t.Errorf("missing operation field: %v", entry)
	}
	detail, ok := entry["error_detail"].(map[string]interface{})
	if !ok || detail["type"] != "NotSplitError" {
		t.Errorf("expected structured error detail, got %v", entry["error_detail"])
	}
}

func TestZerologProviderRoutesWarnings(t *testing.T) {
	var buf bytes.Buffer
	provider := NewZerologProvider(&buf, LevelInfo)
	provider.RouteWarnings()
	defer errors.SetZerologWarnFunc(nil)

	errors.Warn(errors.NewUndefinedMetricWarning("R2Score", "fewer than two samples", 0))

	if !strings.Contains(buf.String(), "UndefinedMetricWarning") {
		t.Errorf("expected structured warning in output, got %s", buf.String())
	}

	named := provider.GetLoggerWithName("experiment")
	named.Info("hello")
	if !strings.Contains(buf.String(), `"ml.component":"experiment"`) {
		t.Errorf("expected component field, got %s", buf.String())
	}
}

func TestErrFmtHandlerAddsStacktrace(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(WrapByErrFmtHandler(slog.NewJSONHandler(&buf, nil)))

	logger.Error("Prediction failed", ErrAttr(errors.NewNotFittedError("LinearRegression", "Predict")))

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if st, _ := entry[StacktraceAttrKey].(string); st == "" {
		t.Errorf("expected stacktrace attribute, got %v", entry)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: LevelDebug},
		{in: "INFO", want: LevelInfo},
		{in: "", want: LevelInfo},
		{in: "warn", want: LevelWarn},
		{in: "error", want: LevelError},
		{in: "verbose", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseLevel(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}
