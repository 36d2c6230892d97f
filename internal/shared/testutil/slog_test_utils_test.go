package testutil

import (
	"log/slog"
	"testing"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		if handler.Count() != 2 {
			t.Errorf("Expected 2 records, got %d", handler.Count())
		}
		if !handler.ContainsMessage("test message") {
			t.Error("Expected to find 'test message'")
		}
		if !handler.ContainsAttr("key", "value") {
			t.Error("Expected to find attribute key=value")
		}
		if !handler.ContainsAttr("code", 500) {
			t.Error("Expected int attribute to match regardless of width")
		}
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")
		logger.Error("error msg")

		if n := len(handler.GetRecordsByLevel(slog.LevelInfo)); n != 1 {
			t.Errorf("Expected 1 info record, got %d", n)
		}
		if n := len(handler.GetRecordsByLevel(slog.LevelError)); n != 1 {
			t.Errorf("Expected 1 error record, got %d", n)
		}
	})

	t.Run("child loggers share records and keep attrs", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With("component", "cleaner").Info("dropped rows", "rows", 3)

		AssertLogContains(t, handler, slog.LevelInfo, "dropped rows")
		AssertLogAttr(t, handler, "component", "cleaner")
		AssertLogAttr(t, handler, "rows", 3)
		AssertNoErrors(t, handler)
	})
}
