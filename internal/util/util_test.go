package util

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"sp500dash/internal/domain"
)

func TestRetry(t *testing.T) {
	attempts := 0
	targetAttempts := 3

	err := Retry(context.Background(), 5, 0, func(int) error {
		attempts++
		if attempts < targetAttempts {
			return errors.New("transient error")
		}
		return nil
	})

	if err != nil {
		t.Fatalf("Retry returned unexpected error: %v", err)
	}
	if attempts != targetAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, targetAttempts)
	}
}

func TestRetryAllFail(t *testing.T) {
	attempts := 0
	maxAttempts := 3

	err := Retry(context.Background(), maxAttempts, 0, func(attempt int) error {
		if attempt != attempts {
			t.Errorf("attempt = %d, want %d", attempt, attempts)
		}
		attempts++
		return errors.New("persistent error")
	})

	if err == nil {
		t.Fatal("Retry should return error when all attempts fail")
	}
	if attempts != maxAttempts {
		t.Errorf("Retry called fn %d times, want %d", attempts, maxAttempts)
	}
}

func TestRetryPermanent(t *testing.T) {
	notFound := errors.New("not found")
	attempts := 0

	err := Retry(context.Background(), 5, 0, func(int) error {
		attempts++
		return Permanent(notFound)
	})

	if !errors.Is(err, notFound) {
		t.Fatalf("Retry error = %v, want %v", err, notFound)
	}
	if attempts != 1 {
		t.Errorf("permanent error retried: %d attempts", attempts)
	}
}

func TestRetryContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, time.Hour, func(int) error { return errors.New("boom") })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry error = %v, want context.Canceled", err)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(6000) // one token every 10ms
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("Wait: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("3 waits took %v, expected pacing", elapsed)
	}

	ctx, cancel := context.WithCancel(ctx)
	cancel()
	if err := NewRateLimiter(1).Wait(ctx); err == nil {
		t.Error("Wait on cancelled context should fail")
	}
}

func TestTradingCalendarLastSession(t *testing.T) {
	cal := NewTradingCalendar(domain.MarketUS)
	et := cal.Location()

	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"after close on a Wednesday", time.Date(2024, 6, 12, 17, 0, 0, 0, et), "2024-06-12"},
		{"before close on a Wednesday", time.Date(2024, 6, 12, 10, 0, 0, 0, et), "2024-06-11"},
		{"Saturday", time.Date(2024, 6, 15, 12, 0, 0, 0, et), "2024-06-14"},
		{"Monday morning", time.Date(2024, 6, 17, 9, 0, 0, 0, et), "2024-06-14"},
	}
	for _, tt := range tests {
		if got := cal.LastSession(tt.at).String(); got != tt.want {
			t.Errorf("%s: LastSession = %s, want %s", tt.name, got, tt.want)
		}
	}

	if cal.IsTradingDay(domain.NewDate(2024, 6, 16)) {
		t.Error("Sunday should not be a trading day")
	}
	if got := Lookback(domain.NewDate(2024, 6, 14), 365).String(); got != "2023-06-15" {
		t.Errorf("Lookback = %s", got)
	}
}

func TestNewLoggerFormats(t *testing.T) {
	var buf bytes.Buffer
	NewLoggerTo(&buf, "debug", "json").Debug("hello", "k", 1)
	if !strings.Contains(buf.String(), `"msg":"hello"`) {
		t.Errorf("json output = %q", buf.String())
	}

	buf.Reset()
	NewLoggerTo(&buf, "warn", "text").Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
}
