package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger_Environments(t *testing.T) {
	tests := []struct {
		env     string
		level   string
		wantErr bool
		enabled zapcore.Level
	}{
		{"prod", "", false, zapcore.InfoLevel},
		{"local", "", false, zapcore.DebugLevel},
		{"dev", "warn", false, zapcore.WarnLevel},
		{"docker", "error", false, zapcore.ErrorLevel},
		{"staging", "", true, 0},
		{"local", "loud", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !l.Core().Enabled(tt.enabled) {
				t.Errorf("level %s should be enabled", tt.enabled)
			}
			if tt.enabled > zapcore.DebugLevel && l.Core().Enabled(tt.enabled-1) {
				t.Errorf("level %s should be disabled", tt.enabled-1)
			}
		})
	}
}

func TestFromContext_Fallback(t *testing.T) {
	if l := FromContext(context.Background()); l == nil {
		t.Fatal("expected no-op logger, got nil")
	}
}

func TestWith_AddsFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	ctx := Attach(context.Background(), zap.New(core))

	ctx = With(ctx, zap.String("request_id", "abc"))
	FromContext(ctx).Info("search")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["request_id"]; got != "abc" {
		t.Errorf("request_id = %v", got)
	}
}

func TestForRequest(t *testing.T) {
	tests := []struct {
		name      string
		requestID string
		wantField bool
	}{
		{"with id", "req-7", true},
		{"without id", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.InfoLevel)
			ctx, l := ForRequest(context.Background(), zap.New(core), tt.requestID)

			l.Info("http_request")
			FromContext(ctx).Info("render")

			entries := logs.All()
			if len(entries) != 2 {
				t.Fatalf("expected 2 entries, got %d", len(entries))
			}
			for _, e := range entries {
				_, has := e.ContextMap()["request_id"]
				if has != tt.wantField {
					t.Errorf("%s: request_id present = %v, want %v", e.Message, has, tt.wantField)
				}
			}
		})
	}
}
