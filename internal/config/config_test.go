package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CHAT_CONFIG", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TCPAddr != DefaultTCPAddr {
		t.Errorf("TCPAddr = %q, want %q", cfg.TCPAddr, DefaultTCPAddr)
	}
	if cfg.PollInterval != DefaultPollInterval || cfg.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("unexpected timings: %+v", cfg)
	}
	if cfg.WSAddr != "" || cfg.HTTPAddr != "" {
		t.Errorf("optional listeners should be disabled by default: %+v", cfg)
	}
}

func TestLoad_FileWithEnvSubstitution(t *testing.T) {
	t.Setenv("TEST_CHAT_PORT", "4000")
	path := writeTempFile(t, `
tcp_addr: 127.0.0.1:${TEST_CHAT_PORT}
http_addr: :9090
poll_interval: 20ms
write_timeout: 1s
max_frame_size: 4096
log_encoding: console
`)
	t.Setenv("CHAT_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TCPAddr != "127.0.0.1:4000" {
		t.Errorf("TCPAddr = %q, want %q", cfg.TCPAddr, "127.0.0.1:4000")
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q", cfg.HTTPAddr)
	}
	if cfg.PollInterval != 20*time.Millisecond || cfg.WriteTimeout != time.Second {
		t.Errorf("durations not parsed: %+v", cfg)
	}
	if cfg.MaxFrameSize != 4096 || cfg.LogEncoding != "console" {
		t.Errorf("unexpected values: %+v", cfg)
	}
	if cfg.InboxSize != DefaultInboxSize {
		t.Errorf("InboxSize = %d, want default", cfg.InboxSize)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeTempFile(t, "tcp_addr: 127.0.0.1:4000\n")
	t.Setenv("CHAT_CONFIG", path)
	t.Setenv("CHAT_TCP_ADDR", "127.0.0.1:5000")
	t.Setenv("CHAT_POLL_INTERVAL", "250ms")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.TCPAddr != "127.0.0.1:5000" {
		t.Errorf("TCPAddr = %q, want env override", cfg.TCPAddr)
	}
	if cfg.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %v", cfg.PollInterval)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"bad duration", map[string]string{"CHAT_POLL_INTERVAL": "soon"}, "CHAT_POLL_INTERVAL"},
		{"bad size", map[string]string{"CHAT_MAX_FRAME_SIZE": "big"}, "CHAT_MAX_FRAME_SIZE"},
		{"bad addr", map[string]string{"CHAT_TCP_ADDR": "no-port"}, "tcp_addr"},
		{"bad encoding", map[string]string{"CHAT_LOG_ENCODING": "xml"}, "log_encoding"},
		{"missing file", map[string]string{"CHAT_CONFIG": "/nonexistent/chat.yaml"}, "read config file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CHAT_CONFIG", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadFile_InvalidYAML(t *testing.T) {
	path := writeTempFile(t, "tcp_addr: [unclosed\n")
	if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "parse config yaml") {
		t.Fatalf("expected yaml parse error, got %v", err)
	}
}
