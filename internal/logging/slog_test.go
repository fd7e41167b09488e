package logging

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)
	logger.Debug("hidden")
	logger.Info("shown", Operation("drive.list"))
	if strings.Contains(buf.String(), "hidden") {
		t.Error("debug message logged at info level")
	}
	if !strings.Contains(buf.String(), "operation=drive.list") {
		t.Errorf("missing operation attribute in %q", buf.String())
	}

	buf.Reset()
	New(&buf, true).Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Error("debug message not logged with debug enabled")
	}
}

func TestWithHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, false)

	WithService(WithTool(WithOperation(logger, "files.create"), "drive_create_file"), "drive").Info("done")

	out := buf.String()
	for _, want := range []string{"operation=files.create", "tool=drive_create_file", "service=drive"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestAttrs(t *testing.T) {
	tests := []struct {
		attr    slog.Attr
		wantKey string
		wantVal string
	}{
		{Operation("op"), KeyOperation, "op"},
		{Service("sheets"), KeyService, "sheets"},
		{Tool("slides_replace_text"), KeyTool, "slides_replace_text"},
		{Status(StatusSuccess), KeyStatus, StatusSuccess},
		{FileID("1abc"), KeyFileID, "1abc"},
	}
	for _, tt := range tests {
		if tt.attr.Key != tt.wantKey {
			t.Errorf("key = %q, want %q", tt.attr.Key, tt.wantKey)
		}
		if tt.attr.Value.String() != tt.wantVal {
			t.Errorf("value = %q, want %q", tt.attr.Value.String(), tt.wantVal)
		}
	}
}

func TestErr(t *testing.T) {
	attr := Err(errors.New("test error"))
	if attr.Key != KeyError {
		t.Errorf("Err key = %q, want %q", attr.Key, KeyError)
	}
	if attr.Value.String() != "test error" {
		t.Errorf("Err value = %q, want %q", attr.Value.String(), "test error")
	}

	// Test with nil - should return an empty group that slog will omit
	attr = Err(nil)
	if attr.Key != "" {
		t.Errorf("Err(nil) key = %q, want empty string (empty group)", attr.Key)
	}
}

func TestRedactPath(t *testing.T) {
	if got := RedactPath(""); got != "<none>" {
		t.Errorf("RedactPath(\"\") = %q", got)
	}

	got := RedactPath("/home/jane/secrets/service-account.json")
	if !strings.HasPrefix(got, "service-account.json#") {
		t.Errorf("RedactPath kept no base name: %q", got)
	}
	if strings.Contains(got, "jane") {
		t.Errorf("RedactPath leaked the directory: %q", got)
	}
	if got == RedactPath("/other/service-account.json") {
		t.Error("different paths should redact differently")
	}

	attr := Credentials("/a/b.json")
	if attr.Key != KeyCredentials {
		t.Errorf("Credentials key = %q", attr.Key)
	}
}

func TestSanitizeToken(t *testing.T) {
	tests := []struct {
		token    string
		expected string
	}{
		{"", "<empty>"},
		{"abc123", "[token:6 chars]"},
		{"a_very_long_token_string", "[token:24 chars]"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := SanitizeToken(tt.token)
			if result != tt.expected {
				t.Errorf("SanitizeToken(%q) = %q, want %q", tt.token, result, tt.expected)
			}
		})
	}
}
