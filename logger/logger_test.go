package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func decodeLast(t *testing.T, buf *bytes.Buffer) LogEntry {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry LogEntry
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	return entry
}

func TestSensitiveFieldsAreRedacted(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(Config{ServiceName: "catalog-service"}, &buf)

	l.Security(EventLoginFailure, "Login failed", Fields("username", "alice", "password", "hunter2"))

	entry := decodeLast(t, &buf)
	if entry.Details["password"] != "[REDACTED]" {
		t.Fatalf("expected password to be redacted, got %v", entry.Details["password"])
	}
	if entry.Details["username"] != "alice" {
		t.Fatalf("expected username to pass through, got %v", entry.Details["username"])
	}
}

func TestEmailIsMasked(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(Config{ServiceName: "catalog-service"}, &buf)

	l.Info(EventGeneral, "contact alice@example.com", nil)

	entry := decodeLast(t, &buf)
	if strings.Contains(entry.Message, "alice@") {
		t.Fatalf("expected email to be masked, got %q", entry.Message)
	}
	if !strings.Contains(entry.Message, "al***@example.com") {
		t.Fatalf("unexpected masked form %q", entry.Message)
	}
}

func TestEntryHMACVerifies(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(Config{ServiceName: "catalog-service", HMACKey: "k"}, &buf)

	l.Warn(EventDeleteRefused, "Genre has dependents", Fields("id", "g1"))

	entry := decodeLast(t, &buf)
	if !l.Verify(entry) {
		t.Fatalf("expected hmac to verify")
	}
	entry.Message = "tampered"
	if l.Verify(entry) {
		t.Fatalf("expected tampered entry to fail verification")
	}
}

func TestStackTracesStrippedInProduction(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriterLogger(Config{ServiceName: "catalog-service", Environment: "production"}, &buf)

	l.Error(EventDBError, "boom\ngoroutine 1 [running]:\nstill here", nil)

	entry := decodeLast(t, &buf)
	if strings.Contains(entry.Message, "goroutine") {
		t.Fatalf("expected stack trace lines removed, got %q", entry.Message)
	}
	if !strings.Contains(entry.Message, "still here") {
		t.Fatalf("expected non-trace lines kept, got %q", entry.Message)
	}
}

func TestFieldsSkipsNonStringKeys(t *testing.T) {
	f := Fields("a", 1, 2, "b", "c")
	if len(f) != 1 || f["a"] != 1 {
		t.Fatalf("unexpected fields %v", f)
	}
}
