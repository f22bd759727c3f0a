package audit

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLogWriter(t *testing.T) {
	var buf bytes.Buffer
	writer, err := NewLogWriter(log.New(&buf, "", 0))
	if err != nil {
		t.Fatalf("new log writer: %v", err)
	}
	meta := Metadata(map[string]any{"from": "pendiente", "to": "revisada"})
	err = writer.Log(context.Background(), Entry{
		SessionID:    "sess-1",
		Role:         "operativo",
		Action:       ActionAlertTransition,
		ResourceType: "alert",
		ResourceID:   "7",
		Metadata:     meta,
	})
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	line := buf.String()
	for _, want := range []string{"action=alert.transition", "session=sess-1", "resource=alert/7", "audit-", DigestJSON(meta)} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %s", want, line)
		}
	}
}

func TestMetadataAndDigest(t *testing.T) {
	if Metadata(nil) != nil {
		t.Fatalf("expected nil metadata")
	}
	if DigestJSON(nil) != "" {
		t.Fatalf("expected empty digest")
	}
	if got := DigestJSON([]byte(`{}`)); len(got) != 64 {
		t.Fatalf("expected sha256 hex digest, got %s", got)
	}
	if _, err := NewLogWriter(nil); err == nil {
		t.Fatalf("expected error for nil logger")
	}
}

func TestClientIP(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.5:4431"
	if got := ClientIP(req); got != "10.0.0.5" {
		t.Fatalf("expected remote host, got %s", got)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")
	if got := ClientIP(req); got != "203.0.113.9" {
		t.Fatalf("expected forwarded client, got %s", got)
	}
}
