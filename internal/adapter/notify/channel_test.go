package notify

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLogChannelNotify(t *testing.T) {
	var buf bytes.Buffer
	channel := NewLogChannel(slog.New(slog.NewJSONHandler(&buf, nil)))

	err := channel.Notify(context.Background(), 7, "order o1 is ready",
		Attachment{Name: "result.pdf", Content: []byte("data")})
	if err != nil {
		t.Fatalf("notify returned error: %v", err)
	}

	logged := buf.String()
	if !strings.Contains(logged, `"actor_id":7`) {
		t.Fatalf("expected actor id in log, got %q", logged)
	}
	if !strings.Contains(logged, `"attachments":1`) {
		t.Fatalf("expected attachment count in log, got %q", logged)
	}
}
