package secret

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newBufLogger() (*slog.Logger, *bytes.Buffer, *Redactor) {
	var buf bytes.Buffer
	r := NewRedactor()
	inner := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewRedactingHandler(inner, r)), &buf, r
}

func TestRedactingHandler_Message(t *testing.T) {
	t.Parallel()
	logger, buf, _ := newBufLogger()

	logger.Info("got key sk-abcdefghijklmnopqrstuvwxyz from request")

	out := buf.String()
	if strings.Contains(out, "sk-abcdefghijklmnopqrstuvwxyz") {
		t.Errorf("secret leaked into log: %q", out)
	}
	if !strings.Contains(out, Placeholder) {
		t.Errorf("placeholder missing from log: %q", out)
	}
}

func TestRedactingHandler_Attrs(t *testing.T) {
	t.Parallel()
	logger, buf, r := newBufLogger()
	r.AddLiteral("literal-secret-value")

	logger.Info("probe finished",
		"provider", "OpenAI",
		"detail", "auth with literal-secret-value failed")

	out := buf.String()
	if strings.Contains(out, "literal-secret-value") {
		t.Errorf("literal leaked into log: %q", out)
	}
	if !strings.Contains(out, "provider=OpenAI") {
		t.Errorf("benign attribute mangled: %q", out)
	}
}

func TestRedactingHandler_WithAttrs(t *testing.T) {
	t.Parallel()
	logger, buf, _ := newBufLogger()

	logger.With("token", "sk-ant-REDACTED").Info("provisioned")

	out := buf.String()
	if strings.Contains(out, "sk-ant-") {
		t.Errorf("secret leaked through With: %q", out)
	}
}

func TestRedactingHandler_Group(t *testing.T) {
	t.Parallel()
	logger, buf, _ := newBufLogger()

	logger.Info("request",
		slog.Group("auth", slog.String("key", "sk-abcdefghijklmnopqrstuvwxyz")))

	out := buf.String()
	if strings.Contains(out, "sk-abcdefghijklmnopqrstuvwxyz") {
		t.Errorf("secret leaked inside group: %q", out)
	}
}
