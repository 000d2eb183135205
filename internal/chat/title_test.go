package chat

import (
	"strings"
	"testing"
)

func TestDeriveTitle_NoUserMessage(t *testing.T) {
	t.Parallel()
	msgs := []Message{{ID: "1", Content: Greeting, IsUser: false, Status: StatusRead}}
	if got := DeriveTitle(msgs); got != DefaultTitle {
		t.Errorf("DeriveTitle = %q, want %q", got, DefaultTitle)
	}
}

func TestDeriveTitle_FirstUserMessage(t *testing.T) {
	t.Parallel()
	msgs := []Message{
		{ID: "1", Content: Greeting, IsUser: false, Status: StatusRead},
		{ID: "2", Content: "  How do I cook rice?  ", IsUser: true, Status: StatusSent},
		{ID: "3", Content: "Like this.", IsUser: false, Status: StatusRead},
		{ID: "4", Content: "Thanks!", IsUser: true, Status: StatusSent},
	}
	if got := DeriveTitle(msgs); got != "How do I cook rice?" {
		t.Errorf("DeriveTitle = %q", got)
	}
}

func TestDeriveTitle_TruncatesLongMessage(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("a", 31)
	msgs := []Message{{ID: "1", Content: long, IsUser: true, Status: StatusSent}}
	want := strings.Repeat("a", 30) + "..."
	if got := DeriveTitle(msgs); got != want {
		t.Errorf("DeriveTitle = %q, want %q", got, want)
	}
}

func TestDeriveTitle_ExactLimitUntouched(t *testing.T) {
	t.Parallel()
	exact := strings.Repeat("b", 30)
	msgs := []Message{{ID: "1", Content: exact, IsUser: true, Status: StatusSent}}
	if got := DeriveTitle(msgs); got != exact {
		t.Errorf("DeriveTitle = %q, want %q", got, exact)
	}
}

func TestDeriveTitle_RuneSafe(t *testing.T) {
	t.Parallel()
	long := strings.Repeat("é", 31)
	msgs := []Message{{ID: "1", Content: long, IsUser: true, Status: StatusSent}}
	want := strings.Repeat("é", 30) + "..."
	if got := DeriveTitle(msgs); got != want {
		t.Errorf("DeriveTitle = %q, want %q", got, want)
	}
}
