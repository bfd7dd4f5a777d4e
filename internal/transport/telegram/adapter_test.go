package telegram

import (
	"strings"
	"testing"
)

func TestSplitTextShort(t *testing.T) {
	t.Parallel()
	got := splitText("hello", 10)
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("splitText = %#v", got)
	}
}

func TestSplitTextPrefersNewlines(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("linha um\n", 40)
	chunks := splitText(text, 100)

	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len([]rune(c)) > 100 {
			t.Fatalf("chunk %d exceeds limit: %d runes", i, len([]rune(c)))
		}
		if strings.HasSuffix(c, "linha") || strings.HasSuffix(c, "lin") {
			t.Fatalf("chunk %d split mid-line: %q", i, c)
		}
	}

	joined := strings.Join(chunks, "\n") + "\n"
	if strings.ReplaceAll(joined, "\n", "") != strings.ReplaceAll(text, "\n", "") {
		t.Fatal("content lost during split")
	}
}

func TestSplitTextHardBreakWithoutNewlines(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("x", 250)
	chunks := splitText(text, 100)

	total := 0
	for i, c := range chunks {
		if len([]rune(c)) > 100 {
			t.Fatalf("chunk %d exceeds limit", i)
		}
		total += len(c)
	}
	if total != 250 {
		t.Fatalf("total runes = %d, want 250", total)
	}
}

func TestValidPlayerID(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in string
		ok bool
	}{
		{"1033857091", true},
		{"12345", true},
		{"123456789012345", true},
		{"1234", false},
		{"1234567890123456", false},
		{"10338abc91", false},
		{"", false},
		{"-1033857091", false},
	}
	for _, tt := range tests {
		if got := validPlayerID(tt.in); got != tt.ok {
			t.Errorf("validPlayerID(%q) = %v, want %v", tt.in, got, tt.ok)
		}
	}
}
