package tgui

import (
	"errors"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncRunes(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "hell…"},
		{"中文中文中文", 3, "中文…"},
		{"x", 0, ""},
	}
	for _, c := range cases {
		if got := TruncRunes(c.in, c.n); got != c.want {
			t.Fatalf("TruncRunes(%q,%d) = %q, want %q", c.in, c.n, got, c.want)
		}
	}
}

func TestSplitPrefersNewlines(t *testing.T) {
	t.Parallel()
	s := strings.Repeat("a", 60) + "\n" + strings.Repeat("b", 60)
	got := Split(s, 100, false)
	if len(got) != 2 || got[0] != strings.Repeat("a", 60) || got[1] != strings.Repeat("b", 60) {
		t.Fatalf("chunks = %q", got)
	}
}

func TestSplitKeepsTagsWhole(t *testing.T) {
	t.Parallel()
	s := strings.Repeat("x", 98) + "<b>bold</b>"
	got := Split(s, 100, true)
	if len(got) != 2 || !strings.HasPrefix(got[1], "<b>") {
		t.Fatalf("chunks = %q", got)
	}
	for _, c := range got {
		if utf8.RuneCountInString(c) > 100 {
			t.Fatalf("chunk too long: %d", utf8.RuneCountInString(c))
		}
	}
}

func TestSplitShort(t *testing.T) {
	t.Parallel()
	if got := Split("hi", 0, true); len(got) != 1 || got[0] != "hi" {
		t.Fatalf("chunks = %q", got)
	}
}

func TestInline(t *testing.T) {
	t.Parallel()
	kb := NewInline()
	if kb.Markup() != nil {
		t.Fatal("empty keyboard should have no markup")
	}
	kb.Row(Btn("one", "a"), URLBtn("site", "https://example.com")).Row()
	rm := kb.Markup()
	if rm == nil || kb.Len() != 1 || len(rm.InlineKeyboard) != 1 || len(rm.InlineKeyboard[0]) != 2 {
		t.Fatalf("markup = %+v", rm)
	}
	if rm.InlineKeyboard[0][1].URL != "https://example.com" {
		t.Fatalf("url button = %+v", rm.InlineKeyboard[0][1])
	}
}

func TestCheckCallbackData(t *testing.T) {
	t.Parallel()
	if err := CheckCallbackData(strings.Repeat("a", MaxCallbackDataLen)); err != nil {
		t.Fatal(err)
	}
	if err := CheckCallbackData(strings.Repeat("a", MaxCallbackDataLen+1)); !errors.Is(err, ErrCallbackDataTooLong) {
		t.Fatalf("err = %v", err)
	}
}

func TestHTML(t *testing.T) {
	t.Parallel()
	if got := B("a<b").String(); got != "<b>a&lt;b</b>" {
		t.Fatalf("B = %q", got)
	}
	if got := Lines(B("x"), "", Code("y")).String(); got != "<b>x</b>\n<code>y</code>" {
		t.Fatalf("Lines = %q", got)
	}
	if got := Link("t", `https://x.com/?a="1"`).String(); !strings.Contains(got, "&#34;1&#34;") {
		t.Fatalf("Link = %q", got)
	}
}
