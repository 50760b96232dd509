package i18n

import "testing"

func TestCatalogsHaveSameKeys(t *testing.T) {
	t.Parallel()
	ref := catalog[PT]
	for _, l := range All {
		for k := range ref {
			if _, ok := catalog[l][k]; !ok {
				t.Fatalf("%s is missing key %q", l, k)
			}
		}
		if len(catalog[l]) != len(ref) {
			t.Fatalf("%s has %d keys, pt has %d", l, len(catalog[l]), len(ref))
		}
	}
}

func TestDetect(t *testing.T) {
	t.Parallel()
	tr := New(PT, []Lang{PT, EN, ZH})
	tests := map[string]Lang{
		"pt-BR":   PT,
		"en":      EN,
		"en-US":   EN,
		"zh-CN":   ZH,
		"zh_tw":   ZH,
		"de":      PT,
		"":        PT,
		"english": PT,
	}
	for code, want := range tests {
		if got := tr.Detect(code); got != want {
			t.Fatalf("Detect(%q) = %q, want %q", code, got, want)
		}
	}
}

func TestTranslateFallbackAndEscape(t *testing.T) {
	t.Parallel()
	tr := New(EN, []Lang{EN})
	if got := tr.T(ZH, "login_success"); got != catalog[EN]["login_success"] {
		t.Fatalf("unsupported language should fall back to default, got %q", got)
	}
	if got := tr.T(EN, "no_such_key"); got != "no_such_key" {
		t.Fatalf("missing key = %q", got)
	}
	got := tr.T(EN, "send_success", "chat_id", "<b>@x</b>")
	want := "✅ Message sent successfully to: &lt;b&gt;@x&lt;/b&gt;"
	if got != want {
		t.Fatalf("T = %q, want %q", got, want)
	}
}

func TestNewIgnoresUnknown(t *testing.T) {
	t.Parallel()
	tr := New("xx", []Lang{"xx"})
	if tr.Default() != PT {
		t.Fatalf("Default = %q", tr.Default())
	}
	if len(tr.Supported()) != len(All) {
		t.Fatalf("Supported = %v", tr.Supported())
	}
}
