package deck

import "testing"

func TestCollapse(t *testing.T) {
	tests := []struct{ in, want string }{
		{"a", "a"},
		{"  a \n\t b  ", " a b "},
		{"\n", " "},
		{"", ""},
		{"a \u00a0 b", "a \u00a0 b"},
	}
	for _, tt := range tests {
		if got := collapse(tt.in); got != tt.want {
			t.Errorf("collapse(%q): got %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSplitPre(t *testing.T) {
	tests := []struct {
		in, ws string
		want   []string
	}{
		{"a\n b", "", []string{"a b"}},
		{"a\n  b", "pre", []string{"a", "  b"}},
		{"a  x\n  b", "pre-line", []string{"a x", " b"}},
	}
	for _, tt := range tests {
		got := splitPre(tt.in, tt.ws)
		if len(got) != len(tt.want) {
			t.Fatalf("splitPre(%q, %q): got %q, want %q", tt.in, tt.ws, got, tt.want)
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("splitPre(%q, %q)[%d]: got %q, want %q", tt.in, tt.ws, i, got[i], tt.want[i])
			}
		}
	}
}

func TestTrimRuns(t *testing.T) {
	run := func(s string, brk bool) TextRun { return TextRun{Text: s, Options: RunOptions{Break: brk}} }
	got := trimRuns([]TextRun{
		run(" Hello ", false),
		run(" world ", true),
		run("   ", false),
		run(" next", false),
	}, false)
	want := []string{"Hello ", "world", "next"}
	if len(got) != len(want) {
		t.Fatalf("got %d runs %+v, want %d", len(got), got, len(want))
	}
	for i, w := range want {
		if got[i].Text != w {
			t.Errorf("run %d: got %q, want %q", i, got[i].Text, w)
		}
	}
	if !got[1].Options.Break {
		t.Error("break lost")
	}
}
