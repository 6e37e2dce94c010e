package ui

import (
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func plainOutput(t *testing.T) {
	t.Helper()
	t.Setenv("NO_COLOR", "1")
}

func colorOutput(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	env, hadEnv := os.LookupEnv("NO_COLOR")
	os.Unsetenv("NO_COLOR")
	color.NoColor = false
	t.Cleanup(func() {
		color.NoColor = prev
		if hadEnv {
			os.Setenv("NO_COLOR", env)
		}
	})
}

func TestPlainDecorations(t *testing.T) {
	plainOutput(t)

	cases := map[string]struct {
		got  string
		want string
	}{
		"code":      {Code.Sprint("datacard card inspect"), "`datacard card inspect`"},
		"path":      {Path.Sprint("out/card.qoi"), "out/card.qoi"},
		"highlight": {Highlight.Sprint("3f2a9c1e"), "'3f2a9c1e'"},
		"muted":     {Muted.Sprint("512 B"), "(512 B)"},
		"error":     {Error.Sprint("damaged"), "damaged"},
		"sprintf":   {Code.Sprintf("datacard card import %s", "card.png"), "`datacard card import card.png`"},
		"multi arg": {Muted.Sprint("v", 2), "(v2)"},
	}
	for name, tc := range cases {
		if tc.got != tc.want {
			t.Errorf("%s: got %q, want %q", name, tc.got, tc.want)
		}
	}
}

func TestStatusMarksPlain(t *testing.T) {
	plainOutput(t)

	marks := []struct{ got, want string }{
		{Done(), "✓"},
		{Failed(), "✗"},
		{Caution(), "⚠"},
		{Note(), "ℹ"},
		{Hint(), "→"},
	}
	for _, m := range marks {
		if m.got != m.want {
			t.Errorf("got %q, want %q", m.got, m.want)
		}
	}
}

func TestColoredOutputDropsDecoration(t *testing.T) {
	colorOutput(t)

	code := Code.Sprint("datacard card export")
	if strings.Contains(code, "`") {
		t.Errorf("colored code kept backticks: %q", code)
	}
	if !strings.Contains(code, "\x1b[") {
		t.Errorf("expected ANSI escapes, got %q", code)
	}

	id := Highlight.Sprintf("card %s", "3f2a9c1e")
	if strings.Contains(id, "'") {
		t.Errorf("colored highlight kept quotes: %q", id)
	}
	if !strings.Contains(id, "card 3f2a9c1e") {
		t.Errorf("highlight lost its text: %q", id)
	}
}

func TestNoColorSources(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	if !noColor() {
		t.Error("an empty NO_COLOR still disables color")
	}
}

func TestNoColorFollowsLibraryDetection(t *testing.T) {
	prev := color.NoColor
	t.Cleanup(func() { color.NoColor = prev })

	color.NoColor = true
	if !noColor() {
		t.Error("color.NoColor=true should disable color")
	}
}

func TestEnsureNewline(t *testing.T) {
	for in, want := range map[string]string{
		"":            "\n",
		"✓ Exported":  "✓ Exported\n",
		"✓ Imported\n": "✓ Imported\n",
	} {
		if got := EnsureNewline(in); got != want {
			t.Errorf("EnsureNewline(%q) = %q, want %q", in, got, want)
		}
	}
}
