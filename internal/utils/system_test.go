package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestUniquePath(t *testing.T) {
	dir := t.TempDir()
	card := filepath.Join(dir, "card.png")

	t.Run("FreeNameUnchanged", func(t *testing.T) {
		if got := UniquePath(card); got != card {
			t.Errorf("UniquePath() = %q, expected %q", got, card)
		}
	})

	t.Run("AppendsSuffixOnConflict", func(t *testing.T) {
		for _, name := range []string{"card.png", "card-2.png"} {
			if err := os.WriteFile(filepath.Join(dir, name), nil, 0600); err != nil {
				t.Fatal(err)
			}
		}
		want := filepath.Join(dir, "card-3.png")
		if got := UniquePath(card); got != want {
			t.Errorf("UniquePath() = %q, expected %q", got, want)
		}
	})

	t.Run("NoExtension", func(t *testing.T) {
		plain := filepath.Join(dir, "notes")
		if err := os.WriteFile(plain, nil, 0600); err != nil {
			t.Fatal(err)
		}
		want := filepath.Join(dir, "notes-2")
		if got := UniquePath(plain); got != want {
			t.Errorf("UniquePath() = %q, expected %q", got, want)
		}
	})
}

func TestGetUsername(t *testing.T) {
	username, err := GetUsername()
	if err != nil {
		t.Skipf("user lookup unavailable: %v", err)
	}
	if username == "" {
		t.Error("GetUsername() returned empty string")
	}
}
