package game

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

func TestWordBankDraw(t *testing.T) {
	bank := NewWordBank([]string{"cat", "dog", "fish"})
	choices := bank.Draw(3)
	if len(choices) != 3 {
		t.Fatalf("expected 3 choices, got %d", len(choices))
	}
	for _, word := range choices {
		if word != "cat" && word != "dog" && word != "fish" {
			t.Fatalf("drew word outside the bank: %q", word)
		}
	}

	empty := NewWordBank(nil)
	if choices := empty.Draw(3); choices != nil {
		t.Fatalf("empty bank should return nil, got %#v", choices)
	}
}

func TestWordBankMergeDeduplicates(t *testing.T) {
	bank := NewWordBank([]string{"cat", "dog"})
	bank.Merge([]string{"Cat", "  ", "fish", "DOG"})
	if bank.Size() != 3 {
		t.Fatalf("expected 3 words after merge, got %d", bank.Size())
	}
}

func TestLoadWordBank(t *testing.T) {
	path := filepath.Join(t.TempDir(), "words.txt")
	content := "# comment\ncat\n\n  dog  \nhot-air balloon\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write word list: %v", err)
	}

	bank := LoadWordBank(path, zerolog.Nop())
	if bank.Size() != 3 {
		t.Fatalf("expected 3 words, got %d", bank.Size())
	}
}

func TestLoadWordBankMissingFile(t *testing.T) {
	bank := LoadWordBank(filepath.Join(t.TempDir(), "absent.txt"), zerolog.Nop())
	if bank.Size() != 0 {
		t.Fatalf("expected empty bank, got %d words", bank.Size())
	}
}

func TestMask(t *testing.T) {
	cases := []struct {
		word string
		want string
	}{
		{"cat", "___"},
		{"fire truck", "____ _____"},
		{"hot-air balloon", "___-___ _______"},
		{"café", "____"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := Mask(tc.word); got != tc.want {
			t.Fatalf("Mask(%q) = %q, want %q", tc.word, got, tc.want)
		}
	}
}
