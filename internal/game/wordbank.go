package game

import (
	"bufio"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// WordBank holds the word corpus and hands out random candidates.
type WordBank struct {
	words []string
	rng   *rand.Rand
}

func NewWordBank(words []string) *WordBank {
	bank := &WordBank{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
	bank.Merge(words)
	return bank
}

// LoadWordBank reads a newline-delimited word list. A load failure is logged
// and leaves the bank empty: sessions still run, in degraded mode, so a
// missing corpus is a deploy problem rather than a crash.
func LoadWordBank(path string, logger zerolog.Logger) *WordBank {
	bank := NewWordBank(nil)
	file, err := os.Open(path)
	if err != nil {
		logger.Error().Err(err).Str("path", path).Msg("word list unavailable, bank is empty")
		return bank
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var words []string
	for scanner.Scan() {
		word := strings.TrimSpace(scanner.Text())
		if word == "" || strings.HasPrefix(word, "#") {
			continue
		}
		words = append(words, word)
	}
	if err := scanner.Err(); err != nil {
		logger.Error().Err(err).Str("path", path).Msg("word list read failed, bank is empty")
		return bank
	}
	bank.Merge(words)
	logger.Info().Str("path", path).Int("words", len(bank.words)).Msg("word list loaded")
	return bank
}

// Merge appends words to the corpus, skipping duplicates.
func (b *WordBank) Merge(words []string) {
	seen := make(map[string]struct{}, len(b.words))
	for _, word := range b.words {
		seen[strings.ToLower(word)] = struct{}{}
	}
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		key := strings.ToLower(word)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		b.words = append(b.words, word)
	}
}

func (b *WordBank) Size() int {
	return len(b.words)
}

// Draw returns n words chosen independently and uniformly at random, with
// replacement: duplicates among the candidates are possible and accepted.
// An empty bank returns nil.
func (b *WordBank) Draw(n int) []string {
	if len(b.words) == 0 || n <= 0 {
		return nil
	}
	out := make([]string, n)
	for i := range out {
		out[i] = b.words[b.rng.Intn(len(b.words))]
	}
	return out
}

// Mask hides a word from guessers: every rune becomes '_' except literal
// spaces and hyphens, which pass through so word shape stays visible.
func Mask(word string) string {
	masked := []rune(word)
	for i, r := range masked {
		if r != ' ' && r != '-' {
			masked[i] = '_'
		}
	}
	return string(masked)
}
