package chunker

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/pharmaguard/pharmaguard-cli/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		c, err := New(DefaultMaxChars, DefaultOverlapChars)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if c.maxChars != DefaultMaxChars {
			t.Errorf("expected maxChars %d, got %d", DefaultMaxChars, c.maxChars)
		}
		if c.overlapChars != DefaultOverlapChars {
			t.Errorf("expected overlapChars %d, got %d", DefaultOverlapChars, c.overlapChars)
		}
	})

	t.Run("zero max chars", func(t *testing.T) {
		_, err := New(0, 10)
		if !errors.Is(err, domain.ErrChunkConfig) {
			t.Errorf("expected ErrChunkConfig, got %v", err)
		}
	})

	t.Run("negative overlap", func(t *testing.T) {
		_, err := New(100, -1)
		if !errors.Is(err, domain.ErrChunkConfig) {
			t.Errorf("expected ErrChunkConfig, got %v", err)
		}
	})

	t.Run("overlap equals max chars", func(t *testing.T) {
		_, err := New(100, 100)
		if !errors.Is(err, domain.ErrChunkConfig) {
			t.Errorf("expected ErrChunkConfig, got %v", err)
		}
	})

	t.Run("overlap exceeds max chars", func(t *testing.T) {
		_, err := New(100, 150)
		if !errors.Is(err, domain.ErrChunkConfig) {
			t.Errorf("expected ErrChunkConfig, got %v", err)
		}
	})
}

func TestSplit_Empty(t *testing.T) {
	c := mustNew(t, 100, 20)
	if got := c.Split(""); got != nil {
		t.Errorf("expected no passages for empty text, got %v", got)
	}
}

func TestSplit_NoSentenceBoundaries(t *testing.T) {
	c := mustNew(t, 20, 5)

	// No terminator anywhere, so the whole text is one sentence and one
	// passage even though it exceeds the size limit.
	text := "a run of words with no terminator at all"
	got := c.Split(text)
	if len(got) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(got))
	}
	if got[0] != text {
		t.Errorf("expected whole text back, got %q", got[0])
	}
}

func TestSplit_SingleShortSentence(t *testing.T) {
	c := mustNew(t, 100, 20)

	got := c.Split("Take with food.")
	if len(got) != 1 {
		t.Fatalf("expected 1 passage, got %d", len(got))
	}
	if got[0] != "Take with food." {
		t.Errorf("unexpected passage: %q", got[0])
	}
}

func TestSplit_SentenceAlignedOverlap(t *testing.T) {
	c := mustNew(t, 30, 10)

	// Four 10-char sentences. The first passage takes three, the second
	// re-opens with the last sentence of the first as overlap.
	text := "One fish. Two fish. Red fish. Blue fish."
	want := []string{
		"One fish. Two fish. Red fish. ",
		"Red fish. Blue fish.",
	}

	got := c.Split(text)
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %q, got %q", want, got)
	}
	assertCoverage(t, text, got, 10)
}

func TestSplit_OversizedSentenceIsOwnPassage(t *testing.T) {
	c := mustNew(t, 20, 5)

	long := strings.Repeat("b", 28) + ". "
	text := "A. " + long + "C."

	got := c.Split(text)
	if len(got) != 3 {
		t.Fatalf("expected 3 passages, got %d: %q", len(got), got)
	}
	if got[0] != "A. " {
		t.Errorf("unexpected first passage: %q", got[0])
	}
	if got[1] != long {
		t.Errorf("expected oversized sentence as its own passage, got %q", got[1])
	}
	if got[2] != "C." {
		t.Errorf("unexpected last passage: %q", got[2])
	}
	assertCoverage(t, text, got, 5)
}

func TestSplit_LongSection(t *testing.T) {
	c := mustNew(t, 500, 50)

	// 24 unique 50-char sentences, 1200 chars total.
	var b strings.Builder
	for i := 0; i < 24; i++ {
		sentence := "Sentence number " + string(rune('a'+i)) + " padding "
		b.WriteString(sentence + strings.Repeat("x", 49-len(sentence)) + ".")
	}
	text := b.String()
	if len(text) != 1200 {
		t.Fatalf("fixture should be 1200 chars, got %d", len(text))
	}

	got := c.Split(text)
	if len(got) != 3 {
		t.Fatalf("expected 3 passages, got %d", len(got))
	}
	for i, p := range got {
		if len(p) > 500 {
			t.Errorf("passage %d exceeds max size: %d chars", i, len(p))
		}
	}
	assertCoverage(t, text, got, 50)
}

func TestSplit_Deterministic(t *testing.T) {
	c := mustNew(t, 80, 20)

	text := "Aspirin increases bleeding risk. Avoid with warfarin. " +
		"Monitor INR closely. Stop before surgery. Ask a pharmacist."

	first := c.Split(text)
	second := c.Split(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("expected identical output on repeat runs, got %q then %q", first, second)
	}
}

func TestSplit_NewlineBoundaries(t *testing.T) {
	c := mustNew(t, 30, 10)

	text := "First line\nSecond line\nThird line"
	got := c.Split(text)
	assertCoverage(t, text, got, 10)
	for i, p := range got {
		if len(p) > 30 && strings.ContainsAny(p, "\n") {
			t.Errorf("passage %d should have split at line breaks: %q", i, p)
		}
	}
}

func mustNew(t *testing.T, maxChars, overlapChars int) *Chunker {
	t.Helper()
	c, err := New(maxChars, overlapChars)
	if err != nil {
		t.Fatalf("New(%d, %d) failed: %v", maxChars, overlapChars, err)
	}
	return c
}

// assertCoverage checks that the passages cover the input verbatim in
// order and that consecutive passages share at most overlapChars.
// Fixtures must not repeat sentence text.
func assertCoverage(t *testing.T, text string, passages []string, overlapChars int) {
	t.Helper()

	covered := 0
	prevEnd := 0
	for i, p := range passages {
		idx := strings.Index(text, p)
		if idx < 0 {
			t.Fatalf("passage %d is not verbatim label text: %q", i, p)
		}
		if idx > covered {
			t.Fatalf("gap before passage %d: coverage ends at %d, passage starts at %d", i, covered, idx)
		}
		if i > 0 {
			if overlap := prevEnd - idx; overlap > overlapChars {
				t.Errorf("overlap before passage %d is %d chars, budget is %d", i, overlap, overlapChars)
			}
		}
		prevEnd = idx + len(p)
		if prevEnd > covered {
			covered = prevEnd
		}
	}
	if covered != len(text) {
		t.Errorf("passages cover %d of %d chars", covered, len(text))
	}
}
