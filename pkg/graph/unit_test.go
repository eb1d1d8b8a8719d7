package graph

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestChunkText(t *testing.T) {
	paraA := strings.Repeat("a", 900)
	paraB := strings.Repeat("b", 900)

	tests := []struct {
		name      string
		text      string
		maxLength int
		want      []string
	}{
		{
			name:      "empty input",
			text:      "",
			maxLength: 10,
			want:      []string{""},
		},
		{
			name:      "shorter than max",
			text:      "First.\n\nSecond.",
			maxLength: 100,
			want:      []string{"First.\n\nSecond."},
		},
		{
			name:      "exactly max",
			text:      "abcde",
			maxLength: 5,
			want:      []string{"abcde"},
		},
		{
			name:      "two large paragraphs",
			text:      paraA + "\n\n" + paraB,
			maxLength: 1200,
			want:      []string{paraA, paraB},
		},
		{
			name:      "greedy grouping",
			text:      "aaaa\n\nbbbb\n\ncccc\n\ndddd",
			maxLength: 10,
			want:      []string{"aaaa\n\nbbbb", "cccc\n\ndddd"},
		},
		{
			name:      "oversized paragraph kept whole",
			text:      "short\n\n" + strings.Repeat("x", 30) + "\n\ntail",
			maxLength: 10,
			want:      []string{"short", strings.Repeat("x", 30), "tail"},
		},
		{
			name:      "runes not bytes",
			text:      "äää\n\nööö",
			maxLength: 8,
			want:      []string{"äää\n\nööö"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChunkText(tt.text, tt.maxLength)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ChunkText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestChunkTextReconstructsOriginal(t *testing.T) {
	texts := []string{
		"one\n\ntwo\n\nthree\n\nfour\n\nfive",
		strings.Repeat("word ", 100) + "\n\n" + strings.Repeat("more ", 300) + "\n\nend",
		"\n\nleading and trailing\n\n",
	}
	for _, text := range texts {
		chunks := ChunkText(text, 40)
		if got := strings.Join(chunks, ParagraphSeparator); got != text {
			t.Fatalf("reconstruction mismatch:\ngot  %q\nwant %q", got, text)
		}
		for _, chunk := range chunks {
			if utf8.RuneCountInString(chunk) > 40 && strings.Contains(chunk, ParagraphSeparator) {
				t.Fatalf("chunk %q exceeds max length while grouping paragraphs", chunk)
			}
		}
	}
}

func TestNewFragments(t *testing.T) {
	text := "aaaa\n\nbbbb\n\ncccc"
	fragments, err := NewFragments("doc-1", 2, text, 10, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fragments) != 2 {
		t.Fatalf("expected 2 fragments, got %d", len(fragments))
	}

	first, second := fragments[0], fragments[1]
	if first.ID != "doc-1-p2-3" || second.ID != "doc-1-p2-4" {
		t.Errorf("unexpected ids %q %q", first.ID, second.ID)
	}
	if first.Start != 0 || first.End != 10 {
		t.Errorf("unexpected first span [%d,%d)", first.Start, first.End)
	}
	if second.Start != 10 || second.End != 14 {
		t.Errorf("unexpected second span [%d,%d)", second.Start, second.End)
	}
	if first.DocID != "doc-1" || first.Page != 2 {
		t.Errorf("unexpected provenance %+v", first)
	}
}

func TestNewFragmentsSingleSpan(t *testing.T) {
	fragments, err := NewFragments("doc-1", 1, "Orders are placed by customers.", 1200, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fragments) != 1 {
		t.Fatalf("expected 1 fragment, got %d", len(fragments))
	}
	if fragments[0].Start != 0 || fragments[0].End != 31 {
		t.Fatalf("expected span [0,31), got [%d,%d)", fragments[0].Start, fragments[0].End)
	}
}

func TestNewFragmentsRejectsNonPositiveMax(t *testing.T) {
	if _, err := NewFragments("doc-1", 1, "text", 0, 0); err == nil {
		t.Fatal("expected error for zero max length")
	}
}

func TestFragmentPages(t *testing.T) {
	pages := []string{"first page", "   ", "third page"}
	fragments, err := FragmentPages("doc-9", pages, 1200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var ids []string
	for _, f := range fragments {
		ids = append(ids, f.ID)
	}
	want := []string{"doc-9-p1-0", "doc-9-p3-1"}
	if !reflect.DeepEqual(ids, want) {
		t.Fatalf("got ids %v, want %v", ids, want)
	}
}
