package graph

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/OFFIS-RIT/stormgraph/pkg/common"
)

// ParagraphSeparator splits and re-joins paragraphs during chunking.
const ParagraphSeparator = "\n\n"

// DefaultChunkMaxLength is the fragment size limit in characters.
const DefaultChunkMaxLength = 1200

// ChunkText splits text into chunks of at most maxLength characters by
// greedily grouping whole paragraphs. A single paragraph longer than
// maxLength is emitted on its own and never split.
//
// Lengths are counted in runes.
func ChunkText(text string, maxLength int) []string {
	if utf8.RuneCountInString(text) <= maxLength {
		return []string{text}
	}

	sepLen := utf8.RuneCountInString(ParagraphSeparator)
	var chunks []string
	var buffer []string
	bufferLen := 0

	flushChunk := func() {
		if len(buffer) == 0 {
			return
		}
		chunks = append(chunks, strings.Join(buffer, ParagraphSeparator))
		buffer = nil
		bufferLen = 0
	}

	for _, paragraph := range strings.Split(text, ParagraphSeparator) {
		paragraphLen := utf8.RuneCountInString(paragraph)
		if len(buffer) > 0 && bufferLen+sepLen+paragraphLen > maxLength {
			flushChunk()
		}

		if len(buffer) > 0 {
			bufferLen += sepLen
		}
		buffer = append(buffer, paragraph)
		bufferLen += paragraphLen
	}
	flushChunk()

	return chunks
}

// FragmentID formats the id of the n-th fragment of a document.
func FragmentID(docID string, page int, n int) string {
	return fmt.Sprintf("%s-p%d-%d", docID, page, n)
}

// NewFragments chunks the text of one page. Spans start at 0 for every page
// and advance by the length of each emitted chunk. startIndex numbers the
// first fragment so ids stay unique across pages of one document.
func NewFragments(docID string, page int, text string, maxLength int, startIndex int) ([]common.Fragment, error) {
	if maxLength <= 0 {
		return nil, fmt.Errorf("chunk max length must be positive, got %d", maxLength)
	}

	chunks := ChunkText(text, maxLength)
	fragments := make([]common.Fragment, 0, len(chunks))
	offset := 0
	for i, chunk := range chunks {
		length := utf8.RuneCountInString(chunk)
		fragments = append(fragments, common.Fragment{
			ID:    FragmentID(docID, page, startIndex+i),
			DocID: docID,
			Page:  page,
			Start: offset,
			End:   offset + length,
			Text:  chunk,
		})
		offset += length
	}

	return fragments, nil
}

// FragmentPages chunks every page of a document. Pages are numbered from 1
// and whitespace-only pages produce no fragments.
func FragmentPages(docID string, pages []string, maxLength int) ([]common.Fragment, error) {
	var fragments []common.Fragment
	for i, text := range pages {
		if strings.TrimSpace(text) == "" {
			continue
		}
		pageFragments, err := NewFragments(docID, i+1, text, maxLength, len(fragments))
		if err != nil {
			return nil, err
		}
		fragments = append(fragments, pageFragments...)
	}
	return fragments, nil
}
