package loader

import (
	"regexp"
	"strings"

	"github.com/OFFIS-RIT/stormgraph/internal/util"
)

var reNewlines = regexp.MustCompile(`\n{3,}`)

// normalizeText collapses runs of blank lines so paragraphs are separated by
// exactly one empty line.
func normalizeText(text string) string {
	text = strings.TrimSpace(util.SanitizeText(text))
	return reNewlines.ReplaceAllString(text, "\n\n")
}

// parseText treats form feeds as page breaks.
func parseText(content []byte) []string {
	return splitPages(string(content))
}

func splitPages(text string) []string {
	raw := strings.Split(text, "\f")
	pages := make([]string, 0, len(raw))
	for _, page := range raw {
		pages = append(pages, normalizeText(page))
	}
	// pdftotext terminates the last page with a form feed.
	for len(pages) > 1 && pages[len(pages)-1] == "" {
		pages = pages[:len(pages)-1]
	}
	return pages
}
