package loader

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

const docXMLMax = 50 << 20

// parseDocx extracts the visible text of word/document.xml. Deleted runs are
// dropped, paragraphs end with a newline and table cells are tab separated.
func parseDocx(content []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("failed to open docx: %w", err)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", fmt.Errorf("document.xml not found in docx")
	}
	if docFile.UncompressedSize64 > docXMLMax {
		return "", fmt.Errorf("document.xml too large: %d bytes", docFile.UncompressedSize64)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open document.xml: %w", err)
	}
	defer rc.Close()

	dec := xml.NewDecoder(io.LimitReader(rc, docXMLMax))

	var sb strings.Builder
	var (
		inText   bool
		delDepth int
		inTable  bool
		cellIdx  int
	)
	visible := func() bool { return delDepth == 0 }

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to parse XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "del":
				delDepth++
			case "t":
				inText = true
			case "tab":
				if visible() {
					sb.WriteByte('\t')
				}
			case "br", "cr":
				if visible() {
					sb.WriteByte('\n')
				}
			case "tbl":
				inTable = true
				cellIdx = 0
			case "tr":
				cellIdx = 0
			case "tc":
				if inTable && visible() {
					if cellIdx > 0 {
						sb.WriteByte('\t')
					}
					cellIdx++
				}
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				// Paragraphs are separated by an empty line so the chunker
				// can split on them; table cells stay on one line.
				if visible() && !inTable {
					sb.WriteString("\n\n")
				}
			case "tr":
				if visible() {
					sb.WriteByte('\n')
				}
			case "tbl":
				inTable = false
				if visible() {
					sb.WriteString("\n\n")
				}
			case "del":
				if delDepth > 0 {
					delDepth--
				}
			}

		case xml.CharData:
			if visible() && inText {
				sb.Write(t)
			}
		}
	}

	return normalizeText(sb.String()), nil
}
