package loader

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func TestFormatFromName(t *testing.T) {
	tests := []struct {
		name    string
		want    Format
		wantErr bool
	}{
		{"Requirements.PDF", FormatPDF, false},
		{"notes.docx", FormatDocx, false},
		{"readme.txt", FormatText, false},
		{"readme.md", FormatText, false},
		{"sheet.xlsx", "", true},
		{"noext", "", true},
	}

	for _, tt := range tests {
		got, err := FormatFromName(tt.name)
		if tt.wantErr {
			if !errors.Is(err, ErrUnsupportedFormat) {
				t.Fatalf("FormatFromName(%q) error = %v, want ErrUnsupportedFormat", tt.name, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("FormatFromName(%q) unexpected error: %v", tt.name, err)
		}
		if got != tt.want {
			t.Fatalf("FormatFromName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestExtractPagesText(t *testing.T) {
	content := []byte("First page.\r\n\r\n\r\n\r\nStill first.\fSecond page.\f")

	pages, err := ExtractPages(context.Background(), "doc.txt", content)
	if err != nil {
		t.Fatalf("ExtractPages returned error: %v", err)
	}

	want := []string{"First page.\n\nStill first.", "Second page."}
	if !reflect.DeepEqual(pages, want) {
		t.Fatalf("pages = %q, want %q", pages, want)
	}
}

func TestExtractPagesDocx(t *testing.T) {
	doc := `<?xml version="1.0" encoding="UTF-8"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>Customers place orders.</w:t></w:r></w:p>
<w:p><w:del><w:r><w:t>Removed text.</w:t></w:r></w:del><w:r><w:t>Payments are captured.</w:t></w:r></w:p>
<w:tbl><w:tr><w:tc><w:p><w:r><w:t>A</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>B</w:t></w:r></w:p></w:tc></w:tr></w:tbl>
</w:body>
</w:document>`

	pages, err := ExtractPages(context.Background(), "doc.docx", buildDocx(t, doc))
	if err != nil {
		t.Fatalf("ExtractPages returned error: %v", err)
	}

	want := []string{"Customers place orders.\n\nPayments are captured.\n\nA\tB"}
	if !reflect.DeepEqual(pages, want) {
		t.Fatalf("pages = %q, want %q", pages, want)
	}
}

func TestExtractPagesDocxMissingDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("word/styles.xml"); err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}

	if _, err := ExtractPages(context.Background(), "doc.docx", buf.Bytes()); err == nil {
		t.Fatal("expected error for docx without document.xml")
	}
}

func TestExtractPagesUnsupported(t *testing.T) {
	_, err := ExtractPages(context.Background(), "image.png", []byte{0x89})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestSplitPagesKeepsEmptyDocument(t *testing.T) {
	pages := splitPages("")
	if len(pages) != 1 || pages[0] != "" {
		t.Fatalf("pages = %q, want one empty page", pages)
	}
}
