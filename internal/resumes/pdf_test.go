package resumes

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
)

// minimalPDF builds a PDF with the given number of blank pages and a correct xref table.
func minimalPDF(pages int) []byte {
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
	}
	kids := make([]string, pages)
	for i := range kids {
		kids[i] = fmt.Sprintf("%d 0 R", i+3)
	}
	objects = append(objects, fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), pages))
	for i := 0; i < pages; i++ {
		objects = append(objects, "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] >>")
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestPageCount(t *testing.T) {
	for _, pages := range []int{1, 3} {
		got, err := PageCount(minimalPDF(pages))
		if err != nil {
			t.Fatalf("PageCount(%d pages): %v", pages, err)
		}
		if got != pages {
			t.Fatalf("expected %d pages, got %d", pages, got)
		}
	}
}

func TestPageCountRejectsGarbage(t *testing.T) {
	tests := [][]byte{
		nil,
		[]byte("not a pdf"),
		[]byte("%PDF-1.4\n" + strings.Repeat("x", 200)),
	}
	for _, data := range tests {
		if _, err := PageCount(data); err == nil {
			t.Fatalf("expected error for %q", data)
		}
	}
}
