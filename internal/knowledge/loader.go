package knowledge

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Placeholder stands in for the document when it cannot be read. A
// request must never fail just because the document is missing; the
// model is told instead that no documentation is available.
const Placeholder = "No HR documentation is currently available. Tell the user the knowledge base could not be loaded and suggest contacting the HR department directly."

// Load reads the knowledge document at path. It is called once at
// startup; on any read failure it logs and substitutes Placeholder.
func Load(path string) string {
	text, err := extractText(path)
	if err != nil {
		log.Printf("knowledge document unavailable (%s): %v", path, err)
		return Placeholder
	}
	return text
}

func extractText(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var text string
	var err error
	if ext == ".pdf" {
		text, err = extractPDF(path)
	} else {
		text, err = extractPlain(path)
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("document is empty")
	}
	return text, nil
}

func extractPlain(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func extractPDF(path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var b strings.Builder
	totalPage := reader.NumPage()
	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := reader.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		content, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		b.WriteString(content)
		b.WriteString("\n")
	}

	return b.String(), nil
}
