package service

import (
	"bytes"
	"os"
	"strings"

	"github.com/gomutex/godocx"
	"github.com/ledongthuc/pdf"
)

// maxContentTextChars caps the plain-text payload handed to the extraction LLM, per
// priority 5: UTF-8 decode capped at 8000 chars for non-PDF formats.
const maxContentTextChars = 8000

// maxPDFPages limits PDF extraction to the first two pages — a CV's contact details
// are always on page one, and reading the whole document wastes tokens on an LLM call
// that only needs a name, email and phone number.
const maxPDFPages = 2

// extractText pulls plain text out of a CV attachment for the content-extraction pass
// of the matching cascade (priority 5). contentType drives which extractor runs;
// anything that isn't recognizably a PDF or DOCX falls back to a capped UTF-8 decode.
func extractText(fileName, contentType string, data []byte) (string, error) {
	lowerName := strings.ToLower(fileName)
	switch {
	case contentType == "application/pdf" || strings.HasSuffix(lowerName, ".pdf"):
		return extractPDFText(data)
	case contentType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document" ||
		strings.HasSuffix(lowerName, ".docx"):
		return extractDocxText(data)
	default:
		return capText(string(data), maxContentTextChars), nil
	}
}

func extractPDFText(data []byte) (string, error) {
	reader := bytes.NewReader(data)
	pdfReader, err := pdf.NewReader(reader, int64(len(data)))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	pages := pdfReader.NumPage()
	if pages > maxPDFPages {
		pages = maxPDFPages
	}
	for i := 1; i <= pages; i++ {
		page := pdfReader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return capText(sb.String(), maxContentTextChars), nil
}

// extractDocxText is a supplemented format beyond the PDF-only reference: real CV
// attachments are a mix of formats and godocx's reader only opens from a filesystem
// path, so the bytes are staged to a temp file and removed once parsed.
func extractDocxText(data []byte) (string, error) {
	tmp, err := os.CreateTemp("", "cv-*.docx")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := tmp.Write(data); err != nil {
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	doc, err := godocx.OpenDocument(tmp.Name())
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, child := range doc.Document.Body.Children {
		if child.Paragraph == nil {
			continue
		}
		for _, run := range child.Paragraph.Runs() {
			sb.WriteString(run.Text())
		}
		sb.WriteString("\n")
	}
	return capText(sb.String(), maxContentTextChars), nil
}

func capText(s string, max int) string {
	s = strings.ToValidUTF8(s, "")
	if len(s) <= max {
		return s
	}
	return s[:max]
}
