package document

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/hrcore/talent-match/internal/core/domain"
	"github.com/hrcore/talent-match/internal/core/ports"
)

var (
	xmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	spaceRunPattern  = regexp.MustCompile(`[ \t\r\f\v]+`)
	lineBreakPattern = regexp.MustCompile(`[ \t]*\n[\s]*`)
)

// Extractor pulls plain text out of stored resume binaries. PDF goes through
// the pdf library; DOCX is unpacked and tag-stripped, which loses layout but
// keeps every run of visible text.
type Extractor struct {
	storage ports.ObjectStorage
}

func New(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, fileURL string) (string, error) {
	reader, err := e.storage.Open(ctx, fileURL)
	if err != nil {
		return "", fmt.Errorf("open stored file %s: %w", fileURL, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read stored file %s: %w", fileURL, err)
	}

	switch strings.ToLower(filepath.Ext(fileURL)) {
	case ".pdf":
		return extractPDF(data)
	case ".docx":
		return extractDocx(data)
	default:
		return "", domain.WrapError(domain.ErrUnsupportedFormat, "extract text",
			fmt.Errorf("only pdf and docx are supported, got %s", filepath.Ext(fileURL)))
	}
}

func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}
	return normalizeWhitespace(buf.String()), nil
}

func extractDocx(data []byte) (string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx archive: %w", err)
	}

	var docXML []byte
	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return "", fmt.Errorf("open document.xml: %w", err)
		}
		docXML, err = io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return "", fmt.Errorf("read document.xml: %w", err)
		}
		break
	}
	if len(docXML) == 0 {
		return "", errors.New("docx has no document.xml")
	}

	content := string(docXML)
	content = strings.ReplaceAll(content, "</w:p>", "\n")
	content = strings.ReplaceAll(content, "<w:tab/>", "\t")
	content = xmlTagPattern.ReplaceAllString(content, " ")
	return normalizeWhitespace(content), nil
}

func normalizeWhitespace(s string) string {
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = spaceRunPattern.ReplaceAllString(s, " ")
	s = lineBreakPattern.ReplaceAllString(s, "\n")
	return strings.TrimSpace(s)
}
