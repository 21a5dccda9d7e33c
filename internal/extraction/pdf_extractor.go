package extraction

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

var errNullPage = errors.New("page has no content stream")

// pdfDocument is the slice of a parsed PDF the extractor needs.
type pdfDocument interface {
	NumPage() int
	PageText(index int) (string, error)
	Close() error
}

type pdfOpener func(filePath string) (pdfDocument, error)

type ledongthucDocument struct {
	file   *os.File
	reader *pdf.Reader
}

func openLedongthucPDF(filePath string) (doc pdfDocument, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	f, r, err := pdf.Open(filePath)
	if err != nil {
		return nil, err
	}
	return &ledongthucDocument{file: f, reader: r}, nil
}

func (d *ledongthucDocument) NumPage() int { return d.reader.NumPage() }

func (d *ledongthucDocument) PageText(index int) (string, error) {
	page := d.reader.Page(index)
	if page.V.IsNull() {
		return "", errNullPage
	}
	return page.GetPlainText(nil)
}

func (d *ledongthucDocument) Close() error { return d.file.Close() }

type pdfExtractor struct {
	open   pdfOpener
	logger *zap.Logger
}

func NewPDFExtractor(logger *zap.Logger) TextExtractor {
	return newPDFExtractor(openLedongthucPDF, logger)
}

func newPDFExtractor(open pdfOpener, logger *zap.Logger) *pdfExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &pdfExtractor{open: open, logger: logger.Named("pdf")}
}

func (e *pdfExtractor) Name() string { return "PDFExtractor" }

func (e *pdfExtractor) SupportsFileType(ext string) bool {
	return NormalizeExtension(ext) == "pdf"
}

func (e *pdfExtractor) ExtractText(filePath string) ExtractedText {
	if _, res := checkFile(filePath); res != nil {
		e.logger.Warn("pdf file unavailable", zap.String("path", filePath), zap.String("error", res.Error))
		return *res
	}

	doc, err := e.open(filePath)
	if err != nil {
		e.logger.Error("failed to open PDF", zap.String("path", filePath), zap.Error(err))
		return failed("Failed to extract text from PDF: %v", err)
	}
	defer doc.Close()

	totalPages := doc.NumPage()
	if totalPages == 0 {
		e.logger.Warn("PDF has no pages", zap.String("path", filePath))
		return failed("PDF file has no pages")
	}

	pages := make([]string, 0, totalPages)
	for pageIndex := 1; pageIndex <= totalPages; pageIndex++ {
		text, err := e.pageText(doc, pageIndex)
		if err != nil {
			// One broken page must not sink the whole document.
			e.logger.Warn("skipping unreadable page", zap.Int("page", pageIndex), zap.Error(err))
			continue
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		pages = append(pages, text)
	}

	fullText := strings.Join(pages, "\n\n")
	if strings.TrimSpace(fullText) == "" {
		e.logger.Warn("no readable text in PDF", zap.String("path", filePath))
		return failed("No readable text found in PDF")
	}

	e.logger.Debug("extracted PDF text",
		zap.Int("pages", totalPages),
		zap.Int("pages_with_text", len(pages)),
		zap.Int("characters", len(fullText)),
	)
	return succeeded(fullText)
}

// pageText converts a panic inside the PDF library into a page error.
func (e *pdfExtractor) pageText(doc pdfDocument, index int) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("page %d: %v", index, r)
		}
	}()
	return doc.PageText(index)
}
