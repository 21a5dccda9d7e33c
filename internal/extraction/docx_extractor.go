package extraction

import (
	"archive/zip"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
)

const (
	docxBodyPart  = "word/document.xml"
	wordNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
)

type docxExtractor struct {
	logger *zap.Logger
}

func NewDOCXExtractor(logger *zap.Logger) TextExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &docxExtractor{logger: logger.Named("docx")}
}

func (e *docxExtractor) Name() string { return "DOCXExtractor" }

func (e *docxExtractor) SupportsFileType(ext string) bool {
	return NormalizeExtension(ext) == "docx"
}

func (e *docxExtractor) ExtractText(filePath string) ExtractedText {
	if _, res := checkFile(filePath); res != nil {
		e.logger.Warn("docx file unavailable", zap.String("path", filePath), zap.String("error", res.Error))
		return *res
	}

	blocks, err := readDOCX(filePath)
	if err != nil {
		e.logger.Error("failed to parse DOCX", zap.String("path", filePath), zap.Error(err))
		return failed("Failed to extract text from DOCX: %v", err)
	}

	fullText := strings.Join(blocks, "\n")
	if strings.TrimSpace(fullText) == "" {
		e.logger.Warn("no readable text in DOCX", zap.String("path", filePath))
		return failed("No readable text found in DOCX file")
	}

	e.logger.Debug("extracted DOCX text", zap.Int("blocks", len(blocks)), zap.Int("characters", len(fullText)))
	return succeeded(fullText)
}

func readDOCX(filePath string) ([]string, error) {
	archive, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer archive.Close()

	for _, f := range archive.File {
		if f.Name != docxBodyPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", docxBodyPart, err)
		}
		defer rc.Close()
		return parseDocumentXML(rc)
	}
	return nil, fmt.Errorf("%s not found in archive", docxBodyPart)
}

// parseDocumentXML returns the non-empty body paragraphs in document order,
// followed by one line per non-empty row of each top-level table.
func parseDocumentXML(r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []string
		rows       []string
		rowCells   []string
		cellParas  []string
		para       strings.Builder
		tableDepth int
		inText     bool
		inProps    bool
	)

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", docxBodyPart, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tr":
				if tableDepth == 1 {
					rowCells = nil
				}
			case "tc":
				if tableDepth == 1 {
					cellParas = nil
				}
			case "p":
				para.Reset()
			case "t":
				inText = true
			case "pPr":
				inProps = true
			case "tab":
				// w:tab inside paragraph properties is a tab stop, not text.
				if !inProps {
					para.WriteByte('\t')
				}
			case "br", "cr":
				para.WriteByte('\n')
			}
		case xml.EndElement:
			if t.Name.Space != wordNamespace {
				continue
			}
			switch t.Name.Local {
			case "tbl":
				tableDepth--
			case "tr":
				if tableDepth == 1 && len(rowCells) > 0 {
					rows = append(rows, strings.Join(rowCells, " | "))
				}
			case "tc":
				if tableDepth == 1 {
					if cell := strings.TrimSpace(strings.Join(cellParas, "\n")); cell != "" {
						rowCells = append(rowCells, cell)
					}
				}
			case "p":
				if tableDepth > 0 {
					cellParas = append(cellParas, para.String())
				} else if text := strings.TrimSpace(para.String()); text != "" {
					paragraphs = append(paragraphs, text)
				}
				para.Reset()
			case "t":
				inText = false
			case "pPr":
				inProps = false
			}
		case xml.CharData:
			if inText {
				para.Write(t)
			}
		}
	}

	return append(paragraphs, rows...), nil
}
