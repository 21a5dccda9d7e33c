package extraction

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// ExtractedText is the outcome of a single extraction. Success is true only
// when Text holds something other than whitespace.
type ExtractedText struct {
	Success bool   `json:"success"`
	Text    string `json:"text"`
	Error   string `json:"error,omitempty"`
}

// TextExtractor turns a document on disk into plain text. Implementations
// report every failure through ExtractedText instead of returning an error.
type TextExtractor interface {
	ExtractText(filePath string) ExtractedText
	SupportsFileType(ext string) bool
	Name() string
}

func succeeded(text string) ExtractedText {
	if strings.TrimSpace(text) == "" {
		return failed("No text could be extracted")
	}
	return ExtractedText{Success: true, Text: text}
}

func failed(format string, args ...any) ExtractedText {
	return ExtractedText{Error: fmt.Sprintf(format, args...)}
}

// NormalizeExtension lowercases ext and strips any leading dots, so ".PDF",
// "pdf" and "Pdf" all map to "pdf".
func NormalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(ext), "."))
}

// checkFile reports a missing or unreadable path as a failed extraction.
func checkFile(filePath string) (fs.FileInfo, *ExtractedText) {
	info, err := os.Stat(filePath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res := failed("File not found: %s", filePath)
			return nil, &res
		}
		res := failed("Failed to access file: %v", err)
		return nil, &res
	}
	if info.IsDir() {
		res := failed("File not found: %s", filePath)
		return nil, &res
	}
	return info, nil
}
