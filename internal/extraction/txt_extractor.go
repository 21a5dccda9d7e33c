package extraction

import (
	"bytes"
	"os"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

type txtDecoder struct {
	name   string
	decode func(data []byte) (string, bool)
}

// Encodings are tried in this order and the first clean decode wins.
var txtDecoders = []txtDecoder{
	{name: "utf-8", decode: decodeUTF8},
	{name: "utf-16", decode: decodeUTF16},
	{name: "iso-8859-1", decode: decodeCharmap(charmap.ISO8859_1)},
	{name: "cp1252", decode: decodeCharmap(charmap.Windows1252)},
}

// newlineNormalizer maps CRLF and lone CR line endings to LF.
var newlineNormalizer = strings.NewReplacer("\r\n", "\n", "\r", "\n")

type txtExtractor struct {
	logger *zap.Logger
}

func NewTXTExtractor(logger *zap.Logger) TextExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &txtExtractor{logger: logger.Named("txt")}
}

func (e *txtExtractor) Name() string { return "TXTExtractor" }

func (e *txtExtractor) SupportsFileType(ext string) bool {
	return NormalizeExtension(ext) == "txt"
}

func (e *txtExtractor) ExtractText(filePath string) ExtractedText {
	if _, res := checkFile(filePath); res != nil {
		e.logger.Warn("text file unavailable", zap.String("path", filePath), zap.String("error", res.Error))
		return *res
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		e.logger.Error("failed to read text file", zap.String("path", filePath), zap.Error(err))
		return failed("Failed to read text file: %v", err)
	}

	for _, dec := range txtDecoders {
		content, ok := dec.decode(data)
		if !ok {
			e.logger.Debug("decode failed, trying next encoding", zap.String("encoding", dec.name))
			continue
		}
		if strings.TrimSpace(content) == "" {
			return failed("Text file is empty")
		}
		content = newlineNormalizer.Replace(content)
		e.logger.Debug("decoded text file",
			zap.String("encoding", dec.name),
			zap.Int("characters", utf8.RuneCountInString(content)),
		)
		return succeeded(content)
	}

	e.logger.Error("no supported encoding matched", zap.String("path", filePath))
	return failed("Could not decode text file with any supported encoding")
}

func decodeUTF8(data []byte) (string, bool) {
	if !utf8.Valid(data) {
		return "", false
	}
	return strings.TrimPrefix(string(data), "\ufeff"), true
}

// decodeUTF16 only accepts input that carries a byte order mark. Without one
// any even-length byte stream would decode into noise.
func decodeUTF16(data []byte) (string, bool) {
	if len(data) < 2 || len(data)%2 != 0 {
		return "", false
	}
	if !bytes.HasPrefix(data, []byte{0xFF, 0xFE}) && !bytes.HasPrefix(data, []byte{0xFE, 0xFF}) {
		return "", false
	}
	out, err := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder().Bytes(data)
	if err != nil || bytes.ContainsRune(out, utf8.RuneError) {
		return "", false
	}
	return string(out), true
}

func decodeCharmap(cm *charmap.Charmap) func([]byte) (string, bool) {
	return func(data []byte) (string, bool) {
		out, err := cm.NewDecoder().Bytes(data)
		if err != nil {
			return "", false
		}
		return string(out), true
	}
}
