package extraction

import "go.uber.org/zap"

type ExtractorFactory interface {
	GetExtractor(ext string) (TextExtractor, bool)
	IsSupported(ext string) bool
	SupportedTypes() []string
}

type extractorFactory struct {
	extractors map[string]TextExtractor
	order      []string
}

// NewExtractorFactory builds the fixed txt/pdf/docx registry.
func NewExtractorFactory(logger *zap.Logger) ExtractorFactory {
	return newExtractorFactory(map[string]TextExtractor{
		"txt":  NewTXTExtractor(logger),
		"pdf":  NewPDFExtractor(logger),
		"docx": NewDOCXExtractor(logger),
	}, []string{"txt", "pdf", "docx"})
}

func newExtractorFactory(extractors map[string]TextExtractor, order []string) *extractorFactory {
	return &extractorFactory{extractors: extractors, order: order}
}

func (f *extractorFactory) GetExtractor(ext string) (TextExtractor, bool) {
	e, ok := f.extractors[NormalizeExtension(ext)]
	return e, ok
}

func (f *extractorFactory) IsSupported(ext string) bool {
	_, ok := f.GetExtractor(ext)
	return ok
}

func (f *extractorFactory) SupportedTypes() []string {
	out := make([]string, len(f.order))
	copy(out, f.order)
	return out
}
