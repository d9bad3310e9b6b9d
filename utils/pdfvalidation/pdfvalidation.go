package pdfvalidation

import (
	"bytes"
	"fmt"
	"os"

	"github.com/ledongthuc/pdf"
)

// PDFLimits defines the validation limits for PDF uploads
type PDFLimits struct {
	MaxFileSize int64 // Maximum file size in bytes, inclusive
	MaxPages    int   // Maximum number of pages
}

// ResourceLimits apply to PDFs attached to learning resources
var ResourceLimits = PDFLimits{
	MaxFileSize: 10 << 20,
	MaxPages:    2000,
}

var pdfHeader = []byte("%PDF-")

// ValidationResult contains the result of PDF validation
type ValidationResult struct {
	Valid     bool
	PageCount int
	FileSize  int64
	Error     string
}

// ValidateFile reads a stored file and validates it against the given limits
func ValidateFile(path string, limits PDFLimits) (*ValidationResult, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return ValidateBytes(content, limits)
}

// ValidateBytes validates PDF content bytes against the given limits
func ValidateBytes(content []byte, limits PDFLimits) (*ValidationResult, error) {
	result := &ValidationResult{
		FileSize: int64(len(content)),
	}

	// 1. Validate file size
	if limits.MaxFileSize > 0 && result.FileSize > limits.MaxFileSize {
		result.Error = fmt.Sprintf("File size exceeds maximum allowed size of %d bytes", limits.MaxFileSize)
		return result, nil
	}

	// 2. Validate PDF header
	if !bytes.HasPrefix(content, pdfHeader) {
		result.Error = "Invalid PDF file: missing PDF header"
		return result, nil
	}

	// 3. Get page count
	pageCount, err := getPDFPageCount(content)
	if err != nil {
		result.Error = fmt.Sprintf("Failed to read PDF: %v", err)
		return result, nil
	}

	result.PageCount = pageCount

	// 4. Validate page count
	if pageCount == 0 {
		result.Error = "PDF has no pages"
		return result, nil
	}

	if limits.MaxPages > 0 && pageCount > limits.MaxPages {
		result.Error = fmt.Sprintf("PDF has %d pages, which exceeds the maximum of %d pages", pageCount, limits.MaxPages)
		return result, nil
	}

	result.Valid = true
	return result, nil
}

// sanitizePDF cuts everything after the last %%EOF marker, trailing
// whitespace included, so the parser finds the trailer at the very end
func sanitizePDF(content []byte) []byte {
	eofMarker := []byte("%%EOF")
	lastEOF := bytes.LastIndex(content, eofMarker)
	if lastEOF == -1 {
		return content
	}
	return content[:lastEOF+len(eofMarker)]
}

// getPDFPageCount returns the number of pages in a PDF.
// The parser panics on some malformed inputs, so panics become errors.
func getPDFPageCount(content []byte) (count int, err error) {
	defer func() {
		if r := recover(); r != nil {
			count = 0
			err = fmt.Errorf("malformed PDF: %v", r)
		}
	}()

	content = sanitizePDF(content)
	pdfReader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return 0, fmt.Errorf("failed to parse PDF: %w", err)
	}

	return pdfReader.NumPage(), nil
}
