package driven

import "context"

// Recogniser extracts text from an image.
// Implementations talk to a vision model; callers treat the result as
// untrusted OCR output to be parsed and validated.
type Recogniser interface {
	// ExtractText returns the raw text recognised in the image.
	ExtractText(ctx context.Context, imagePath string) (string, error)
}
