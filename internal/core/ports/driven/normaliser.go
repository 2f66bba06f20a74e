package driven

import "context"

// Normaliser turns raw filing bytes into cleaned text ready for segmentation.
type Normaliser interface {
	// SupportedExtensions returns the lower-case file extensions handled, e.g. ".htm".
	SupportedExtensions() []string

	// Normalise returns the cleaned text of a raw document.
	Normalise(ctx context.Context, raw []byte) (string, error)
}
