//go:build !cgo

package ocr

import "context"

// Tesseract needs cgo; without it every call fails with ErrUnavailable.
type Tesseract struct {
	TessdataPrefix string
}

func NewTesseract() *Tesseract {
	return &Tesseract{}
}

func (t *Tesseract) Recognize(context.Context, string, []string) (string, error) {
	return "", ErrUnavailable
}
