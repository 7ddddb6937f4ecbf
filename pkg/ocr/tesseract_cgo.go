//go:build cgo

package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract runs recognition through libtesseract.
type Tesseract struct {
	// TessdataPrefix overrides the traineddata directory when set.
	TessdataPrefix string
}

// NewTesseract returns an engine using the system tessdata.
func NewTesseract() *Tesseract {
	return &Tesseract{}
}

func (t *Tesseract) Recognize(ctx context.Context, imagePath string, languages []string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if t.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(t.TessdataPrefix); err != nil {
			return "", fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}
	if err := client.SetLanguage(languages...); err != nil {
		return "", fmt.Errorf("failed to set language %s: %w", strings.Join(languages, "+"), err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}
	return text, nil
}
