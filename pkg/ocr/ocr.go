/*
Package ocr imports text from images of printed Bangla.

Recognition is behind the Engine interface. Tesseract (through gosseract)
is the default engine in cgo builds; other builds get an engine that
always reports ErrUnavailable. Images can optionally be cleaned up with
imaging before recognition.
*/
package ocr

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bastiangx/shohayok/internal/utils"
	"github.com/charmbracelet/log"
)

var (
	// ErrUnavailable means no OCR engine is compiled in.
	ErrUnavailable = errors.New("ocr engine unavailable")
	// ErrUnsupportedImage is returned for files outside SupportedExtensions.
	ErrUnsupportedImage = errors.New("unsupported image type")
)

// SupportedExtensions are the image types offered for import.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff"}

// DefaultLanguages is Bangla with English for mixed text.
var DefaultLanguages = []string{"ben", "eng"}

// Engine recognizes text in an image file.
type Engine interface {
	Recognize(ctx context.Context, imagePath string, languages []string) (string, error)
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(ctx context.Context, imagePath string, languages []string) (string, error)

func (f EngineFunc) Recognize(ctx context.Context, imagePath string, languages []string) (string, error) {
	return f(ctx, imagePath, languages)
}

// Options configure an Importer.
type Options struct {
	Languages  []string
	Preprocess bool
	// Threshold binarizes preprocessed images at this gray level; 0 keeps gray.
	Threshold uint8
}

// Importer validates an image, optionally preprocesses it, and runs the engine.
type Importer struct {
	engine     Engine
	languages  []string
	preprocess bool
	threshold  uint8
}

// NewImporter returns an importer. A nil engine uses Tesseract.
func NewImporter(engine Engine, opts Options) *Importer {
	if engine == nil {
		engine = NewTesseract()
	}
	langs := opts.Languages
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	return &Importer{
		engine:     engine,
		languages:  langs,
		preprocess: opts.Preprocess,
		threshold:  opts.Threshold,
	}
}

// CheckImage reports whether path names a readable image of a supported type.
func CheckImage(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(SupportedExtensions, ext) {
		return fmt.Errorf("%w: %q", ErrUnsupportedImage, ext)
	}
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

// ExtractErr returns the recognized text or the failure.
func (im *Importer) ExtractErr(ctx context.Context, imagePath string) (string, error) {
	if err := CheckImage(imagePath); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path := imagePath
	if im.preprocess {
		prepared, cleanup, err := Preprocess(imagePath, im.threshold)
		if err != nil {
			return "", fmt.Errorf("preprocess: %w", err)
		}
		defer cleanup()
		path = prepared
	}

	text, err := im.engine.Recognize(ctx, path, im.languages)
	if err != nil {
		return "", err
	}
	log.Debugf("OCR read %d bytes from %s", len(text), filepath.Base(imagePath))
	if text != "" && !utils.ContainsBengali(text) {
		log.Debugf("OCR result for %s has no Bengali text, languages=%v", filepath.Base(imagePath), im.languages)
	}
	return text, nil
}

// Extract is ExtractErr with any failure turned into the text
// "Error: <cause>", which is what gets inserted into the buffer.
func (im *Importer) Extract(ctx context.Context, imagePath string) string {
	text, err := im.ExtractErr(ctx, imagePath)
	if err != nil {
		log.Warnf("OCR failed for %s: %v", imagePath, err)
		return ErrorText(err)
	}
	return text
}

// ErrorText formats an OCR failure as inline buffer text.
func ErrorText(err error) string {
	return "Error: " + err.Error()
}
