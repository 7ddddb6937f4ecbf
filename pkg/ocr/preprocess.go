package ocr

import (
	"fmt"
	"image"
	"os"

	"github.com/anthonynsimon/bild/segment"
	"github.com/disintegration/imaging"
)

// minWidth is the width below which images are upscaled; Tesseract
// reads Bangla conjuncts poorly at small glyph sizes.
const minWidth = 1000

// Preprocess writes a grayscale, contrast-boosted copy of the image to a
// temp PNG, doubling its size when it is narrow. A non-zero threshold
// also binarizes it to black and white. The cleanup func removes the copy.
func Preprocess(imagePath string, threshold uint8) (string, func(), error) {
	img, err := imaging.Open(imagePath, imaging.AutoOrientation(true))
	if err != nil {
		return "", nil, fmt.Errorf("failed to open image: %w", err)
	}

	gray := imaging.Grayscale(img)
	gray = imaging.AdjustContrast(gray, 20)
	if w := gray.Bounds().Dx(); w > 0 && w < minWidth {
		gray = imaging.Resize(gray, w*2, 0, imaging.Lanczos)
	}
	var out image.Image = gray
	if threshold > 0 {
		out = segment.Threshold(gray, threshold)
	}

	tmp, err := os.CreateTemp("", "shohayok-ocr-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	path := tmp.Name()
	cleanup := func() { os.Remove(path) }

	if err := imaging.Encode(tmp, out, imaging.PNG); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, fmt.Errorf("failed to encode temp image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, err
	}
	return path, cleanup, nil
}
