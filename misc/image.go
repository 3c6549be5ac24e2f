package misc

import (
	"fmt"
	"image"
	"image/png"
	"os"

	"GrayscaleMandelbrot/mandelbrot"
)

// WriteImage serializes a finished pixel buffer as an 8-bit grayscale png.
// The buffer layout (one byte per pixel, row major) matches image.Gray's Pix
// layout exactly so no conversion pass is needed.
func WriteImage(fileName string, pixels []byte, bounds mandelbrot.Bounds) error {
	if len(pixels) != bounds.Pixels() {
		return fmt.Errorf("pixel buffer holds %d pixels but bounds %s needs %d", len(pixels), bounds, bounds.Pixels())
	}

	gray := image.Gray{
		Pix:    pixels,
		Stride: bounds.Width,
		Rect:   image.Rect(0, 0, bounds.Width, bounds.Height),
	}

	file, err := os.Create(fileName)
	if err != nil {
		return fmt.Errorf("unable to create image %s - %s", fileName, err)
	}
	if err = png.Encode(file, &gray); err != nil {
		file.Close()
		return fmt.Errorf("unable to encode image %s - %s", fileName, err)
	}
	if err = file.Close(); err != nil {
		return fmt.Errorf("unable to close image %s - %s", fileName, err)
	}

	return nil
}
