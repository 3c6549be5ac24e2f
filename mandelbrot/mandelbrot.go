package mandelbrot

import "fmt"

// maxIterations is the escape iteration budget per pixel. It doubles as the
// brightness scale so a pixel value always fits in one byte.
const maxIterations = 255

type Bounds struct {
	Height int
	Width  int
}

func (b Bounds) Pixels() int {
	return b.Width * b.Height
}

func (b Bounds) String() string {
	return fmt.Sprintf("%dx%d", b.Width, b.Height)
}

// EscapeTime iterates z = z*z + c from zero and reports the 0-based iteration
// at which |z| provably escaped the set, or diverged=false when the point stayed
// bounded for all limit iterations and is likely a member of the set.
// https://en.wikipedia.org/wiki/Plotting_algorithms_for_the_Mandelbrot_set#Escape_time_algorithms
func EscapeTime(c complex128, limit int) (iteration int, diverged bool) {
	var z complex128
	for i := 0; i < limit; i++ {
		z = z*z + c

		// Compare against the squared bailout radius (|z| > 2 means the point
		// is gone for good) so we never pay for a square root in the hot loop.
		if real(z)*real(z)+imag(z)*imag(z) > 4.0 {
			return i, true
		}
	}
	return 0, false
}

func PixelToPoint(bounds Bounds, column int, row int, upperLeft complex128, lowerRight complex128) complex128 {
	/*
	 * Convert the (column, row) point on the image to a point on the complex plane
	 *
	 * - The viewport width and height are signed differences of the two corners,
	 *   so any corner pairing the caller supplies still maps consistently
	 * - Pixel rows count downward from the top of the image while the imaginary
	 *   axis grows upward, so row 0 sits at the maximum imaginary value and the
	 *   imaginary component is subtracted as the row increases
	 */
	width := real(lowerRight) - real(upperLeft)
	height := imag(upperLeft) - imag(lowerRight)

	return complex(
		real(upperLeft)+float64(column)/float64(bounds.Width)*width,
		imag(upperLeft)-float64(row)/float64(bounds.Height)*height)
}

// RenderBand fills pixels with grayscale intensities for one horizontal strip
// of the image. The bounds and corners describe the strip itself, not the full
// image; callers hand each concurrent render an exclusive slice of the buffer.
func RenderBand(pixels []byte, bounds Bounds, upperLeft complex128, lowerRight complex128) {
	if len(pixels) != bounds.Pixels() {
		panic(fmt.Sprintf("band buffer holds %d pixels but bounds %s needs %d", len(pixels), bounds, bounds.Pixels()))
	}

	for row := 0; row < bounds.Height; row++ {
		for column := 0; column < bounds.Width; column++ {
			point := PixelToPoint(bounds, column, row, upperLeft, lowerRight)

			// Points inside the set render black. The faster a point escapes
			// the closer to white it renders.
			iteration, diverged := EscapeTime(point, maxIterations)
			if diverged {
				pixels[column+bounds.Width*row] = byte(maxIterations - iteration)
			} else {
				pixels[column+bounds.Width*row] = 0
			}
		}
	}
}
