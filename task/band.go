package task

import (
	"fmt"

	"GrayscaleMandelbrot/mandelbrot"
)

// Band describes one horizontal strip of the image: which rows it covers and
// the sub-rectangle of the complex plane those rows map onto. A band carries
// everything a worker needs to render it without consulting shared state.
type Band struct {
	Height         int
	Index          int
	LowerRightImag float64
	LowerRightReal float64
	Top            int
	UpperLeftImag  float64
	UpperLeftReal  float64
	Width          int
}

func (b *Band) Bounds() mandelbrot.Bounds {
	return mandelbrot.Bounds{Width: b.Width, Height: b.Height}
}

func (b *Band) UpperLeft() complex128 {
	return complex(b.UpperLeftReal, b.UpperLeftImag)
}

func (b *Band) LowerRight() complex128 {
	return complex(b.LowerRightReal, b.LowerRightImag)
}

func (b *Band) String() string {
	output := "{Band "
	output += fmt.Sprintf("Index: %d ", b.Index)
	output += fmt.Sprintf("Rows: %d-%d ", b.Top, b.Top+b.Height-1)
	output += fmt.Sprintf("Upper Left: %v ", b.UpperLeft())
	output += fmt.Sprintf("Lower Right: %v}", b.LowerRight())
	return output
}

// Partition splits bounds into bandCount non-overlapping row bands that tile
// the image exactly. Every band gets ceil(height/bandCount) rows except the
// last, which is clipped when the height does not divide evenly. Each band's
// corners are derived by pushing its first and one-past-last pixel rows
// through the full-image frame.
func Partition(bounds mandelbrot.Bounds, upperLeft complex128, lowerRight complex128, bandCount int) []Band {
	if bandCount < 1 {
		bandCount = 1
	}
	rowsPerBand := (bounds.Height + bandCount - 1) / bandCount

	bands := make([]Band, 0, bandCount)
	for top := 0; top < bounds.Height; top += rowsPerBand {
		height := rowsPerBand
		if top+height > bounds.Height {
			height = bounds.Height - top
		}

		bandUpperLeft := mandelbrot.PixelToPoint(bounds, 0, top, upperLeft, lowerRight)
		bandLowerRight := mandelbrot.PixelToPoint(bounds, bounds.Width, top+height, upperLeft, lowerRight)

		bands = append(bands, Band{
			Height:         height,
			Index:          len(bands),
			LowerRightImag: imag(bandLowerRight),
			LowerRightReal: real(bandLowerRight),
			Top:            top,
			UpperLeftImag:  imag(bandUpperLeft),
			UpperLeftReal:  real(bandUpperLeft),
			Width:          bounds.Width,
		})
	}
	return bands
}
