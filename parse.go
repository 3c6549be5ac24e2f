package main

import (
	"fmt"
	"strconv"
	"strings"

	"GrayscaleMandelbrot/mandelbrot"
)

// parseBounds reads image dimensions written as "1000x750". Both sides must
// be positive integers.
func parseBounds(s string) (mandelbrot.Bounds, error) {
	left, right, found := strings.Cut(s, "x")
	if !found {
		return mandelbrot.Bounds{}, fmt.Errorf("%q is not of the form <width>x<height>", s)
	}

	width, err := strconv.Atoi(left)
	if err != nil {
		return mandelbrot.Bounds{}, fmt.Errorf("bad width %q - %s", left, err)
	}
	height, err := strconv.Atoi(right)
	if err != nil {
		return mandelbrot.Bounds{}, fmt.Errorf("bad height %q - %s", right, err)
	}
	if width <= 0 || height <= 0 {
		return mandelbrot.Bounds{}, fmt.Errorf("dimensions %dx%d must both be positive", width, height)
	}

	return mandelbrot.Bounds{Width: width, Height: height}, nil
}

// parseComplex reads a point on the complex plane written as "-1.20,0.35".
func parseComplex(s string) (complex128, error) {
	left, right, found := strings.Cut(s, ",")
	if !found {
		return 0, fmt.Errorf("%q is not of the form <real>,<imaginary>", s)
	}

	re, err := strconv.ParseFloat(left, 64)
	if err != nil {
		return 0, fmt.Errorf("bad real component %q - %s", left, err)
	}
	im, err := strconv.ParseFloat(right, 64)
	if err != nil {
		return 0, fmt.Errorf("bad imaginary component %q - %s", right, err)
	}

	return complex(re, im), nil
}
