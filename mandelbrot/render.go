package mandelbrot

import (
	"fmt"
	"sync"
)

// Render plots the viewport between upperLeft and lowerRight into pixels by
// splitting the image into workerCount horizontal bands and rendering every
// band in its own goroutine. Each goroutine owns a disjoint sub-slice of the
// buffer so the bands never touch the same memory; the join barrier is the
// only synchronization the render needs.
//
// A panic inside a band does not abort the other bands but it does make
// Render return an error, so a partially written buffer is never mistaken
// for a finished image.
// renderBand is swapped out in tests to drive the failure path
var renderBand = RenderBand

func Render(pixels []byte, bounds Bounds, upperLeft complex128, lowerRight complex128, workerCount int) error {
	if len(pixels) != bounds.Pixels() {
		panic(fmt.Sprintf("pixel buffer holds %d pixels but bounds %s needs %d", len(pixels), bounds, bounds.Pixels()))
	}
	if workerCount < 1 {
		workerCount = 1
	}

	// The last band picks up the remainder when the height does not divide
	// evenly, so it may be shorter than the others
	rowsPerBand := (bounds.Height + workerCount - 1) / workerCount

	var wait sync.WaitGroup
	var mutex sync.Mutex
	var bandErr error

	for top := 0; top < bounds.Height; top += rowsPerBand {
		height := rowsPerBand
		if top+height > bounds.Height {
			height = bounds.Height - top
		}

		band := pixels[top*bounds.Width : (top+height)*bounds.Width]
		bandBounds := Bounds{Width: bounds.Width, Height: height}

		// The band corners come from mapping the band's first and one-past-last
		// pixel rows through the full-image frame, so each goroutine works from
		// plain values and shares no state with its neighbors
		bandUpperLeft := PixelToPoint(bounds, 0, top, upperLeft, lowerRight)
		bandLowerRight := PixelToPoint(bounds, bounds.Width, top+height, upperLeft, lowerRight)

		wait.Add(1)
		go func(top int, band []byte, bandBounds Bounds, bandUpperLeft complex128, bandLowerRight complex128) {
			defer wait.Done()
			defer func() {
				if r := recover(); r != nil {
					mutex.Lock()
					if bandErr == nil {
						bandErr = fmt.Errorf("rendering band at row %d failed: %v", top, r)
					}
					mutex.Unlock()
				}
			}()
			renderBand(band, bandBounds, bandUpperLeft, bandLowerRight)
		}(top, band, bandBounds, bandUpperLeft, bandLowerRight)
	}

	wait.Wait()
	return bandErr
}
