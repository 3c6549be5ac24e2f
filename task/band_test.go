package task

import (
	"bytes"
	"math"
	"testing"

	"GrayscaleMandelbrot/mandelbrot"
)

func TestPartitionClipsLastBand(t *testing.T) {
	bounds := mandelbrot.Bounds{Width: 20, Height: 10}
	bands := Partition(bounds, complex(-2, 1), complex(1, -1), 3)

	if len(bands) != 3 {
		t.Fatalf("got %d bands, want 3", len(bands))
	}

	wantTops := []int{0, 4, 8}
	wantHeights := []int{4, 4, 2}
	for i, band := range bands {
		if band.Index != i {
			t.Errorf("band %d carries index %d", i, band.Index)
		}
		if band.Top != wantTops[i] || band.Height != wantHeights[i] {
			t.Errorf("band %d covers rows %d-%d, want %d-%d", i, band.Top, band.Top+band.Height-1, wantTops[i], wantTops[i]+wantHeights[i]-1)
		}
		if band.Width != bounds.Width {
			t.Errorf("band %d width = %d, want %d", i, band.Width, bounds.Width)
		}
	}
}

func TestPartitionTilesImageExactly(t *testing.T) {
	// Bands must cover every row exactly once for any worker count, including
	// counts that exceed the image height
	upperLeft := complex(-1.20, 0.35)
	lowerRight := complex(-1.0, 0.20)

	for _, bandCount := range []int{1, 2, 3, 7, 10, 11, 64} {
		bounds := mandelbrot.Bounds{Width: 5, Height: 10}
		bands := Partition(bounds, upperLeft, lowerRight, bandCount)

		nextTop := 0
		for _, band := range bands {
			if band.Top != nextTop {
				t.Fatalf("bandCount %d: band %d starts at row %d, want %d", bandCount, band.Index, band.Top, nextTop)
			}
			if band.Height < 1 {
				t.Fatalf("bandCount %d: band %d has height %d", bandCount, band.Index, band.Height)
			}
			nextTop = band.Top + band.Height
		}
		if nextTop != bounds.Height {
			t.Fatalf("bandCount %d: bands cover %d rows, want %d", bandCount, nextTop, bounds.Height)
		}
	}
}

func TestPartitionViewportContinuity(t *testing.T) {
	bounds := mandelbrot.Bounds{Width: 100, Height: 100}
	upperLeft := complex(-1.20, 0.35)
	lowerRight := complex(-1.0, 0.20)
	bands := Partition(bounds, upperLeft, lowerRight, 4)

	// The first band starts exactly at the full viewport's upper left corner
	if bands[0].UpperLeft() != upperLeft {
		t.Errorf("band 0 upper left = %v, want %v", bands[0].UpperLeft(), upperLeft)
	}

	// Adjacent bands meet on the same horizontal line of the complex plane
	for i := 1; i < len(bands); i++ {
		if math.Abs(bands[i].UpperLeftImag-bands[i-1].LowerRightImag) > 1e-12 {
			t.Errorf("band %d starts at imag %v but band %d ends at imag %v", i, bands[i].UpperLeftImag, i-1, bands[i-1].LowerRightImag)
		}
	}

	// Every band spans the full real axis of the viewport
	for _, band := range bands {
		if math.Abs(band.UpperLeftReal-real(upperLeft)) > 1e-12 || math.Abs(band.LowerRightReal-real(lowerRight)) > 1e-12 {
			t.Errorf("band %d spans reals %v to %v, want %v to %v", band.Index, band.UpperLeftReal, band.LowerRightReal, real(upperLeft), real(lowerRight))
		}
	}
}

func TestPartitionedBandsAssembleToFullRender(t *testing.T) {
	// Rendering each band independently and copying it in at its row offset
	// is exactly what the coordinator does with returned tasks, so the result
	// must match a plain full-image render
	bounds := mandelbrot.Bounds{Width: 40, Height: 30}
	upperLeft := complex(-1.8, 1.2)
	lowerRight := complex(0.4, 0.4)

	reference := make([]byte, bounds.Pixels())
	if err := mandelbrot.Render(reference, bounds, upperLeft, lowerRight, 1); err != nil {
		t.Fatalf("full render failed: %s", err)
	}

	assembled := make([]byte, bounds.Pixels())
	for _, band := range Partition(bounds, upperLeft, lowerRight, 7) {
		pixels := make([]byte, band.Bounds().Pixels())
		mandelbrot.RenderBand(pixels, band.Bounds(), band.UpperLeft(), band.LowerRight())
		copy(assembled[band.Top*bounds.Width:], pixels)
	}

	if !bytes.Equal(assembled, reference) {
		t.Error("assembled band renders differ from the full render")
	}
}

func TestTaskDone(t *testing.T) {
	band := Partition(mandelbrot.Bounds{Width: 10, Height: 10}, complex(-2, 1), complex(1, -1), 2)[0]
	taskTodo := NewTask(3, band)

	if taskTodo.Done() {
		t.Error("task with no pixels reported done")
	}
	taskTodo.Pixels = make([]byte, band.Bounds().Pixels()-1)
	if taskTodo.Done() {
		t.Error("task with a short buffer reported done")
	}
	taskTodo.Pixels = make([]byte, band.Bounds().Pixels())
	if !taskTodo.Done() {
		t.Error("task with a full buffer reported not done")
	}
}
