package mandelbrot

import (
	"fmt"
	"runtime"

	"github.com/BrugadaSyndrome/bslogger"
)

// Settings carries the render geometry. The viewport corners are stored as
// separate float fields so the struct survives both the json settings files
// and the rpc wire without special casing complex128.
type Settings struct {
	logger bslogger.Logger

	Height         int
	LowerRightImag float64
	LowerRightReal float64
	UpperLeftImag  float64
	UpperLeftReal  float64
	Width          int
	WorkerCount    int
}

func (s *Settings) Bounds() Bounds {
	return Bounds{Width: s.Width, Height: s.Height}
}

func (s *Settings) UpperLeft() complex128 {
	return complex(s.UpperLeftReal, s.UpperLeftImag)
}

func (s *Settings) LowerRight() complex128 {
	return complex(s.LowerRightReal, s.LowerRightImag)
}

func (s *Settings) String() string {
	output := "\nMandelbrot settings\n"
	output += fmt.Sprintf("Bounds: %s\n", s.Bounds())
	output += fmt.Sprintf("Upper Left: %v\n", s.UpperLeft())
	output += fmt.Sprintf("Lower Right: %v\n", s.LowerRight())
	output += fmt.Sprintf("Worker Count: %d\n", s.WorkerCount)
	return output
}

func (s *Settings) Verify() error {
	s.logger = bslogger.NewLogger("MandelbrotSettings", bslogger.Normal, nil)

	if s.Height <= 0 {
		s.Height = 750
	}
	if s.Width <= 0 {
		s.Width = 1000
	}
	if s.UpperLeftReal == 0 && s.UpperLeftImag == 0 && s.LowerRightReal == 0 && s.LowerRightImag == 0 {
		// Nothing requested so fall back to a well known slice of the set
		s.UpperLeftReal = -1.20
		s.UpperLeftImag = 0.35
		s.LowerRightReal = -1.0
		s.LowerRightImag = 0.20
		s.logger.Infof("No viewport supplied. Using %v to %v", s.UpperLeft(), s.LowerRight())
	}
	if s.WorkerCount <= 0 {
		s.WorkerCount = runtime.NumCPU()
		s.logger.Debugf("Defaulting to %d render workers", s.WorkerCount)
	}

	return nil
}
