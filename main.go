package main

import (
	"flag"
	"fmt"
	"os"
	"runtime"

	"GrayscaleMandelbrot/coordinator"
	"GrayscaleMandelbrot/mandelbrot"
	"GrayscaleMandelbrot/misc"
	"GrayscaleMandelbrot/worker"

	"github.com/BrugadaSyndrome/bslogger"
)

var (
	coordinatorFile, workerFile string
	workerCount                 int
)

func main() {
	flag.StringVar(&coordinatorFile, "coordinator", "", "Run as the coordinator of a distributed render using this json settings file")
	flag.StringVar(&workerFile, "worker", "", "Run as a distributed render worker using this json settings file")
	flag.IntVar(&workerCount, "workerCount", 0, "Number of parallel render workers (defaults to the detected execution units)")
	flag.Parse()

	if coordinatorFile != "" {
		c := coordinator.NewCoordinator(coordinatorFile)
		c.Run()
		return
	}

	if workerFile != "" {
		w := worker.NewWorker(workerFile)
		w.ProcessTasks()
		return
	}

	renderLocal(flag.Args())
}

// renderLocal plots one image in this process: parse the geometry, fork the
// band renderers, join, write the png.
func renderLocal(args []string) {
	logger := bslogger.NewLogger("Mandelbrot", bslogger.Normal, nil)

	if len(args) != 4 {
		fmt.Fprintf(os.Stderr, "Usage: %s <file> <width>x<height> <upper_left> <lower_right>\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Example: %s mandelbrot.png 1000x750 -1.20,0.35 -1.0,0.20\n", os.Args[0])
		os.Exit(1)
	}

	bounds, err := parseBounds(args[1])
	if err != nil {
		logger.Fatalf("Error parsing image dimensions: %s", err)
	}
	upperLeft, err := parseComplex(args[2])
	if err != nil {
		logger.Fatalf("Error parsing upper left corner point: %s", err)
	}
	lowerRight, err := parseComplex(args[3])
	if err != nil {
		logger.Fatalf("Error parsing lower right corner point: %s", err)
	}

	if workerCount <= 0 {
		workerCount = runtime.NumCPU()
	}
	logger.Infof("Rendering %s with %d workers", bounds, workerCount)

	pixels := make([]byte, bounds.Pixels())
	err = mandelbrot.Render(pixels, bounds, upperLeft, lowerRight, workerCount)
	misc.CheckError(err, logger, misc.Fatal)

	err = misc.WriteImage(args[0], pixels, bounds)
	misc.CheckError(err, logger, misc.Fatal)
	logger.Infof("Saved image to %s", args[0])
}
