package coordinator

import (
	"encoding/json"
	"fmt"
	"runtime"

	"GrayscaleMandelbrot/mandelbrot"
	"GrayscaleMandelbrot/misc"

	"github.com/BrugadaSyndrome/bslogger"
)

type settings struct {
	logger bslogger.Logger

	BandCount          int
	MandelbrotSettings mandelbrot.Settings
	OutputFile         string
	ServerAddress      string
}

func NewSettings(settingsFile string) settings {
	s := settings{
		logger: bslogger.NewLogger("CoordinatorSettings", bslogger.Normal, nil),
	}
	fileBytes, err := misc.ReadFile(settingsFile)
	misc.CheckError(err, s.logger, misc.Fatal)
	misc.CheckError(json.Unmarshal(fileBytes, &s), s.logger, misc.Fatal)
	misc.CheckError(s.Verify(), s.logger, misc.Fatal)
	s.logger.Debug(s.String())
	return s
}

func (s *settings) String() string {
	output := "\nCoordinator settings\n"
	output += fmt.Sprintf("Band Count: %d\n", s.BandCount)
	output += fmt.Sprintf("Output File: %s\n", s.OutputFile)
	output += fmt.Sprintf("My Address: %s\n", s.ServerAddress)
	return output
}

func (s *settings) Verify() error {
	misc.CheckError(s.MandelbrotSettings.Verify(), s.logger, misc.Fatal)
	if s.BandCount <= 0 {
		// One band per detected execution unit keeps every worker busy without
		// making the tasks so small the rpc overhead dominates
		s.BandCount = runtime.NumCPU()
	}
	if s.BandCount > s.MandelbrotSettings.Height {
		s.BandCount = s.MandelbrotSettings.Height
		s.logger.Infof("Clamping band count to the image height %d", s.BandCount)
	}
	if s.OutputFile == "" {
		s.OutputFile = "mandelbrot.png"
	}
	if s.ServerAddress == "" {
		address, err := misc.GetLocalAddress()
		if err != nil {
			return fmt.Errorf("no server address supplied and none detected: %w", err)
		}
		s.ServerAddress = fmt.Sprintf("%s:%s", address, "51000")
	}
	return nil
}
