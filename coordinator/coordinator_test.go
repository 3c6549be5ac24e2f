package coordinator

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"GrayscaleMandelbrot/misc"
	"GrayscaleMandelbrot/task"
)

func newTestCoordinator(t *testing.T, bandCount int) *Coordinator {
	t.Helper()

	port, err := misc.GetFreePort()
	if err != nil {
		t.Fatalf("unable to find a free port: %s", err)
	}

	dir := t.TempDir()
	outputFile := filepath.Join(dir, "mandelbrot.png")
	contents := fmt.Sprintf(`{
		"BandCount": %d,
		"OutputFile": %q,
		"ServerAddress": "localhost:%d",
		"MandelbrotSettings": {
			"Width": 16,
			"Height": 10,
			"UpperLeftReal": -1.5,
			"UpperLeftImag": 0.8,
			"LowerRightReal": -0.5,
			"LowerRightImag": 0.3,
			"WorkerCount": 1
		}
	}`, bandCount, outputFile, port)

	settingsFile := filepath.Join(dir, "coordinator.json")
	if err := os.WriteFile(settingsFile, []byte(contents), 0644); err != nil {
		t.Fatalf("unable to write settings file: %s", err)
	}

	coordinator := NewCoordinator(settingsFile)
	t.Cleanup(func() { coordinator.Server.Stop() })
	return coordinator
}

func TestTaskCountFollowsPartition(t *testing.T) {
	// 10 rows over 6 requested bands rounds up to 2 rows per band, which only
	// yields 5 bands. The task accounting must count the bands that exist or
	// the ingest loop waits for a 6th band that never comes
	c := newTestCoordinator(t, 6)

	bands := task.Partition(
		c.settings.MandelbrotSettings.Bounds(),
		c.settings.MandelbrotSettings.UpperLeft(),
		c.settings.MandelbrotSettings.LowerRight(),
		c.settings.BandCount)
	if len(bands) != 5 {
		t.Fatalf("partition produced %d bands, want 5", len(bands))
	}
	if c.taskCount != uint(len(bands)) {
		t.Errorf("taskCount = %d, want %d", c.taskCount, len(bands))
	}
}

func TestIngestTasksFinishesAndWritesImage(t *testing.T) {
	c := newTestCoordinator(t, 6)

	c.generateTasks()
	if got := c.generatedCount(); got != c.taskCount {
		t.Fatalf("generated %d tasks, want %d", got, c.taskCount)
	}

	// Pull every band the way a worker would and hand back a filled buffer
	var nothing misc.Nothing
	for i := uint(0); i < c.taskCount; i++ {
		var todo task.Task
		if err := c.GetTask("worker-under-test", &todo); err != nil {
			t.Fatalf("unable to get task %d: %s", i, err)
		}
		todo.Pixels = make([]byte, todo.Band.Bounds().Pixels())
		if err := c.ReturnTask(todo, &nothing); err != nil {
			t.Fatalf("unable to return task %d: %s", i, err)
		}
	}

	var empty task.Task
	if err := c.GetTask("worker-under-test", &empty); err == nil {
		t.Error("GetTask handed out more tasks than bands exist")
	}

	done := make(chan struct{})
	go func() {
		c.ingestTasks()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("ingestTasks did not finish after every band was returned")
	}

	if got := c.ingestedCount(); got != c.taskCount {
		t.Errorf("ingested %d tasks, want %d", got, c.taskCount)
	}
	if _, err := os.Stat(c.settings.OutputFile); err != nil {
		t.Errorf("output image was not written: %s", err)
	}
}
