package task

import "fmt"

// Task is the unit of work handed to a worker over rpc: the band to render
// and, once the worker returns it, the finished grayscale bytes for that band.
type Task struct {
	Band          Band
	ID            uint
	Pixels        []byte
	WorkerAddress string
}

func NewTask(id uint, band Band) Task {
	return Task{
		Band: band,
		ID:   id,
	}
}

func (t *Task) String() string {
	output := "{Task "
	output += fmt.Sprintf("ID: %d ", t.ID)
	output += fmt.Sprintf("Band: %s ", t.Band.String())
	output += fmt.Sprintf("Pixel Count: %d}", len(t.Pixels))
	return output
}

// Done reports whether the worker filled in the band completely.
func (t *Task) Done() bool {
	return len(t.Pixels) == t.Band.Bounds().Pixels()
}
