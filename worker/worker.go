package worker

import (
	"fmt"
	"sync"
	"time"

	"GrayscaleMandelbrot/coordinator"
	"GrayscaleMandelbrot/mandelbrot"
	"GrayscaleMandelbrot/misc"
	"GrayscaleMandelbrot/task"

	"github.com/BrugadaSyndrome/bslogger"
	"github.com/BrugadaSyndrome/multirpc"
)

type Worker struct {
	coordinatorAddress string
	logger             bslogger.Logger
	mutex              sync.Mutex
	myAddress          string
	settings           mandelbrot.Settings
	tasksCompleted     int

	ServerClient multirpc.TcpServerClient
}

func NewWorker(settingsFile string) *Worker {
	settings := NewSettings(settingsFile)
	worker := &Worker{
		coordinatorAddress: settings.CoordinatorAddress,
		logger:             bslogger.NewLogger("Worker", bslogger.Normal, nil),
	}

	// Find a free port to use for this worker
	port, err := misc.GetFreePort()
	misc.CheckError(err, worker.logger, misc.Fatal)
	worker.logger.Debugf("Found free port: %d", port)
	address, err := misc.GetLocalAddress()
	misc.CheckError(err, worker.logger, misc.Fatal)
	worker.myAddress = fmt.Sprintf("%s:%d", address, port)
	worker.logger = bslogger.NewLogger(fmt.Sprintf("Worker %s", worker.myAddress), bslogger.Normal, nil)
	worker.ServerClient = multirpc.NewTcpServerClient(worker, worker.myAddress, worker.myAddress, settings.CoordinatorAddress, settings.CoordinatorAddress)
	misc.CheckError(worker.ServerClient.Server.Run(), worker.logger, misc.Fatal)

	// Register with the coordinator
	misc.CheckError(worker.ServerClient.Client.Connect(), worker.logger, misc.Fatal)
	var nothing misc.Nothing
	misc.CheckError(worker.ServerClient.Client.Call("Coordinator.RegisterWorker", worker.myAddress, &nothing), worker.logger, misc.Fatal)

	// The coordinator owns the render geometry so every worker plots the same image
	var mandelbrotSettings mandelbrot.Settings
	misc.CheckError(worker.ServerClient.Client.Call("Coordinator.GetMandelbrotSettings", nothing, &mandelbrotSettings), worker.logger, misc.Fatal)
	misc.CheckError(mandelbrotSettings.Verify(), worker.logger, misc.Fatal)
	worker.settings = mandelbrotSettings

	go worker.tickers()

	return worker
}

func (w *Worker) tickers() {
	rollCall := time.NewTicker(time.Minute)
	heartBeat := time.NewTicker(30 * time.Second)

	for {
		select {
		case <-rollCall.C:
			w.logger.Debug("Roll call ticker")
			var junk misc.Nothing
			var reply bool
			err := w.ServerClient.Client.Call("Coordinator.RollCall", junk, &reply)
			if err != nil {
				// Cannot communicate with the coordinator so we should shut down
				w.logger.Warningf("Coordinator missed roll call: %s", err)
				w.ServerClient.Client.Disconnect()
				w.ServerClient.Server.Stop()
				continue
			}

		case <-heartBeat.C:
			w.logger.Debug("Heart beat ticker")
			w.logger.Infof("Tasks [Completed: %d]", w.completedCount())
		}
	}
}

// ProcessTasks pulls band tasks from the coordinator until every band is
// handed out, rendering each one locally with the full fork-join scheduler
// before returning its bytes. It blocks until the worker deregisters.
func (w *Worker) ProcessTasks() {
	w.logger.Info("Processing tasks")

	var nothing misc.Nothing
	var startTime = time.Now()

	for {
		var taskTodo task.Task

		err := w.ServerClient.Client.Call("Coordinator.GetTask", w.myAddress, &taskTodo)
		if err != nil {
			// This is an expected error. No more work to do
			if err.Error() == coordinator.AllTasksHandedOut {
				break
			}
			// Other workers still hold bands that may yet be requeued
			if err.Error() == coordinator.NoTasksAvailable {
				time.Sleep(time.Second)
				continue
			}
			w.logger.Fatalf("Unable to get a task: %s", err.Error())
		}

		taskTodo.Pixels = make([]byte, taskTodo.Band.Bounds().Pixels())
		err = mandelbrot.Render(taskTodo.Pixels, taskTodo.Band.Bounds(), taskTodo.Band.UpperLeft(), taskTodo.Band.LowerRight(), w.settings.WorkerCount)
		if err != nil {
			w.logger.Errorf("Unable to render band %d: %s", taskTodo.Band.Index, err.Error())
			taskTodo.Pixels = nil
		}

		err = w.ServerClient.Client.Call("Coordinator.ReturnTask", taskTodo, &nothing)
		if err != nil {
			w.logger.Errorf("Unable to return a task: %s", err.Error())
			break
		}
		w.incrementCompleted()
		w.logger.Debugf("Completed %s", taskTodo.String())
	}

	w.logger.Info("Done processing tasks")
	w.logger.Debugf("Processed %d tasks in %s", w.completedCount(), time.Since(startTime))

	w.logger.Info("Shutting down")
	w.ServerClient.Client.Call("Coordinator.DeRegisterWorker", w.myAddress, &nothing)
	misc.CheckError(w.ServerClient.Client.Disconnect(), w.logger, misc.Warning)
	misc.CheckError(w.ServerClient.Server.Stop(), w.logger, misc.Warning)
}

// The completed counter is bumped by the task loop while the heart beat
// ticker reads it, so both sides go through the mutex
func (w *Worker) incrementCompleted() {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	w.tasksCompleted++
}

func (w *Worker) completedCount() int {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.tasksCompleted
}

func (w *Worker) RollCall(request misc.Nothing, reply *bool) error {
	*reply = true
	return nil
}
