package coordinator

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"GrayscaleMandelbrot/mandelbrot"
	"GrayscaleMandelbrot/misc"
	"GrayscaleMandelbrot/task"

	"github.com/BrugadaSyndrome/bslogger"
	"github.com/BrugadaSyndrome/multirpc"
)

// Workers poll for tasks faster than bands are usually returned, so these two
// sentinels travel back over rpc to tell a worker whether to retry or leave.
const (
	AllTasksHandedOut = "all tasks handed out"
	NoTasksAvailable  = "no tasks available yet"
)

type Coordinator struct {
	bands              []task.Band
	clients            map[string]*multirpc.TcpClient
	logger             bslogger.Logger
	mutex              sync.Mutex
	pixels             []byte
	settings           settings
	taskCount          uint
	taskGeneratedCount uint
	taskIngestedCount  uint
	tasksHandedOut     map[string]map[uint]task.Task // keep track of all tasks workers have
	tasksDone          chan task.Task
	tasksTodo          chan task.Task
	workerWait         *sync.WaitGroup

	Server multirpc.TcpServer
}

func NewCoordinator(settingsFile string) *Coordinator {
	settings := NewSettings(settingsFile)
	bounds := settings.MandelbrotSettings.Bounds()

	// The ceil split can hand back fewer bands than were asked for, so the
	// task accounting has to follow the partition that actually happened
	bands := task.Partition(
		bounds,
		settings.MandelbrotSettings.UpperLeft(),
		settings.MandelbrotSettings.LowerRight(),
		settings.BandCount)

	coordinator := &Coordinator{
		bands:          bands,
		clients:        make(map[string]*multirpc.TcpClient),
		logger:         bslogger.NewLogger("Coordinator", bslogger.Normal, nil),
		pixels:         make([]byte, bounds.Pixels()),
		settings:       settings,
		taskCount:      uint(len(bands)),
		tasksHandedOut: make(map[string]map[uint]task.Task),
		tasksDone:      make(chan task.Task, len(bands)),
		tasksTodo:      make(chan task.Task, len(bands)),
		workerWait:     &sync.WaitGroup{},
	}

	// Start up the rpc tcp server to allow workers to communicate with the coordinator
	coordinator.Server = multirpc.NewTcpServer(coordinator, settings.ServerAddress, "CoordinatorServer")
	misc.CheckError(coordinator.Server.Run(), coordinator.logger, misc.Fatal)

	// Copy the settings next to the output image so the run can be duplicated in the future
	bytes, err := json.Marshal(settings)
	misc.CheckError(err, coordinator.logger, misc.Warning)
	_, err = misc.WriteFile(settings.OutputFile+".settings.json", bytes)
	misc.CheckError(err, coordinator.logger, misc.Warning)

	return coordinator
}

// Run drives one render: queue up every band, ingest the results as workers
// return them, and write the image once the last band is in. It blocks until
// all registered workers have deregistered and the server is down.
func (c *Coordinator) Run() {
	c.logger.Info("Starting coordinator")

	go c.tickers()
	c.generateTasks()
	c.ingestTasks()

	c.mutex.Lock()
	remaining := len(c.clients)
	c.mutex.Unlock()
	c.logger.Infof("Waiting for %d workers to disconnect", remaining)
	c.workerWait.Wait()
	misc.CheckError(c.Server.Stop(), c.logger, misc.Warning)
	c.logger.Info("Shutting down")
}

func (c *Coordinator) tickers() {
	rollCall := time.NewTicker(time.Minute)
	heartBeat := time.NewTicker(30 * time.Second)

	for {
		select {
		case <-rollCall.C:
			c.logger.Debug("Roll call ticker")
			var junk misc.Nothing
			c.mutex.Lock()
			clients := make([]*multirpc.TcpClient, 0, len(c.clients))
			for _, v := range c.clients {
				clients = append(clients, v)
			}
			c.mutex.Unlock()
			for _, v := range clients {
				var reply bool
				err := v.Call("Worker.RollCall", junk, &reply)
				if err != nil {
					// Cannot communicate with the worker
					c.logger.Warningf("Worker %s missed roll call: %s", v.Name(), err)
					misc.CheckError(v.Disconnect(), c.logger, misc.Warning)

					// Remove worker from pool and put its bands back up for grabs
					var nothing misc.Nothing
					misc.CheckError(c.DeRegisterWorker(v.Name(), &nothing), c.logger, misc.Warning)
				}
			}

		case <-heartBeat.C:
			c.logger.Debug("Heart beat ticker")
			ingested := c.ingestedCount()
			c.logger.Infof("Bands [Generated: %d] [Ingested: %d] [Todo: %d]", c.generatedCount(), ingested, c.taskCount-ingested)
		}
	}
}

func (c *Coordinator) generateTasks() {
	c.logger.Info("Generating tasks")

	for _, band := range c.bands {
		c.mutex.Lock()
		id := c.taskGeneratedCount
		c.taskGeneratedCount++
		c.mutex.Unlock()
		c.tasksTodo <- task.NewTask(id, band)
	}

	c.logger.Debugf("Done generating %d tasks", c.generatedCount())
}

func (c *Coordinator) ingestTasks() {
	c.logger.Info("Ingesting tasks")

	var startTime = time.Now()
	bounds := c.settings.MandelbrotSettings.Bounds()
	ingested := make(map[uint]bool)

	for c.ingestedCount() < c.taskCount {
		taskReceived := <-c.tasksDone

		if ingested[taskReceived.ID] {
			// A worker that was presumed dead can hand its band in after the
			// requeued copy already came back
			c.logger.Warningf("Task %d came back twice. Ignoring", taskReceived.ID)
			continue
		}
		if !taskReceived.Done() {
			// A worker returned a short buffer. That is a worker bug, not a
			// render result, so put the band back up for grabs
			c.logger.Warningf("Task %d came back incomplete. Requeueing", taskReceived.ID)
			c.tasksTodo <- task.NewTask(taskReceived.ID, taskReceived.Band)
			continue
		}

		// Bands cover disjoint row ranges so each result lands in its own
		// region of the buffer
		top := taskReceived.Band.Top
		copy(c.pixels[top*bounds.Width:], taskReceived.Pixels)
		ingested[taskReceived.ID] = true

		c.mutex.Lock()
		c.taskIngestedCount++
		delete(c.tasksHandedOut[taskReceived.WorkerAddress], taskReceived.ID)
		c.mutex.Unlock()

		c.logger.Infof("Ingested band %d rows %d-%d [completed tasks %d/%d]", taskReceived.Band.Index, top, top+taskReceived.Band.Height-1, c.ingestedCount(), c.taskCount)
	}

	c.logger.Debugf("Done ingesting %d tasks in %s", c.taskIngestedCount, time.Since(startTime))

	err := misc.WriteImage(c.settings.OutputFile, c.pixels, bounds)
	misc.CheckError(err, c.logger, misc.Fatal)
	c.logger.Infof("Saved image to %s", c.settings.OutputFile)
}

func (c *Coordinator) RegisterWorker(workerServerAddress string, reply *misc.Nothing) error {
	// Create a client to communicate with this worker
	client := multirpc.NewTcpClient(workerServerAddress, workerServerAddress)
	misc.CheckError(client.Connect(), c.logger, misc.Warning)

	c.mutex.Lock()
	c.clients[workerServerAddress] = &client
	c.tasksHandedOut[workerServerAddress] = make(map[uint]task.Task)
	c.mutex.Unlock()

	c.logger.Infof("Worker joined: %s", workerServerAddress)
	c.workerWait.Add(1)

	return nil
}

func (c *Coordinator) DeRegisterWorker(workerServerAddress string, reply *misc.Nothing) error {
	// Put tasks this worker has not returned yet back into the todo pool
	c.mutex.Lock()
	unreturned := c.tasksHandedOut[workerServerAddress]
	delete(c.tasksHandedOut, workerServerAddress)
	client, connected := c.clients[workerServerAddress]
	delete(c.clients, workerServerAddress)
	c.mutex.Unlock()

	for _, v := range unreturned {
		c.logger.Warningf("Requeueing task %d from worker %s", v.ID, workerServerAddress)
		c.tasksTodo <- task.NewTask(v.ID, v.Band)
	}

	if connected {
		misc.CheckError(client.Disconnect(), c.logger, misc.Warning)
	}

	c.logger.Infof("Worker left: %s", workerServerAddress)
	c.workerWait.Done()

	return nil
}

func (c *Coordinator) RollCall(nothing misc.Nothing, present *bool) error {
	*present = true
	return nil
}

func (c *Coordinator) GetTask(workerAddress string, reply *task.Task) error {
	select {
	case todo := <-c.tasksTodo:
		c.mutex.Lock()
		todo.WorkerAddress = workerAddress
		if _, ok := c.tasksHandedOut[workerAddress]; !ok {
			c.tasksHandedOut[workerAddress] = make(map[uint]task.Task)
		}
		c.tasksHandedOut[workerAddress][todo.ID] = todo
		c.mutex.Unlock()
		*reply = todo
		return nil
	default:
	}

	if c.ingestedCount() == c.taskCount {
		c.logger.Info("Telling worker that all tasks are handed out")
		return errors.New(AllTasksHandedOut)
	}

	// Bands are still out with other workers. The caller should ask again
	return errors.New(NoTasksAvailable)
}

func (c *Coordinator) generatedCount() uint {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.taskGeneratedCount
}

func (c *Coordinator) ingestedCount() uint {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.taskIngestedCount
}

func (c *Coordinator) ReturnTask(done task.Task, nothing *misc.Nothing) error {
	c.tasksDone <- done
	return nil
}

func (c *Coordinator) GetMandelbrotSettings(nothing misc.Nothing, settings *mandelbrot.Settings) error {
	*settings = c.settings.MandelbrotSettings
	return nil
}
