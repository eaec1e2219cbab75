package jobs

import (
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// JobScheduler wraps a single cron entry so callers can start, stop and
// inspect it without touching the cron runner directly.
type JobScheduler struct {
	runner *cron.Cron
	logger *logrus.Entry
	jobID  cron.EntryID
}

func NewJobScheduler(logger *logrus.Entry, frequency string, job cron.Job) *JobScheduler {
	logger.Infof("scheduling job with cron expression: '%s'", frequency)

	opts := []cron.Option{}
	// six fields means a seconds column
	if strings.Count(frequency, " ") == 5 {
		logger.Warn("cron expression includes second-level scheduling, which can be expensive in production")
		opts = append(opts, cron.WithSeconds())
	}

	runner := cron.New(opts...)

	var jobID cron.EntryID
	if job != nil {
		var err error
		jobID, err = runner.AddJob(frequency, job)
		if err != nil {
			logger.Errorf("could not schedule job: %v", err)
		}
	}

	return &JobScheduler{
		runner: runner,
		logger: logger,
		jobID:  jobID,
	}
}

func (js *JobScheduler) Start() {
	js.runner.Start()
}

func (js *JobScheduler) NextRun() time.Time {
	return js.runner.Entry(js.jobID).Next
}

// Stop removes the entry and waits for an in-flight run to finish.
func (js *JobScheduler) Stop() {
	js.runner.Remove(js.jobID)
	<-js.runner.Stop().Done()
}
