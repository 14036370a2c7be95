// Package janitor reclaims idle document actors on a fixed schedule,
// standing in for the host-driven instance reclamation the actors are
// designed to tolerate.
package janitor

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/faizahmd2/realtime-editor/pkg/document"
)

// Janitor periodically sweeps the actor manager for idle documents.
type Janitor struct {
	cron        *cron.Cron
	manager     *document.Manager
	idleTimeout time.Duration
	logger      zerolog.Logger
}

// New creates a janitor that reaps actors idle for longer than idleTimeout.
func New(manager *document.Manager, idleTimeout time.Duration, logger zerolog.Logger) *Janitor {
	return &Janitor{
		cron:        cron.New(),
		manager:     manager,
		idleTimeout: idleTimeout,
		logger:      logger,
	}
}

// Start schedules the sweep. The schedule keeps firing regardless of how
// much each sweep reclaims.
func (j *Janitor) Start() error {
	_, err := j.cron.AddFunc("@every 1m", func() {
		reaped := j.manager.ReapIdle(j.idleTimeout)
		if reaped > 0 {
			j.logger.Info().
				Int("reaped", reaped).
				Int("remaining", j.manager.Count()).
				Msg("Idle document sweep complete")
		}
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.Debug().Dur("idleTimeout", j.idleTimeout).Msg("Janitor started")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}
