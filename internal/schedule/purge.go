// Package schedule agenda a limpeza periódica de ofertas vencidas.
package schedule

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type Purger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// PurgeJob remove ofertas com validade anterior a hoje e invalida o snapshot quando algo saiu.
type PurgeJob struct {
	Catalog Purger
	Cache   Invalidator
	Log     logrus.FieldLogger
	Now     func() time.Time
	Timeout time.Duration
}

func (j *PurgeJob) Run() {
	timeout := j.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	today := now()
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

	log := j.logger()
	removed, err := j.Catalog.PurgeExpired(ctx, today)
	if err != nil {
		log.WithError(err).Error("falha ao remover ofertas vencidas")
		return
	}
	log.WithField("ofertas", removed).Info("ofertas vencidas removidas")

	if removed > 0 && j.Cache != nil {
		if err := j.Cache.Invalidate(ctx); err != nil {
			log.WithError(err).Warn("falha ao invalidar snapshot do catálogo")
		}
	}
}

func (j *PurgeJob) logger() logrus.FieldLogger {
	if j.Log == nil {
		return logrus.StandardLogger()
	}
	return j.Log
}

// Start registra o job na expressão cron (5 campos) e inicia o agendador.
func Start(spec string, job *PurgeJob) (*cron.Cron, error) {
	printf := cron.VerbosePrintfLogger(logrus.StandardLogger())
	c := cron.New(
		cron.WithLogger(printf),
		cron.WithChain(
			cron.Recover(printf),
			cron.SkipIfStillRunning(printf),
		),
	)
	if _, err := c.AddJob(spec, job); err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
