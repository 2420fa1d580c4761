package irrigation

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/logs"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
)

// Scheduler периодически прогоняет авто-проход по фермам, где клапаны в auto.
type Scheduler struct {
	engine   *Engine
	interval time.Duration
}

func NewScheduler(e *Engine, interval time.Duration) *Scheduler {
	return &Scheduler{engine: e, interval: interval}
}

// RunOnce: один проход по всем авто-фермам. Пересчитываются только клапаны в auto,
// ручные команды фермера остаются как есть. Ошибка одной фермы не останавливает остальные.
func (s *Scheduler) RunOnce(ctx context.Context) (int, error) {
	farms, err := s.engine.store.AutoFarms(ctx)
	if err != nil {
		return 0, err
	}
	total := 0
	for _, farmID := range farms {
		if ctx.Err() != nil {
			return total, ctx.Err()
		}
		res, err := s.engine.Sweep(ctx, SweepRequest{
			Scope:    repo.SystemScope(farmID),
			Mode:     string(models.ModeAuto),
			Source:   SourceScheduler,
			AutoOnly: true,
		})
		if err != nil {
			if ctx.Err() != nil {
				return total, ctx.Err()
			}
			if !errors.Is(err, repo.ErrNotFound) {
				logs.Logger.WithError(err).WithField("farm_id", farmID).Warn("scheduled sweep failed")
			}
			continue
		}
		total += len(res.Appended)
	}
	return total, nil
}

// Start запускает Run в горутине. Возвращённая wait ждёт конца текущего прохода,
// после неё можно закрывать БД.
func (s *Scheduler) Start(ctx context.Context) (wait func()) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	return func() { <-done }
}

// Run крутится до отмены ctx.
func (s *Scheduler) Run(ctx context.Context) {
	if s.interval <= 0 {
		return
	}
	t := time.NewTicker(s.interval)
	defer t.Stop()
	logs.Logger.Infof("irrigation scheduler started, interval %s", s.interval)
	for {
		select {
		case <-ctx.Done():
			logs.Logger.Info("irrigation scheduler stopped")
			return
		case <-t.C:
			n, err := s.RunOnce(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logs.Logger.WithError(err).Error("scheduler pass failed")
				continue
			}
			logs.Logger.WithFields(logrus.Fields{"appended": n}).Debug("scheduler pass done")
		}
	}
}
