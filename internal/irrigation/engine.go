package irrigation

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/logs"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/metrics"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
)

// Источники событий (метка метрик).
const (
	SourceCommand   = "command"
	SourceSweep     = "sweep"
	SourceScheduler = "scheduler"
)

// Store реализуется repo.ValveStore.
type Store interface {
	Aggregates(ctx context.Context, scope repo.Scope) ([]repo.ValveSnapshot, error)
	AppendEvents(ctx context.Context, events []models.ValveEvent) ([]models.ValveEvent, error)
	AppendScoped(ctx context.Context, scope repo.Scope, e models.ValveEvent) (models.ValveEvent, error)
	AutoFarms(ctx context.Context) ([]int64, error)
}

// Publisher рассылает добавленные события устройствам. Best-effort.
type Publisher interface {
	PublishValveEvents(ctx context.Context, events []models.ValveEvent)
}

type Engine struct {
	store   Store
	pub     Publisher
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Engine)

func WithPublisher(p Publisher) Option      { return func(e *Engine) { e.pub = p } }
func WithMetrics(m *metrics.Metrics) Option { return func(e *Engine) { e.metrics = m } }
func WithClock(now func() time.Time) Option { return func(e *Engine) { e.now = now } }

func NewEngine(store Store, opts ...Option) *Engine {
	e := &Engine{store: store, now: time.Now}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Command: явная команда одному клапану.
type Command struct {
	ValveID   int64
	Mode      string
	Status    string
	Timer     int
	Timestamp *time.Time
	Scope     repo.Scope
}

// Command добавляет ровно одно событие. Клапан не найден или не виден в scope → repo.ErrNotFound.
func (e *Engine) Command(ctx context.Context, c Command) (models.ValveEvent, error) {
	verr := &models.ValidationError{}
	mode := parseMode(verr, c.Mode)
	status := parseStatus(verr, c.Status, true)
	if c.ValveID <= 0 {
		verr.Add("valve_id", "required")
	}
	if c.Timer < 0 {
		verr.Add("timer", "must not be negative")
	}
	if err := verr.Err(); err != nil {
		return models.ValveEvent{}, err
	}

	at := e.now().UTC()
	if c.Timestamp != nil {
		at = *c.Timestamp
	}
	ev, err := e.store.AppendScoped(ctx, c.Scope, models.ValveEvent{
		ValveID:        c.ValveID,
		Mode:           mode,
		Status:         status,
		ManualOffTimer: c.Timer,
		Timestamp:      at,
	})
	if err != nil {
		return models.ValveEvent{}, err
	}
	e.appended(ctx, SourceCommand, []models.ValveEvent{ev})
	return ev, nil
}

// SweepRequest: проход по всем клапанам фермы.
type SweepRequest struct {
	Scope  repo.Scope
	Mode   string
	Status string // игнорируется в auto
	Timer  int
	Source string
	// AutoOnly: пересчитывать только клапаны, последнее событие которых в auto.
	// Ручные клапаны и клапаны без событий не трогаются.
	AutoOnly bool
}

type SweepResult struct {
	Evaluated int                 `json:"evaluated"`
	Appended  []models.ValveEvent `json:"appended"`
}

// Sweep пересчитывает клапаны фермы и одним INSERT пишет только изменившиеся.
// Нет клапанов/агрегатов в scope → repo.ErrNotFound, записей нет.
func (e *Engine) Sweep(ctx context.Context, r SweepRequest) (SweepResult, error) {
	verr := &models.ValidationError{}
	mode := parseMode(verr, r.Mode)
	status := parseStatus(verr, r.Status, mode != models.ModeAuto)
	if r.Timer < 0 {
		verr.Add("timer", "must not be negative")
	}
	if err := verr.Err(); err != nil {
		return SweepResult{}, err
	}

	snaps, err := e.store.Aggregates(ctx, r.Scope)
	if err != nil {
		return SweepResult{}, err
	}
	if r.AutoOnly {
		snaps = autoOnly(snaps)
	}
	res := SweepResult{Evaluated: len(snaps)}

	events := Decide(snaps, mode, status, r.Timer, e.now().UTC())
	if len(events) == 0 {
		return res, nil
	}
	res.Appended, err = e.store.AppendEvents(ctx, events)
	if err != nil {
		return SweepResult{}, err
	}
	source := r.Source
	if source == "" {
		source = SourceSweep
	}
	e.appended(ctx, source, res.Appended)
	return res, nil
}

// Snapshot: текущее состояние клапанов фермы для устройств/дашборда.
func (e *Engine) Snapshot(ctx context.Context, scope repo.Scope) ([]repo.ValveSnapshot, error) {
	return e.store.Aggregates(ctx, scope)
}

func autoOnly(snaps []repo.ValveSnapshot) []repo.ValveSnapshot {
	out := snaps[:0:0]
	for _, s := range snaps {
		if s.Mode != nil && *s.Mode == string(models.ModeAuto) {
			out = append(out, s)
		}
	}
	return out
}

func (e *Engine) appended(ctx context.Context, source string, events []models.ValveEvent) {
	if len(events) == 0 {
		return
	}
	e.metrics.ObserveValveEvents(source, len(events))
	logs.Logger.WithFields(logrus.Fields{
		"source": source,
		"events": len(events),
	}).Info("valve events appended")
	if e.pub != nil {
		e.pub.PublishValveEvents(ctx, events)
	}
}

func parseMode(verr *models.ValidationError, s string) models.ValveMode {
	if s == "" {
		verr.Add("mode", "required")
		return ""
	}
	m, ok := models.ParseValveMode(s)
	if !ok {
		verr.Add("mode", "must be auto or manual")
	}
	return m
}

func parseStatus(verr *models.ValidationError, s string, required bool) models.ValveStatus {
	if s == "" {
		if required {
			verr.Add("status", "required")
		}
		return ""
	}
	st, ok := models.ParseValveStatus(s)
	if !ok && required {
		verr.Add("status", "must be on or off")
	}
	return st
}
