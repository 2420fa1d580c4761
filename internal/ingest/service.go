package ingest

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/logs"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/metrics"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
)

// Store: вставка с фильтром допустимости, реализуется repo.TelemetryStore.
type Store interface {
	InsertMoisture(ctx context.Context, farmID int64, farmKey string, rows []repo.MoistureRow) ([]models.MoistureData, error)
	InsertField(ctx context.Context, farmID int64, farmKey string, rows []repo.FieldRow) ([]models.FieldData, error)
}

// Mirror получает принятые строки. Ошибки зеркала запрос не ломают.
type Mirror interface {
	Moisture(ctx context.Context, farmID int64, rows []models.MoistureData)
	Field(ctx context.Context, farmID int64, rows []models.FieldData)
}

type Service struct {
	store    Store
	mirror   Mirror
	metrics  *metrics.Metrics
	maxBatch int
	now      func() time.Time
}

type Option func(*Service)

func WithMirror(m Mirror) Option            { return func(s *Service) { s.mirror = m } }
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(store Store, maxBatch int, opts ...Option) *Service {
	s := &Service{store: store, maxBatch: maxBatch, now: time.Now}
	for _, o := range opts {
		o(s)
	}
	return s
}

// IngestMoisture принимает пакет влажности фермы.
// Ни одной принятой строки (чужие устройства или неверный ключ) → repo.ErrNotFound.
func (s *Service) IngestMoisture(ctx context.Context, farmID int64, b MoistureBatch) (Result, error) {
	rows, err := moistureRows(b, s.now().UTC(), s.maxBatch)
	if err != nil {
		return Result{}, err
	}
	accepted, err := s.store.InsertMoisture(ctx, farmID, b.FarmKey, rows)
	if err != nil {
		return Result{}, err
	}
	res := s.finish(ctx, models.ClassMoisture, farmID, len(rows), len(accepted))
	if res.Accepted > 0 && s.mirror != nil {
		s.mirror.Moisture(ctx, farmID, accepted)
	}
	if res.Accepted == 0 {
		return res, repo.ErrNotFound
	}
	return res, nil
}

// IngestNPK: то же для NPK/метео.
func (s *Service) IngestNPK(ctx context.Context, farmID int64, b NPKBatch) (Result, error) {
	rows, err := npkRows(b, s.now().UTC(), s.maxBatch)
	if err != nil {
		return Result{}, err
	}
	accepted, err := s.store.InsertField(ctx, farmID, b.FarmKey, rows)
	if err != nil {
		return Result{}, err
	}
	res := s.finish(ctx, models.ClassNPK, farmID, len(rows), len(accepted))
	if res.Accepted > 0 && s.mirror != nil {
		s.mirror.Field(ctx, farmID, accepted)
	}
	if res.Accepted == 0 {
		return res, repo.ErrNotFound
	}
	return res, nil
}

func (s *Service) finish(_ context.Context, class models.DeviceClass, farmID int64, submitted, accepted int) Result {
	res := Result{Accepted: accepted, Rejected: submitted - accepted}
	s.metrics.ObserveReadings(string(class), res.Accepted, res.Rejected)
	if res.Rejected > 0 {
		logs.Logger.WithFields(logrus.Fields{
			"farm_id":  farmID,
			"class":    class,
			"accepted": res.Accepted,
			"rejected": res.Rejected,
		}).Debug("telemetry rows rejected")
	}
	return res
}
