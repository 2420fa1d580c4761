package mirror

import (
	"context"
	"errors"
	"strconv"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/logs"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
)

// Options: куда зеркалить телеметрию.
type Options struct {
	URL    string
	Token  string
	Org    string
	Bucket string
}

type pointWriter interface {
	WritePoint(ctx context.Context, point ...*write.Point) error
}

// Influx дублирует принятую телеметрию в InfluxDB для графиков.
// Источник истины остаётся в Postgres, ошибки записи только логируются.
type Influx struct {
	w     pointWriter
	close func()
}

func New(opts Options) (*Influx, error) {
	if opts.URL == "" || opts.Token == "" || opts.Org == "" || opts.Bucket == "" {
		return nil, errors.New("influx config incomplete")
	}
	client := influxdb2.NewClient(opts.URL, opts.Token)
	return &Influx{
		w:     client.WriteAPIBlocking(opts.Org, opts.Bucket),
		close: client.Close,
	}, nil
}

func (m *Influx) Moisture(ctx context.Context, farmID int64, rows []models.MoistureData) {
	points := make([]*write.Point, 0, len(rows))
	for _, r := range rows {
		points = append(points, influxdb2.NewPoint("moisture",
			tags(farmID, r.SectionDeviceID),
			map[string]interface{}{"moisture": r.MoistureValue},
			r.Timestamp))
	}
	m.write(ctx, "moisture", points)
}

func (m *Influx) Field(ctx context.Context, farmID int64, rows []models.FieldData) {
	points := make([]*write.Point, 0, len(rows))
	for _, r := range rows {
		points = append(points, influxdb2.NewPoint("field",
			tags(farmID, r.FarmDeviceID),
			map[string]interface{}{
				"nitrogen":    r.Nitrogen,
				"phosphorus":  r.Phosphorus,
				"potassium":   r.Potassium,
				"temperature": r.Temperature,
				"humidity":    r.Humidity,
			},
			r.Timestamp))
	}
	m.write(ctx, "field", points)
}

func (m *Influx) write(ctx context.Context, measurement string, points []*write.Point) {
	if len(points) == 0 {
		return
	}
	if err := m.w.WritePoint(ctx, points...); err != nil {
		logs.Logger.WithError(err).WithField("measurement", measurement).Warn("influx mirror write failed")
	}
}

func (m *Influx) Close() {
	if m.close != nil {
		m.close()
	}
}

func tags(farmID, deviceID int64) map[string]string {
	return map[string]string{
		"farm_id":   strconv.FormatInt(farmID, 10),
		"device_id": strconv.FormatInt(deviceID, 10),
	}
}
