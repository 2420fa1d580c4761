package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
)

// fakeStore эмулирует фильтр допустимости: устройство принимается, если
// оно есть в devices нужного класса фермы и ключ совпал.
type fakeStore struct {
	farmID  int64
	farmKey string
	devices map[int64]models.DeviceClass
	err     error

	calls     int
	moisture  []repo.MoistureRow
	fieldRows []repo.FieldRow
}

func (f *fakeStore) admissible(farmID int64, key string, dev int64, class models.DeviceClass) bool {
	return farmID == f.farmID && key == f.farmKey && f.devices[dev] == class
}

func (f *fakeStore) InsertMoisture(_ context.Context, farmID int64, key string, rows []repo.MoistureRow) ([]models.MoistureData, error) {
	f.calls++
	f.moisture = rows
	if f.err != nil {
		return nil, f.err
	}
	var out []models.MoistureData
	for _, r := range rows {
		if f.admissible(farmID, key, r.DeviceID, models.ClassMoisture) {
			out = append(out, models.MoistureData{SectionDeviceID: r.DeviceID, Timestamp: r.Timestamp, MoistureValue: r.Value})
		}
	}
	return out, nil
}

func (f *fakeStore) InsertField(_ context.Context, farmID int64, key string, rows []repo.FieldRow) ([]models.FieldData, error) {
	f.calls++
	f.fieldRows = rows
	if f.err != nil {
		return nil, f.err
	}
	var out []models.FieldData
	for _, r := range rows {
		if f.admissible(farmID, key, r.DeviceID, models.ClassNPK) {
			out = append(out, models.FieldData{FarmDeviceID: r.DeviceID, Nitrogen: r.Nitrogen, Timestamp: r.Timestamp})
		}
	}
	return out, nil
}

type fakeMirror struct {
	moisture []models.MoistureData
	field    []models.FieldData
}

func (m *fakeMirror) Moisture(_ context.Context, _ int64, rows []models.MoistureData) {
	m.moisture = append(m.moisture, rows...)
}
func (m *fakeMirror) Field(_ context.Context, _ int64, rows []models.FieldData) {
	m.field = append(m.field, rows...)
}

var fixedNow = time.Date(2024, 6, 1, 8, 30, 0, 0, time.UTC)

func newFarm1() *fakeStore {
	return &fakeStore{
		farmID:  1,
		farmKey: "abc",
		devices: map[int64]models.DeviceClass{5: models.ClassMoisture, 6: models.ClassMoisture, 8: models.ClassValve, 20: models.ClassNPK},
	}
}

func decodeMoisture(t *testing.T, raw string) MoistureBatch {
	t.Helper()
	var b MoistureBatch
	require.NoError(t, json.Unmarshal([]byte(raw), &b))
	return b
}

func TestMixedBatchAcceptsOnlyValidRows(t *testing.T) {
	st := newFarm1()
	svc := NewService(st, 100, WithClock(func() time.Time { return fixedNow }))

	b := decodeMoisture(t, `{"farm_key":"abc","data":[{"moisture_device_id":5,"value":42},{"moisture_device_id":999,"value":10}]}`)
	res, err := svc.IngestMoisture(context.Background(), 1, b)

	require.NoError(t, err)
	assert.Equal(t, Result{Accepted: 1, Rejected: 1}, res)
	assert.Equal(t, 1, st.calls)
}

func TestAllValidRowsAccepted(t *testing.T) {
	st := newFarm1()
	svc := NewService(st, 100)

	b := decodeMoisture(t, `{"farm_key":"abc","data":[{"moisture_device_id":"5","value":42},{"moisture_device_id":6,"value":0}]}`)
	res, err := svc.IngestMoisture(context.Background(), 1, b)

	require.NoError(t, err)
	assert.Equal(t, Result{Accepted: 2, Rejected: 0}, res)
}

func TestWrongFarmKeyAcceptsNothing(t *testing.T) {
	st := newFarm1()
	svc := NewService(st, 100)

	b := decodeMoisture(t, `{"farm_key":"nope","data":[{"moisture_device_id":5,"value":42},{"moisture_device_id":6,"value":1}]}`)
	res, err := svc.IngestMoisture(context.Background(), 1, b)

	assert.ErrorIs(t, err, repo.ErrNotFound)
	assert.Equal(t, Result{Accepted: 0, Rejected: 2}, res)

	// с неверными устройствами ответ тот же
	b = decodeMoisture(t, `{"farm_key":"abc","data":[{"moisture_device_id":77,"value":42},{"moisture_device_id":78,"value":1}]}`)
	res2, err2 := svc.IngestMoisture(context.Background(), 1, b)
	assert.ErrorIs(t, err2, repo.ErrNotFound)
	assert.Equal(t, res, res2)
}

func TestDeviceOfWrongClassIsRejected(t *testing.T) {
	st := newFarm1()
	svc := NewService(st, 100)

	b := decodeMoisture(t, `{"farm_key":"abc","data":[{"moisture_device_id":8,"value":42},{"moisture_device_id":5,"value":1}]}`)
	res, err := svc.IngestMoisture(context.Background(), 1, b)
	require.NoError(t, err)
	assert.Equal(t, Result{Accepted: 1, Rejected: 1}, res)
}

func TestEmptyBatchIsInputError(t *testing.T) {
	st := newFarm1()
	svc := NewService(st, 100)

	_, err := svc.IngestMoisture(context.Background(), 1, MoistureBatch{FarmKey: "abc"})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "data")

	_, err = svc.IngestNPK(context.Background(), 1, NPKBatch{FarmKey: "abc", Data: []NPKReading{}})
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, st.calls)
}

func TestOversizedBatchIsInputError(t *testing.T) {
	st := newFarm1()
	svc := NewService(st, 2)

	b := decodeMoisture(t, `{"farm_key":"abc","data":[{"moisture_device_id":5,"value":1},{"moisture_device_id":5,"value":2},{"moisture_device_id":5,"value":3}]}`)
	_, err := svc.IngestMoisture(context.Background(), 1, b)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Zero(t, st.calls)
}

func TestMissingFieldsAreInputErrors(t *testing.T) {
	st := newFarm1()
	svc := NewService(st, 100)

	b := decodeMoisture(t, `{"data":[{"moisture_device_id":5}]}`)
	_, err := svc.IngestMoisture(context.Background(), 1, b)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "required", verr.Fields["farm_key"])

	b = decodeMoisture(t, `{"farm_key":"abc","data":[{"moisture_device_id":5}]}`)
	_, err = svc.IngestMoisture(context.Background(), 1, b)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "required", verr.Fields["data[0].value"])
	assert.Zero(t, st.calls)
}

func TestFractionalMoistureIsNotCoerced(t *testing.T) {
	var b MoistureBatch
	err := json.Unmarshal([]byte(`{"farm_key":"abc","data":[{"moisture_device_id":5,"value":42.5}]}`), &b)
	assert.Error(t, err)
}

func TestDefaultTimestampIsNow(t *testing.T) {
	st := newFarm1()
	svc := NewService(st, 100, WithClock(func() time.Time { return fixedNow }))

	explicit := time.Date(2024, 5, 31, 23, 0, 0, 0, time.UTC)
	b := MoistureBatch{FarmKey: "abc", Data: []MoistureReading{
		{DeviceID: 5, Value: intPtr(40)},
		{DeviceID: 6, Value: intPtr(41), Timestamp: &models.Timestamp{Time: explicit}},
	}}
	_, err := svc.IngestMoisture(context.Background(), 1, b)
	require.NoError(t, err)

	require.Len(t, st.moisture, 2)
	assert.Equal(t, fixedNow, st.moisture[0].Timestamp)
	assert.Equal(t, explicit, st.moisture[1].Timestamp)
}

func TestNPKBatchAndMirror(t *testing.T) {
	st := newFarm1()
	mir := &fakeMirror{}
	svc := NewService(st, 100, WithMirror(mir))

	var b NPKBatch
	require.NoError(t, json.Unmarshal([]byte(`{"farm_key":"abc","data":[
		{"npk_device_id":20,"nitrogen":1.5,"phosphorus":2,"potassium":3,"temperature":27.5,"humidity":80},
		{"npk_device_id":21,"nitrogen":1,"phosphorus":2,"potassium":3,"temperature":20,"humidity":70}]}`), &b))

	res, err := svc.IngestNPK(context.Background(), 1, b)
	require.NoError(t, err)
	assert.Equal(t, Result{Accepted: 1, Rejected: 1}, res)
	require.Len(t, st.fieldRows, 2)
	assert.Equal(t, 1.5, st.fieldRows[0].Nitrogen)
	assert.Len(t, mir.field, 1)
}

func TestNPKMissingMeasurement(t *testing.T) {
	svc := NewService(newFarm1(), 100)
	var b NPKBatch
	require.NoError(t, json.Unmarshal([]byte(`{"farm_key":"abc","data":[{"npk_device_id":20,"nitrogen":1}]}`), &b))

	_, err := svc.IngestNPK(context.Background(), 1, b)
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "data[0].humidity")
}

func TestStorageErrorSurfaces(t *testing.T) {
	st := newFarm1()
	st.err = errors.New("connection refused")
	mir := &fakeMirror{}
	svc := NewService(st, 100, WithMirror(mir))

	b := decodeMoisture(t, `{"farm_key":"abc","data":[{"moisture_device_id":5,"value":42}]}`)
	_, err := svc.IngestMoisture(context.Background(), 1, b)
	assert.EqualError(t, err, "connection refused")
	assert.Empty(t, mir.moisture)
}

func intPtr(v int) *int { return &v }
