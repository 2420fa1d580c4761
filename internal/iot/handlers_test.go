package iot

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/ingest"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/irrigation"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
)

// fakeTelemetry принимает только устройства из known и только с ключом "abc".
type fakeTelemetry struct {
	known map[int64]bool
	err   error
	rows  []repo.MoistureRow
}

func (f *fakeTelemetry) InsertMoisture(_ context.Context, _ int64, key string, rows []repo.MoistureRow) ([]models.MoistureData, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.rows = append(f.rows, rows...)
	var out []models.MoistureData
	for _, r := range rows {
		if key == "abc" && f.known[r.DeviceID] {
			out = append(out, models.MoistureData{SectionDeviceID: r.DeviceID, MoistureValue: r.Value, Timestamp: r.Timestamp})
		}
	}
	return out, nil
}

func (f *fakeTelemetry) InsertField(_ context.Context, _ int64, key string, rows []repo.FieldRow) ([]models.FieldData, error) {
	var out []models.FieldData
	for _, r := range rows {
		if key == "abc" && f.known[r.DeviceID] {
			out = append(out, models.FieldData{FarmDeviceID: r.DeviceID})
		}
	}
	return out, nil
}

type fakeValves struct {
	snaps   []repo.ValveSnapshot
	scope   repo.Scope
	command irrigation.Command
	cmdErr  error
}

func (f *fakeValves) Snapshot(_ context.Context, scope repo.Scope) ([]repo.ValveSnapshot, error) {
	f.scope = scope
	if len(f.snaps) == 0 {
		return nil, repo.ErrNotFound
	}
	return f.snaps, nil
}

func (f *fakeValves) Command(_ context.Context, c irrigation.Command) (models.ValveEvent, error) {
	f.command = c
	if f.cmdErr != nil {
		return models.ValveEvent{}, f.cmdErr
	}
	return models.ValveEvent{ValveDataID: 9, FarmID: c.Scope.FarmID(), ValveID: c.ValveID,
		Mode: models.ValveMode(c.Mode), Status: models.ValveStatus(c.Status)}, nil
}

func newRouter(tel *fakeTelemetry, v *fakeValves) *mux.Router {
	r := mux.NewRouter()
	RegisterRoutes(r, NewHandler(ingest.NewService(tel, 100), v))
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, strings.NewReader(body)))
	return rec
}

func TestMoisturePartialAcceptance(t *testing.T) {
	r := newRouter(&fakeTelemetry{known: map[int64]bool{5: true}}, &fakeValves{})

	rec := do(r, http.MethodPost, "/iot/moisture/1",
		`{"farm_key":"abc","data":[{"moisture_device_id":5,"value":42},{"moisture_device_id":"999","value":10}]}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Message  string `json:"message"`
		Accepted int    `json:"accepted_rows"`
		Rejected int    `json:"rejected_rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, 1, got.Accepted)
	assert.Equal(t, 1, got.Rejected)
	assert.NotEmpty(t, got.Message)
}

func TestMoistureAcceptsPlainTimestamp(t *testing.T) {
	tel := &fakeTelemetry{known: map[int64]bool{5: true}}
	r := newRouter(tel, &fakeValves{})

	rec := do(r, http.MethodPost, "/iot/moisture/1",
		`{"farm_key":"abc","data":[{"moisture_device_id":5,"value":42,"timestamp":"2024-06-01 06:00:00"}]}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, tel.rows, 1)
	assert.True(t, tel.rows[0].Timestamp.Equal(time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)))
}

func TestMoistureBadFieldsAreNamed(t *testing.T) {
	r := newRouter(&fakeTelemetry{known: map[int64]bool{5: true}}, &fakeValves{})

	rec := do(r, http.MethodPost, "/iot/moisture/1",
		`{"farm_key":"abc","data":[{"moisture_device_id":5,"value":42,"timestamp":"yesterday"}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data.timestamp"`)

	rec = do(r, http.MethodPost, "/iot/moisture/1",
		`{"farm_key":"abc","data":[{"moisture_device_id":"abc","value":42}]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"data.moisture_device_id"`)
}

func TestMoistureWrongKeyIsNotFound(t *testing.T) {
	r := newRouter(&fakeTelemetry{known: map[int64]bool{5: true}}, &fakeValves{})
	rec := do(r, http.MethodPost, "/iot/moisture/1", `{"farm_key":"nope","data":[{"moisture_device_id":5,"value":42}]}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMoistureInputErrors(t *testing.T) {
	r := newRouter(&fakeTelemetry{known: map[int64]bool{5: true}}, &fakeValves{})

	cases := map[string]struct{ path, body string }{
		"empty batch":  {"/iot/moisture/1", `{"farm_key":"abc","data":[]}`},
		"bad farm id":  {"/iot/moisture/x1", `{"farm_key":"abc","data":[{"moisture_device_id":5,"value":1}]}`},
		"bad device":   {"/iot/moisture/1", `{"farm_key":"abc","data":[{"moisture_device_id":"five","value":1}]}`},
		"missing body": {"/iot/moisture/1", ``},
	}
	for name, c := range cases {
		rec := do(r, http.MethodPost, c.path, c.body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestMoistureStorageErrorIsGeneric(t *testing.T) {
	r := newRouter(&fakeTelemetry{err: errors.New("pq: relation does not exist")}, &fakeValves{})
	rec := do(r, http.MethodPost, "/iot/moisture/1", `{"farm_key":"abc","data":[{"moisture_device_id":5,"value":42}]}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "relation")
}

func TestNPK(t *testing.T) {
	r := newRouter(&fakeTelemetry{known: map[int64]bool{3: true}}, &fakeValves{})
	rec := do(r, http.MethodPost, "/iot/npk/1", `{"farm_key":"abc","data":[{"npk_device_id":3,
		"nitrogen":1,"phosphorus":2,"potassium":3,"temperature":25,"humidity":70}]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"accepted_rows":1`)
}

func TestValveStateRoundsAverage(t *testing.T) {
	avg := 41.6
	mode, status := "auto", "on"
	v := &fakeValves{snaps: []repo.ValveSnapshot{{ValveID: 11, Mode: &mode, Status: &status,
		AutoOnThreshold: 40, AutoOffThreshold: 70, AvgMoisture: &avg}}}
	r := newRouter(&fakeTelemetry{}, v)

	rec := do(r, http.MethodGet, "/iot/valve/1?farm_key=abc", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var got struct {
		Data []ValveView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got.Data, 1)
	assert.Equal(t, 42.0, *got.Data[0].AvgMoisture)
	assert.Equal(t, repo.DeviceScope(1, "abc"), v.scope)

	// ключ в теле GET
	rec = do(r, http.MethodGet, "/iot/valve/1", `{"farm_key":"abc"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(r, http.MethodGet, "/iot/valve/1", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValveStateNotFound(t *testing.T) {
	r := newRouter(&fakeTelemetry{}, &fakeValves{})
	rec := do(r, http.MethodGet, "/iot/valve/1?farm_key=wrong", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestValveCommand(t *testing.T) {
	v := &fakeValves{}
	r := newRouter(&fakeTelemetry{}, v)

	rec := do(r, http.MethodPost, "/iot/valve/11",
		`{"mode":"manual","status":"on","timer":5,"timestamp":"2024-06-01T06:00:00Z","farm_id":"1","farm_key":"abc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(11), v.command.ValveID)
	assert.Equal(t, 5, v.command.Timer)
	assert.Equal(t, repo.DeviceScope(1, "abc"), v.command.Scope)
	require.NotNil(t, v.command.Timestamp)
	assert.True(t, v.command.Timestamp.Equal(time.Date(2024, 6, 1, 6, 0, 0, 0, time.UTC)))

	rec = do(r, http.MethodPost, "/iot/valve/11", `{"mode":"manual","status":"on"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "farm_key")

	v.cmdErr = repo.ErrNotFound
	rec = do(r, http.MethodPost, "/iot/valve/11", `{"mode":"manual","status":"on","farm_id":1,"farm_key":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
