package dashboard

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/redis.v5"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/cache"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
)

type countingStore struct {
	calls int
	err   error
}

func (s *countingStore) HomeCounts(context.Context) (*repo.HomeCounts, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &repo.HomeCounts{TotalFarmers: 2, TotalFarms: 3, TotalLand: 4.5, TotalDevices: int64(s.calls)}, nil
}

func TestCountsWithoutCache(t *testing.T) {
	st := &countingStore{}
	h := NewHome(st, nil, time.Minute)

	_, err := h.Counts(context.Background())
	require.NoError(t, err)
	_, err = h.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, st.calls)
	assert.NotPanics(t, h.Invalidate)
}

func TestCountsCachedInRedis(t *testing.T) {
	s, err := miniredis.Run()
	require.NoError(t, err)
	defer s.Close()
	c := cache.FromClient(redis.NewClient(&redis.Options{Addr: s.Addr()}))
	defer c.Close()

	st := &countingStore{}
	h := NewHome(st, c, time.Minute)

	first, err := h.Counts(context.Background())
	require.NoError(t, err)
	second, err := h.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, st.calls)
	assert.Equal(t, first, second)

	h.Invalidate()
	third, err := h.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, st.calls)
	assert.Equal(t, int64(2), third.TotalDevices)
}

func TestHandler(t *testing.T) {
	r := mux.NewRouter()
	RegisterRoutes(r, NewHome(&countingStore{}, nil, 0))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"total_farmers":2,"total_no_farms":3,"total_land":4.5,"total_devices":1}`, rec.Body.String())

	r = mux.NewRouter()
	RegisterRoutes(r, NewHome(&countingStore{err: errors.New("db down")}, nil, 0))
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
