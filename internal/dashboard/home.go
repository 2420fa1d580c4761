package dashboard

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/httpx"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/logs"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
)

const homeKey = "arecanut:home"

type Counter interface {
	HomeCounts(ctx context.Context) (*repo.HomeCounts, error)
}

// Cache: redis-кэш из internal/cache.
type Cache interface {
	GetJSON(key string, v interface{}) (bool, error)
	SetJSON(key string, v interface{}, ttl time.Duration) error
	Del(keys ...string) error
}

// Home: итоги для главной. С кэшем счётчики живут ttl, без кэша идут в БД каждый раз.
type Home struct {
	store Counter
	cache Cache
	ttl   time.Duration
}

func NewHome(store Counter, cache Cache, ttl time.Duration) *Home {
	return &Home{store: store, cache: cache, ttl: ttl}
}

func (h *Home) Counts(ctx context.Context) (*repo.HomeCounts, error) {
	if h.cache != nil {
		var c repo.HomeCounts
		ok, err := h.cache.GetJSON(homeKey, &c)
		if err != nil {
			logs.Logger.WithError(err).Warn("home cache read failed")
		}
		if ok {
			return &c, nil
		}
	}
	c, err := h.store.HomeCounts(ctx)
	if err != nil {
		return nil, err
	}
	if h.cache != nil {
		if err := h.cache.SetJSON(homeKey, c, h.ttl); err != nil {
			logs.Logger.WithError(err).Warn("home cache write failed")
		}
	}
	return c, nil
}

// Invalidate сбрасывает кэш после изменений админом.
func (h *Home) Invalidate() {
	if h == nil || h.cache == nil {
		return
	}
	if err := h.cache.Del(homeKey); err != nil {
		logs.Logger.WithError(err).Warn("home cache invalidate failed")
	}
}

func (h *Home) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := h.Counts(r.Context())
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	models.WriteJSON(w, http.StatusOK, c)
}

func RegisterRoutes(r *mux.Router, h *Home) {
	r.Handle("/", h).Methods(http.MethodGet)
}
