package server

import (
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/cache"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/dashboard"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/ingest"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/irrigation"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/logs"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/metrics"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/mirror"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/notify"
)

// connectOptional поднимает redis, MQTT и Influx, если они заданы в конфиге.
// Недоступная интеграция выключается с предупреждением, сервис стартует без неё.
func (a *App) connectOptional() {
	if c := a.cfg.Redis; c.Addr != "" {
		rc, err := cache.New(cache.Options{Addr: c.Addr, Password: c.Password, DB: c.DB})
		if err != nil {
			logs.Logger.WithError(err).Warn("redis disabled")
		} else {
			a.cache = rc
		}
	}
	if c := a.cfg.MQTT; c.Broker != "" {
		p, err := notify.Connect(notify.Options{
			Broker:      c.Broker,
			ClientID:    c.ClientID,
			Username:    c.Username,
			Password:    c.Password,
			TopicPrefix: c.TopicPrefix,
		}, a.metrics)
		if err != nil {
			logs.Logger.WithError(err).Warn("mqtt publishing disabled")
		} else {
			a.publisher = p
		}
	}
	if c := a.cfg.Influx; c.URL != "" {
		m, err := mirror.New(mirror.Options{URL: c.URL, Token: c.Token, Org: c.Org, Bucket: c.Bucket})
		if err != nil {
			logs.Logger.WithError(err).Warn("influx mirror disabled")
		} else {
			a.mirror = m
		}
	}
}

func (a *App) close() {
	if a.publisher != nil {
		a.publisher.Close()
	}
	if a.mirror != nil {
		a.mirror.Close()
	}
	if a.cache != nil {
		_ = a.cache.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// Нулевой указатель в интерфейсе не равен nil, поэтому опции добавляются только для живых интеграций.

func ingestOptions(m *mirror.Influx, met *metrics.Metrics) []ingest.Option {
	opts := []ingest.Option{ingest.WithMetrics(met)}
	if m != nil {
		opts = append(opts, ingest.WithMirror(m))
	}
	return opts
}

func engineOptions(p *notify.MQTTPublisher, met *metrics.Metrics) []irrigation.Option {
	opts := []irrigation.Option{irrigation.WithMetrics(met)}
	if p != nil {
		opts = append(opts, irrigation.WithPublisher(p))
	}
	return opts
}

func homeCache(c *cache.Cache) dashboard.Cache {
	if c == nil {
		return nil
	}
	return c
}
