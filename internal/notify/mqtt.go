package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/logs"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/metrics"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
)

// Options: подключение к MQTT-брокеру для команд клапанам.
type Options struct {
	Broker      string // tcp://host:1883
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
	MaxRetries  uint64
}

const publishTimeout = 5 * time.Second

// publisher: то, что нужно от mqtt.Client.
type publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher рассылает события клапанов в топики устройств.
// Публикация идёт через circuit breaker, чтобы упавший брокер не тормозил запросы.
type MQTTPublisher struct {
	client  publisher
	closer  func()
	prefix  string
	cb      *gobreaker.CircuitBreaker
	metrics *metrics.Metrics
}

// Connect подключается к брокеру с экспоненциальным backoff.
func Connect(opts Options, m *metrics.Metrics) (*MQTTPublisher, error) {
	co := mqtt.NewClientOptions()
	co.AddBroker(opts.Broker)
	co.SetClientID(opts.ClientID)
	co.SetUsername(opts.Username)
	co.SetPassword(opts.Password)
	co.SetCleanSession(true)
	co.SetAutoReconnect(true)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second
	retries := opts.MaxRetries
	if retries == 0 {
		retries = 5
	}

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(co)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			logs.Logger.WithError(token.Error()).Warnf("mqtt connect to %s failed", opts.Broker)
			return token.Error()
		}
		return nil
	}, backoff.WithMaxRetries(bo, retries))
	if err != nil {
		return nil, fmt.Errorf("mqtt connect after retries: %w", err)
	}
	logs.Logger.Infof("mqtt connected to %s", opts.Broker)

	p := newPublisher(client, opts.TopicPrefix, m)
	p.closer = func() { client.Disconnect(250) }
	return p, nil
}

func newPublisher(c publisher, prefix string, m *metrics.Metrics) *MQTTPublisher {
	return &MQTTPublisher{
		client:  c,
		prefix:  prefix,
		metrics: m,
		cb: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:     "mqtt-valve-publish",
			Interval: time.Minute,
			Timeout:  30 * time.Second,
			ReadyToTrip: func(c gobreaker.Counts) bool {
				return c.ConsecutiveFailures >= 3
			},
		}),
	}
}

// Topic: <prefix>/farm/<farm_id>/valve/<valve_id>.
func Topic(prefix string, farmID, valveID int64) string {
	return fmt.Sprintf("%s/farm/%d/valve/%d", prefix, farmID, valveID)
}

// PublishValveEvents публикует каждое событие (QoS 1). Ошибки только логируются.
func (p *MQTTPublisher) PublishValveEvents(_ context.Context, events []models.ValveEvent) {
	for _, ev := range events {
		err := p.publish(ev)
		p.metrics.ObservePublish(err == nil)
		if err != nil {
			logs.Logger.WithError(err).WithFields(logrus.Fields{
				"farm_id":  ev.FarmID,
				"valve_id": ev.ValveID,
			}).Warn("valve event publish failed")
		}
	}
}

func (p *MQTTPublisher) publish(ev models.ValveEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	topic := Topic(p.prefix, ev.FarmID, ev.ValveID)
	_, err = p.cb.Execute(func() (interface{}, error) {
		token := p.client.Publish(topic, 1, false, payload)
		if !token.WaitTimeout(publishTimeout) {
			return nil, errors.New("publish timeout")
		}
		return nil, token.Error()
	})
	return err
}

func (p *MQTTPublisher) Close() {
	if p.closer != nil {
		p.closer()
	}
}
