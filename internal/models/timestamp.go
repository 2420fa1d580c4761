package models

import (
	"encoding/json"
	"reflect"
	"strings"
	"time"
)

// Timestamp: время от устройства. Кроме RFC 3339 принимает то, что раньше
// съедал Postgres через ::timestamp: "2024-06-01 06:00:00", "2024-06-01T06:00:00",
// с дробными секундами и без. Время без зоны считается UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseTimestamp пробует форматы по очереди.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return &json.UnmarshalTypeError{Value: "non-string", Type: timestampType}
	}
	v, ok := ParseTimestamp(s)
	if !ok {
		return &json.UnmarshalTypeError{Value: "string", Type: timestampType}
	}
	t.Time = v
	return nil
}

// TimePtr: nil для nil.
func (t *Timestamp) TimePtr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

var timestampType = reflect.TypeOf(Timestamp{})
