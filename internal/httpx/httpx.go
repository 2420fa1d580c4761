package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/logs"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/middleware"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/repo"
)

const maxBody = 4 << 20

// PathID: положительный int64 из пути.
func PathID(r *http.Request, name string) (int64, error) {
	return parseID(name, mux.Vars(r)[name])
}

// QueryID: то же из query string.
func QueryID(r *http.Request, name string) (int64, error) {
	return parseID(name, r.URL.Query().Get(name))
}

func parseID(name, raw string) (int64, error) {
	if raw == "" {
		return 0, models.Invalid(name, "required")
	}
	n, err := models.ParseID(raw)
	if err != nil {
		return 0, models.Invalid(name, "must be a positive integer")
	}
	return n, nil
}

// Decode читает JSON-тело. Любая ошибка разбора становится ValidationError.
func Decode(r *http.Request, v any) error {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBody)).Decode(v)
	if err == nil {
		return nil
	}
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.Is(err, io.EOF):
		return models.Invalid("body", "required")
	case errors.As(err, &typeErr) && typeErr.Field != "":
		switch typeErr.Type {
		case reflect.TypeOf(models.ID(0)):
			return models.Invalid(typeErr.Field, "must be a positive integer")
		case reflect.TypeOf(models.Timestamp{}):
			return models.Invalid(typeErr.Field, "must be a timestamp (RFC 3339 or YYYY-MM-DD hh:mm:ss)")
		}
		return models.Invalid(typeErr.Field, "wrong type")
	case errors.As(err, &syntaxErr), errors.Is(err, io.ErrUnexpectedEOF):
		return models.Invalid("body", "malformed JSON")
	default:
		return models.Invalid("body", err.Error())
	}
}

// DecodeOptional: пустое тело не ошибка.
func DecodeOptional(r *http.Request, v any) error {
	if err := Decode(r, v); err != nil {
		var verr *models.ValidationError
		if errors.As(err, &verr) && verr.Fields["body"] == "required" && len(verr.Fields) == 1 {
			return nil
		}
		return err
	}
	return nil
}

// WriteError: 400 для ValidationError, 404 для repo.ErrNotFound, иначе 500 без деталей.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *models.ValidationError
	switch {
	case errors.As(err, &verr):
		models.WriteValidation(w, r.URL.Path, verr)
	case errors.Is(err, repo.ErrNotFound):
		models.WriteProblem(w, http.StatusNotFound, http.StatusText(http.StatusNotFound), "resource not found", nil)
	default:
		reqid := middleware.GetRequestID(r)
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, e := cur.GetPathTemplate(); e == nil {
				route = tpl
			}
		}
		logs.Logger.WithError(err).WithFields(logrus.Fields{
			"reqid":  reqid,
			"method": r.Method,
			"route":  route,
		}).Error("request failed")
		models.WriteProblem(w, http.StatusInternalServerError, "Internal Server Error",
			"internal error", map[string]any{"reqid": reqid})
	}
}

// Trimmed: обязательная непустая строка.
func Trimmed(verr *models.ValidationError, field, v string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		verr.Add(field, "required")
	}
	return v
}
