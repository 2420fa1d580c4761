package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/logs"
	"github.com/CISCO-RVCE-CoE-IoT/Smart-Irrigation-and-Fartigation-in-Arecanut-Farm-BACKEND/internal/models"
)

// Recoverer: паника в обработчике превращается в 500 problem+json, стек уходит в лог.
// http.ErrAbortHandler пробрасываем дальше, net/http обрывает соединение сам.
func Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			reqid := GetRequestID(r)
			logs.Logger.WithFields(logrus.Fields{
				"reqid":  reqid,
				"method": r.Method,
				"route":  routeTemplate(r),
				"panic":  rec,
			}).Error("handler panic\n" + string(debug.Stack()))
			models.WriteProblem(w, http.StatusInternalServerError,
				"Internal Server Error", "internal error", map[string]any{"reqid": reqid})
		}()
		next.ServeHTTP(w, r)
	})
}
