package middleware

import (
	"context"
	"net/http"
	"regexp"

	"github.com/google/uuid"
)

// HeaderRequestID: заголовок, в котором устройство или прокси может прислать свой id.
const HeaderRequestID = "X-Request-Id"

type ctxKey struct{}

// допускаем только короткие безопасные id, остальное заменяем
var validReqID = regexp.MustCompile(`^[A-Za-z0-9._-]{1,64}$`)

// RequestID проставляет id запроса в контекст и в ответ.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if !validReqID.MatchString(id) {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), id)))
	})
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestIDFrom: id из контекста, "" если его нет.
func RequestIDFrom(ctx context.Context) string {
	s, _ := ctx.Value(ctxKey{}).(string)
	return s
}

func GetRequestID(r *http.Request) string { return RequestIDFrom(r.Context()) }
