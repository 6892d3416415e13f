package serve

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/okra-platform/webdemo/internal/metrics"
)

// HeaderRequestID carries the request ID in both directions
const HeaderRequestID = "X-Request-Id"

// maxRequestIDLength bounds client-supplied request IDs
const maxRequestIDLength = 128

// NewHandler wraps the dispatcher with recovery, request IDs, access logging
// and, when collector is non-nil, request metrics.
func NewHandler(d *Dispatcher, logger zerolog.Logger, collector *metrics.Collector) http.Handler {
	var h http.Handler = d
	if collector != nil {
		h = collector.Middleware(d.Route)(h)
	}

	h = hlog.AccessHandler(logAccess)(h)
	h = requestIDHandler(h)
	h = hlog.NewHandler(logger)(h)

	return handlers.RecoveryHandler(
		handlers.RecoveryLogger(recoveryLogger{logger: logger}),
		handlers.PrintRecoveryStack(true),
	)(h)
}

// requestIDHandler keeps the client's X-Request-Id or assigns a new UUID,
// echoes it on the response and adds it to the request logger.
func requestIDHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)

		zerolog.Ctx(r.Context()).UpdateContext(func(c zerolog.Context) zerolog.Context {
			return c.Str("request_id", id)
		})

		next.ServeHTTP(w, r)
	})
}

func logAccess(r *http.Request, status, size int, duration time.Duration) {
	hlog.FromRequest(r).Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Msg("request")
}

// recoveryLogger adapts zerolog to handlers.RecoveryHandlerLogger
type recoveryLogger struct {
	logger zerolog.Logger
}

func (l recoveryLogger) Println(v ...interface{}) {
	l.logger.Error().Msg(fmt.Sprint(v...))
}
