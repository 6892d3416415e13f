package serve

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/okra-platform/webdemo/internal/metrics"
)

// Routes served by the dispatcher
const (
	RouteData  = "/api/data"
	RouteGreet = "/api/greet"

	// routePage labels requests that fall through to the UI page
	routePage = "page"
)

const (
	contentTypeJSON = "application/json"
	contentTypeHTML = "text/html"
)

// Dispatcher routes requests by method and path. GET /api/data and
// POST /api/greet are API routes; every other request receives the UI page.
type Dispatcher struct {
	router  *mux.Router
	logger  zerolog.Logger
	now     func() time.Time
	metrics *metrics.Collector
}

// DispatcherOption configures a Dispatcher
type DispatcherOption func(*Dispatcher)

// WithClock overrides the time source used for timestamps and greetings
func WithClock(now func() time.Time) DispatcherOption {
	return func(d *Dispatcher) {
		d.now = now
	}
}

// WithMetrics records greet rejections on the given collector
func WithMetrics(c *metrics.Collector) DispatcherOption {
	return func(d *Dispatcher) {
		d.metrics = c
	}
}

// NewDispatcher creates a dispatcher with the API routes registered
func NewDispatcher(logger zerolog.Logger, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		router: mux.NewRouter().SkipClean(true),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}

	d.router.HandleFunc(RouteData, d.handleData).Methods(http.MethodGet)
	d.router.HandleFunc(RouteGreet, d.handleGreet).Methods(http.MethodPost)

	// Unknown paths and unsupported methods are not errors
	d.router.NotFoundHandler = http.HandlerFunc(d.handlePage)
	d.router.MethodNotAllowedHandler = http.HandlerFunc(d.handlePage)

	return d
}

// ServeHTTP implements http.Handler
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	d.router.ServeHTTP(w, r)
}

// Route returns the path template r resolves to, or "page" for the fall-through
func (d *Dispatcher) Route(r *http.Request) string {
	var match mux.RouteMatch
	if !d.router.Match(r, &match) || match.MatchErr != nil || match.Route == nil {
		return routePage
	}
	tpl, err := match.Route.GetPathTemplate()
	if err != nil {
		return routePage
	}
	return tpl
}

// handleData handles GET /api/data
func (d *Dispatcher) handleData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, &DataResponse{
		Message:   dataMessage,
		Timestamp: FormatTimestamp(d.now()),
	})
}

// handleGreet handles POST /api/greet
func (d *Dispatcher) handleGreet(w http.ResponseWriter, r *http.Request) {
	req, err := readGreetRequest(w, r)
	if err != nil {
		d.logger.Debug().Err(err).Msg("rejecting greet request")
		if d.metrics != nil {
			d.metrics.IncGreetRejected()
		}
		d.sendError(w, http.StatusBadRequest, invalidRequestMessage)
		return
	}

	writeJSON(w, http.StatusOK, &GreetResponse{
		Greeting: req.Greeting(d.now()),
	})
}

// handlePage serves the UI page for every request no API route claims
func (d *Dispatcher) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(indexPage); err != nil {
		d.logger.Debug().Err(err).Msg("failed to write page")
	}
}

// readGreetRequest reads the whole body and parses it
func readGreetRequest(w http.ResponseWriter, r *http.Request) (*GreetRequest, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxGreetBodySize))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedRequestBody, maxErr.Limit)
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedRequestBody, err)
	}
	return ParseGreetRequest(body)
}

// sendError sends an error response
func (d *Dispatcher) sendError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, &ErrorResponse{
		Error: message,
	})
}

// writeJSON writes v as a compact JSON body with no trailing newline and
// without HTML escaping
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(status)
	_, _ = w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}
