package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/snapp-incubator/telemock/internal/capture"
	"github.com/snapp-incubator/telemock/internal/dispatch"
	"github.com/snapp-incubator/telemock/internal/logging"
	"github.com/snapp-incubator/telemock/internal/metrics"
	"github.com/snapp-incubator/telemock/internal/vendor"
)

// DefaultMaxBodyBytes is the request body limit used when Config leaves it unset.
const DefaultMaxBodyBytes = dispatch.DefaultMaxBodyBytes

// Config tunes the HTTP surface. Zero values select the defaults.
type Config struct {
	RecentLimit  int
	MaxBodyBytes int64
}

type server struct {
	dispatcher *dispatch.Dispatcher
	store      *capture.Store
	table      *vendor.Table
	cfg        Config
}

// New returns the HTTP handler of the receiver: GET /stats and GET /health
// read the capture store, every other request is dispatched to an emulated
// vendor.
func New(d *dispatch.Dispatcher, store *capture.Store, table *vendor.Table, cfg Config) http.Handler {
	if cfg.RecentLimit <= 0 {
		cfg.RecentLimit = capture.DefaultRecentLimit
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}

	s := &server{dispatcher: d, store: store, table: table, cfg: cfg}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handle)
	return mux
}

func (s *server) handle(writer http.ResponseWriter, req *http.Request) {
	if req.Method == http.MethodGet || req.Method == http.MethodHead {
		switch req.URL.Path {
		case "/stats":
			s.stats(writer)
			return
		case "/health":
			s.health(writer)
			return
		}
	}

	s.ingest(writer, req)
}

func (s *server) stats(writer http.ResponseWriter) {
	stats := s.store.Stats(s.cfg.RecentLimit)
	stats.Supported = s.table.Supported()
	writeJSON(writer, http.StatusOK, stats)
}

func (s *server) health(writer http.ResponseWriter) {
	writeJSON(writer, http.StatusOK, s.store.Health())
}

func (s *server) ingest(writer http.ResponseWriter, req *http.Request) {
	start := time.Now()
	responded := false

	defer func() {
		if r := recover(); r != nil {
			logging.L.Error("Panic while handling ingestion request",
				zap.String("method", req.Method),
				zap.String("url", req.URL.String()),
				zap.Any("panic", r),
			)
			if !responded {
				writeJSON(writer, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			}
		}
	}()

	var reqBodyBuffer bytes.Buffer
	if req.Body != nil {
		_, err := io.Copy(&reqBodyBuffer, io.LimitReader(req.Body, s.cfg.MaxBodyBytes))
		if err != nil {
			logging.L.Error("error in reading the request body, capturing what was read",
				zap.String("method", req.Method),
				zap.String("url", req.URL.String()),
				zap.Error(err),
			)
		}
	}

	p, resp := s.dispatcher.Dispatch(dispatch.Request{
		Method: req.Method,
		Path:   req.URL.Path,
		Header: req.Header,
		Body:   reqBodyBuffer.Bytes(),
	})

	if resp.ContentType != "" {
		writer.Header().Set("Content-Type", resp.ContentType)
	}
	if len(resp.Body) > 0 {
		writer.Header().Set("Content-Length", strconv.Itoa(len(resp.Body)))
	}
	responded = true
	writer.WriteHeader(resp.Status)
	if len(resp.Body) > 0 && req.Method != http.MethodHead {
		if _, err := writer.Write(resp.Body); err != nil {
			logging.L.Error("error in writing the response to the response writer",
				zap.String("url", req.URL.String()), zap.Error(err))
		}
	}

	metrics.HTTPReqDuration.WithLabelValues(req.Method, p.Vendor).Observe(time.Since(start).Seconds())
}

func writeJSON(writer http.ResponseWriter, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		logging.L.Error("error in marshalling the response", zap.Error(err))
		status = http.StatusInternalServerError
		body = []byte(`{"error":"internal error"}`)
	}

	writer.Header().Set("Content-Type", vendor.ContentTypeJSON)
	writer.WriteHeader(status)
	_, _ = writer.Write(body)
}
