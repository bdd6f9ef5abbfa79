package dispatch

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/snapp-incubator/telemock/internal/capture"
	"github.com/snapp-incubator/telemock/internal/logging"
	"github.com/snapp-incubator/telemock/internal/metrics"
	"github.com/snapp-incubator/telemock/internal/storage"
	"github.com/snapp-incubator/telemock/internal/vendor"
)

// Request is an inbound ingestion request with its body already read.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Response is what the emulated vendor answers.
type Response struct {
	Status      int
	ContentType string
	Body        []byte
}

// Recorder receives a log of every capture, e.g. a storage.Queue.
type Recorder interface {
	Record(l storage.Log)
}

// Dispatcher resolves requests against a vendor table, captures them and
// produces the matched vendor's response.
type Dispatcher struct {
	table    *vendor.Table
	store    *capture.Store
	tokens   *TokenSource
	recorder Recorder
	now      func() time.Time

	maxBodyBytes int64
}

// Option customises a Dispatcher.
type Option func(*Dispatcher)

// WithRecorder forwards a log of every capture to r.
func WithRecorder(r Recorder) Option {
	return func(d *Dispatcher) {
		d.recorder = r
	}
}

// WithMaxBodyBytes bounds how far an encoded body may inflate. Bodies that
// decode past it are captured with their received size.
func WithMaxBodyBytes(n int64) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.maxBodyBytes = n
		}
	}
}

// WithClock overrides the clock used for timestamps and tokens.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

// New returns a dispatcher capturing into store.
func New(table *vendor.Table, store *capture.Store, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		table:        table,
		store:        store,
		now:          time.Now,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.tokens = NewTokenSource(d.now)
	return d
}

// Dispatch captures req exactly once and returns the captured record together
// with the response to replay. It never fails: unmatched requests go to the
// table's fallback rule and undecodable bodies are captured by size only.
func (d *Dispatcher) Dispatch(req Request) (capture.Payload, Response) {
	m := d.table.Lookup(req.Method, req.Path, req.Header)
	rule := m.Rule

	body := req.Body
	if enc := req.Header.Get("Content-Encoding"); enc != "" {
		decoded, err := Decompress(enc, body, d.maxBodyBytes)
		if err != nil {
			logging.L.Debug("Could not decode request body, keeping it as received",
				zap.String("route", rule.Route()),
				zap.String("content_encoding", enc),
				zap.Error(err),
			)
		} else {
			body = decoded
		}
	}

	p := capture.Payload{
		ID:         uuid.NewString(),
		ReceivedAt: d.now(),
		Vendor:     rule.Vendor,
		Kind:       m.Kind,
		Method:     req.Method,
		Path:       req.Path,
		SizeBytes:  len(body),
	}
	if len(m.Params) > 0 {
		p.Params = m.Params
	}
	p.ItemCount = d.countItems(rule, DecodeBody(req.Header.Get("Content-Type"), body))

	d.store.Append(p)

	metrics.CapturedPayloads.WithLabelValues(rule.Vendor, rule.Kind).Inc()
	metrics.PayloadSize.WithLabelValues(rule.Vendor).Observe(float64(p.SizeBytes))

	fields := []zap.Field{
		zap.String("vendor", p.Vendor),
		zap.String("kind", p.Kind),
		zap.String("label", rule.Label),
		zap.String("route", rule.Route()),
		zap.String("path", p.Path),
		zap.Int("size_bytes", p.SizeBytes),
	}
	if p.ItemCount != nil {
		fields = append(fields, zap.Int("item_count", *p.ItemCount))
	}
	if m.Fallback {
		logging.L.Warn("No vendor rule matched, captured as unknown API", fields...)
	} else {
		logging.L.Info("Captured payload", fields...)
	}

	if d.recorder != nil {
		d.recorder.Record(storage.Log{
			ID:         p.ID,
			ReceivedAt: p.ReceivedAt,
			Vendor:     p.Vendor,
			Kind:       p.Kind,
			Route:      rule.Route(),
			URL:        p.Path,
			Headers:    req.Header,
			SizeBytes:  p.SizeBytes,
			ItemCount:  p.ItemCount,
			Fallback:   m.Fallback,
		})
	}

	return p, d.respond(rule)
}

func (d *Dispatcher) respond(rule *vendor.Rule) Response {
	body, err := rule.Response.Render(d.tokens.Next)
	if err != nil {
		// Contract bodies are static, fall back to the unstamped body.
		logging.L.Error("Error in rendering the response contract",
			zap.String("route", rule.Route()), zap.Error(err))
		body = rule.Response.Body
	}

	return Response{
		Status:      rule.Response.Status,
		ContentType: rule.Response.ContentType,
		Body:        body,
	}
}

// countItems runs the rule's extractor. Any failure, panics included, leaves
// the count absent.
func (d *Dispatcher) countItems(rule *vendor.Rule, body vendor.Body) (count *int) {
	if rule.Count == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			d.countFailed(rule, fmt.Errorf("extractor panic: %v", r))
			count = nil
		}
	}()

	n, err := rule.Count(body)
	if err != nil {
		d.countFailed(rule, err)
		return nil
	}
	return &n
}

func (d *Dispatcher) countFailed(rule *vendor.Rule, err error) {
	metrics.ItemCountFailures.WithLabelValues(rule.Vendor).Inc()
	logging.L.Debug("Could not count payload items",
		zap.String("route", rule.Route()),
		zap.Error(err),
	)
}
