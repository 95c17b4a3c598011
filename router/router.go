// Package router maps HTTP requests onto an expiring store.
//
//	GET  /{key}     value, or an empty 200 if absent
//	GET  /size      decimal count of resident entries
//	GET  /metrics   exposition of the metrics recorder
//	POST /{key}     store the UTF-8 body under key
//
// The key is the first non-empty path segment, so /a/b addresses key a and /size/x answers the size.
// The reserved keys size and metrics are matched case-insensitively and cannot be written.
// Any other method answers 404.
package router

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/sirupsen/logrus"

	"github.com/karupanerura/sweepcache"
	"github.com/karupanerura/sweepcache/internal/panicutil"
	"github.com/karupanerura/sweepcache/metrics"
)

const (
	// SizeKey is the reserved key answering the entry count.
	SizeKey = "size"

	// MetricsKey is the reserved key answering the metrics exposition.
	MetricsKey = "metrics"

	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-Id"
)

const textContentType = "text/plain; charset=utf-8"

// Router is an http.Handler serving the cache protocol.
type Router struct {
	store        sweepcache.ExpiringStore[string, string]
	recorder     metrics.Recorder
	logger       logrus.FieldLogger
	maxBodyBytes int64
	newRequestID func() string
}

var _ http.Handler = (*Router)(nil)

// New creates a Router serving store.
func New(store sweepcache.ExpiringStore[string, string], opts ...Option) *Router {
	r := &Router{
		store:    store,
		recorder: metrics.Nop(),
		logger:   logrus.StandardLogger(),
		newRequestID: func() string {
			return gonanoid.Must()
		},
	}
	for _, opt := range opts {
		opt.apply(r)
	}
	return r
}

// ServeHTTP dispatches the request and records its latency.
// A panic while handling one request is answered with 500 and does not affect other requests.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	timer := r.recorder.OperationDuration(opOf(req.Method))
	defer timer.ObserveDuration()

	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = r.newRequestID()
	}
	w.Header().Set(RequestIDHeader, requestID)

	logger := r.logger.WithFields(logrus.Fields{
		"request_id": requestID,
		"method":     req.Method,
		"path":       req.URL.Path,
	})

	sw := &statusWriter{ResponseWriter: w}
	err := panicutil.Guard(func() error {
		return r.dispatch(sw, req)
	})
	switch {
	case err == nil:
	case errors.Is(err, http.ErrAbortHandler):
		// net/http aborts the response silently on this value.
		panic(http.ErrAbortHandler)
	case sw.status == 0 && isClientError(err):
		http.Error(sw, err.Error(), statusOf(err))
	default:
		logger.WithError(err).Error("request failed")
		if sw.status == 0 {
			http.Error(sw, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}

	logger.WithField("status", sw.Status()).Debug("request handled")
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) error {
	switch req.Method {
	case http.MethodGet:
		return r.get(w, req)
	case http.MethodPost:
		return r.post(w, req)
	default:
		return ErrMethodNotSupported
	}
}

func (r *Router) get(w http.ResponseWriter, req *http.Request) error {
	key, err := keyOf(req.URL.Path)
	if err != nil {
		return err
	}

	switch {
	case strings.EqualFold(key, SizeKey):
		w.Header().Set("Content-Type", textContentType)
		_, _ = io.WriteString(w, strconv.Itoa(r.store.Size()))

	case strings.EqualFold(key, MetricsKey):
		r.recorder.Handler().ServeHTTP(w, req)

	default:
		// An absent key answers an empty 200, not 404.
		if entry, ok := r.store.Get(key); ok {
			w.Header().Set("Content-Type", textContentType)
			_, _ = io.WriteString(w, entry.Value)
		}
	}
	return nil
}

func (r *Router) post(w http.ResponseWriter, req *http.Request) error {
	key, err := keyOf(req.URL.Path)
	if err != nil {
		return err
	}
	if isReserved(key) {
		return fmt.Errorf("%w: %s", ErrReservedKey, key)
	}

	body := req.Body
	if r.maxBodyBytes > 0 {
		body = http.MaxBytesReader(w, body, r.maxBodyBytes)
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnreadableBody, err)
	}

	value, err := decodeText(b)
	if err != nil {
		return err
	}

	r.store.Put(key, value)
	// Optimistic: overwrites count too. The evictor publishes the exact size on its next sweep.
	r.recorder.IncSize()

	w.WriteHeader(http.StatusOK)
	return nil
}

// keyOf returns the first non-empty segment of path. Later segments are ignored.
func keyOf(path string) (string, error) {
	for segment := range strings.SplitSeq(path, "/") {
		if segment != "" {
			return segment, nil
		}
	}
	return "", ErrEmptyKey
}

func isReserved(key string) bool {
	return strings.EqualFold(key, SizeKey) || strings.EqualFold(key, MetricsKey)
}

func decodeText(b []byte) (string, error) {
	if !utf8.Valid(b) {
		return "", ErrInvalidEncoding
	}
	return string(b), nil
}

func opOf(method string) metrics.Op {
	switch method {
	case http.MethodGet:
		return metrics.OpGet
	case http.MethodPost:
		return metrics.OpPost
	default:
		return metrics.OpOther
	}
}

// statusWriter remembers the status written to the response.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	if w.status == 0 {
		w.status = status
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

// Status returns the written status, or 200 if nothing was written yet.
func (w *statusWriter) Status() int {
	if w.status == 0 {
		return http.StatusOK
	}
	return w.status
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
