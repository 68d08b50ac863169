package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"todoapi/pkg/tracing"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	lokiQueueSize  = 1024
	lokiBatchSize  = 100
	lokiFlushEvery = time.Second
)

// LokiLogger is the application logger. Entries go to stdout through zap,
// carry the trace context through otelzap, and are optionally pushed to Loki
// in batches by a single background worker.
type LokiLogger struct {
	Logger      *otelzap.Logger
	ServiceName string
	lokiURL     string
	httpClient  *http.Client

	queue   chan lokiLine
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Int64
}

type LokiLogEntry struct {
	Streams []LokiStream `json:"streams"`
}

type LokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

type lokiLine struct {
	level string
	at    time.Time
	line  string
}

// NewLokiLogger builds a production zap logger. An empty lokiURL disables the
// Loki push.
func NewLokiLogger(serviceName, lokiURL string, debug bool) (*LokiLogger, error) {
	config := zap.NewProductionConfig()
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.EncoderConfig.TimeKey = "timestamp"

	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	zapLogger, err := config.Build(zap.Fields(zap.String("service", serviceName)))
	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	return newLogger(zapLogger, serviceName, lokiURL, lokiFlushEvery), nil
}

// NewNopLogger discards everything.
func NewNopLogger() *LokiLogger {
	return newLogger(zap.NewNop(), "todoapi", "", lokiFlushEvery)
}

func newLogger(zapLogger *zap.Logger, serviceName, lokiURL string, flushEvery time.Duration) *LokiLogger {
	l := &LokiLogger{
		Logger:      otelzap.New(zapLogger),
		ServiceName: serviceName,
		httpClient:  &http.Client{Timeout: 5 * time.Second},
	}

	if lokiURL != "" {
		l.lokiURL = strings.TrimRight(lokiURL, "/") + "/loki/api/v1/push"
		l.queue = make(chan lokiLine, lokiQueueSize)
		l.done = make(chan struct{})
		go l.run(flushEvery)
	}

	return l
}

func (l *LokiLogger) Sync() error {
	return l.Logger.Sync()
}

// Close flushes pending Loki lines and stops the worker. Lines logged after
// Close only reach zap.
func (l *LokiLogger) Close() error {
	if l.queue != nil {
		l.mu.Lock()
		if !l.closed {
			l.closed = true
			close(l.queue)
		}
		l.mu.Unlock()

		<-l.done
	}

	if dropped := l.dropped.Load(); dropped > 0 {
		l.Logger.Warn("Loki queue overflowed", zap.Int64("dropped", dropped))
	}

	return l.Sync()
}

func (l *LokiLogger) InfoWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.Logger.Ctx(ctx).Info(msg, fields...)
	l.enqueue(ctx, zapcore.InfoLevel, msg, fields)
}

func (l *LokiLogger) WarnWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.Logger.Ctx(ctx).Warn(msg, fields...)
	l.enqueue(ctx, zapcore.WarnLevel, msg, fields)
}

func (l *LokiLogger) ErrorWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.Logger.Ctx(ctx).Error(msg, fields...)
	l.enqueue(ctx, zapcore.ErrorLevel, msg, fields)
}

// enqueue hands one line to the worker without blocking. A full queue drops
// the line.
func (l *LokiLogger) enqueue(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field) {
	if l.queue == nil {
		return
	}

	encoder := zapcore.NewMapObjectEncoder()
	for _, field := range fields {
		field.AddTo(encoder)
	}

	now := time.Now()
	line := encoder.Fields
	line["timestamp"] = now.Format(time.RFC3339Nano)
	line["level"] = level.String()
	line["message"] = msg
	line["service"] = l.ServiceName

	if traceID := tracing.GetTraceID(ctx); traceID != "" {
		line["trace_id"] = traceID
		line["span_id"] = tracing.GetSpanID(ctx)
	}

	encoded, err := json.Marshal(line)
	if err != nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.closed {
		return
	}

	select {
	case l.queue <- lokiLine{level: level.String(), at: now, line: string(encoded)}:
	default:
		l.dropped.Add(1)
	}
}

func (l *LokiLogger) run(flushEvery time.Duration) {
	defer close(l.done)

	ticker := time.NewTicker(flushEvery)
	defer ticker.Stop()

	batch := make([]lokiLine, 0, lokiBatchSize)
	flush := func() {
		if len(batch) > 0 {
			l.push(batch)
			batch = batch[:0]
		}
	}

	for {
		select {
		case line, ok := <-l.queue:
			if !ok {
				flush()
				return
			}

			batch = append(batch, line)
			if len(batch) >= lokiBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// push sends one batch, one stream per level. Failures are dropped.
func (l *LokiLogger) push(batch []lokiLine) {
	entry := LokiLogEntry{}
	streams := map[string]int{}

	for _, line := range batch {
		i, ok := streams[line.level]
		if !ok {
			i = len(entry.Streams)
			streams[line.level] = i
			entry.Streams = append(entry.Streams, LokiStream{
				Stream: map[string]string{
					"service": l.ServiceName,
					"level":   line.level,
				},
			})
		}

		entry.Streams[i].Values = append(entry.Streams[i].Values,
			[]string{fmt.Sprintf("%d", line.at.UnixNano()), line.line})
	}

	body, err := json.Marshal(entry)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, l.lokiURL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return
	}
	defer resp.Body.Close()

	io.Copy(io.Discard, resp.Body)
}
