package logger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type lokiServer struct {
	*httptest.Server
	mu      sync.Mutex
	entries []LokiLogEntry
	paths   []string
}

func newLokiServer() *lokiServer {
	s := &lokiServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var entry LokiLogEntry
		json.NewDecoder(r.Body).Decode(&entry)

		s.mu.Lock()
		s.entries = append(s.entries, entry)
		s.paths = append(s.paths, r.URL.Path)
		s.mu.Unlock()

		w.WriteHeader(http.StatusNoContent)
	}))
	return s
}

func (s *lokiServer) received() []LokiLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]LokiLogEntry(nil), s.entries...)
}

func (s *lokiServer) receivedPaths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.paths...)
}

func lineCount(entries []LokiLogEntry) int {
	total := 0
	for _, entry := range entries {
		for _, stream := range entry.Streams {
			total += len(stream.Values)
		}
	}
	return total
}

func TestLokiLogger_BatchesLinesPerLevel(t *testing.T) {
	RegisterTestingT(t)
	server := newLokiServer()
	defer server.Close()

	log := newLogger(zap.NewNop(), "todoapi", server.URL+"/", time.Hour)

	log.InfoWithTrace(context.Background(), "HTTP Request", zap.Int("status", 200))
	log.InfoWithTrace(context.Background(), "HTTP Request", zap.Int("status", 201))
	log.WarnWithTrace(context.Background(), "HTTP Request", zap.Int("status", 404))

	Expect(log.Close()).To(Succeed())

	entries := server.received()
	Expect(entries).To(HaveLen(1))
	Expect(server.receivedPaths()).To(Equal([]string{"/loki/api/v1/push"}))
	Expect(entries[0].Streams).To(HaveLen(2))
	Expect(entries[0].Streams[0].Stream).To(Equal(map[string]string{"service": "todoapi", "level": "info"}))
	Expect(entries[0].Streams[0].Values).To(HaveLen(2))
	Expect(entries[0].Streams[1].Stream["level"]).To(Equal("warn"))

	var line map[string]any
	Expect(json.Unmarshal([]byte(entries[0].Streams[1].Values[0][1]), &line)).To(Succeed())
	Expect(line["message"]).To(Equal("HTTP Request"))
	Expect(line["status"]).To(BeNumerically("==", 404))
}

func TestLokiLogger_FlushesFullBatchBeforeClose(t *testing.T) {
	RegisterTestingT(t)
	server := newLokiServer()
	defer server.Close()

	log := newLogger(zap.NewNop(), "todoapi", server.URL, time.Hour)
	defer log.Close()

	for i := 0; i < lokiBatchSize; i++ {
		log.ErrorWithTrace(context.Background(), "Request failed", zap.String("n", strconv.Itoa(i)))
	}

	Eventually(func() int { return lineCount(server.received()) }, 2*time.Second).Should(Equal(lokiBatchSize))
	Expect(server.received()).To(HaveLen(1))
}

func TestLokiLogger_IncludesTraceIDs(t *testing.T) {
	RegisterTestingT(t)
	server := newLokiServer()
	defer server.Close()

	spanContext := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01},
		SpanID:     trace.SpanID{0x02},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), spanContext)

	log := newLogger(zap.NewNop(), "todoapi", server.URL, time.Hour)
	log.InfoWithTrace(ctx, "traced")
	log.Close()

	entries := server.received()
	Expect(entries).To(HaveLen(1))

	var line map[string]any
	Expect(json.Unmarshal([]byte(entries[0].Streams[0].Values[0][1]), &line)).To(Succeed())
	Expect(line["trace_id"]).To(Equal(spanContext.TraceID().String()))
	Expect(line["span_id"]).To(Equal(spanContext.SpanID().String()))
}

func TestLokiLogger_DropsLinesAfterClose(t *testing.T) {
	RegisterTestingT(t)
	server := newLokiServer()
	defer server.Close()

	log := newLogger(zap.NewNop(), "todoapi", server.URL, time.Hour)
	log.Close()
	log.Close()

	log.InfoWithTrace(context.Background(), "late")

	Expect(server.received()).To(BeEmpty())
}

func TestNopLogger_HasNoWorker(t *testing.T) {
	RegisterTestingT(t)
	log := NewNopLogger()

	log.ErrorWithTrace(context.Background(), "ignored", zap.Error(context.Canceled))

	Expect(log.queue).To(BeNil())
	Expect(log.Close()).To(Succeed())
}
