package wpforms

import (
	"bytes"
	"io"
	"net/http"
	"sync"
	"testing"

	mailercloud "github.com/sanzeeb3/mailercloud-go"
	"github.com/sanzeeb3/mailercloud-go/store"
)

type fakeResponse struct {
	status int
	body   string
	err    error
}

type recordedRequest struct {
	path   string
	apiKey string
	body   string
}

// fakeMailercloud answers by URL path and records every request.
type fakeMailercloud struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	reqs      []recordedRequest
}

func newFakeMailercloud() *fakeMailercloud {
	return &fakeMailercloud{
		responses: map[string]fakeResponse{
			"/v1/lists/search": {status: 200, body: `{"data":[{"id":"L1","name":"Leads"},{"id":"L2","name":"Customers"}]}`},
			"/v1/contacts":     {status: 200, body: `{"id":"contact-1"}`},
		},
	}
}

func (f *fakeMailercloud) RoundTrip(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, recordedRequest{
		path:   req.URL.Path,
		apiKey: req.Header.Get("Authorization"),
		body:   string(body),
	})

	res, ok := f.responses[req.URL.Path]
	if !ok {
		res = fakeResponse{status: 404, body: `{"errors":{"code":"not_found"}}`}
	}
	if res.err != nil {
		return nil, res.err
	}
	return &http.Response{
		StatusCode: res.status,
		Body:       io.NopCloser(bytes.NewBufferString(res.body)),
		Request:    req,
	}, nil
}

func (f *fakeMailercloud) requests(path string) []recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []recordedRequest
	for _, r := range f.reqs {
		if r.path == path {
			out = append(out, r)
		}
	}
	return out
}

type logRecord struct {
	title   string
	context any
	meta    LogMeta
}

type recordingEntryLog struct {
	mu      sync.Mutex
	records []logRecord
}

func (r *recordingEntryLog) Log(title string, context any, meta LogMeta) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, logRecord{title: title, context: context, meta: meta})
}

type countingMetrics struct {
	mu      sync.Mutex
	sent    int
	failed  int
	skipped map[string]int
	auth    map[bool]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{skipped: map[string]int{}, auth: map[bool]int{}}
}

func (c *countingMetrics) SubmissionSent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent++
}

func (c *countingMetrics) SubmissionFailed() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed++
}

func (c *countingMetrics) SubmissionSkipped(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.skipped[reason]++
}

func (c *countingMetrics) AuthAttempt(ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.auth[ok]++
}

type testProvider struct {
	*Mailercloud
	fake    *fakeMailercloud
	store   *store.Memory
	log     *recordingEntryLog
	metrics *countingMetrics
}

func newTestProvider(t *testing.T, opts ...Option) *testProvider {
	t.Helper()

	tp := &testProvider{
		fake:    newFakeMailercloud(),
		store:   store.NewMemory(),
		log:     &recordingEntryLog{},
		metrics: newCountingMetrics(),
	}
	opts = append([]Option{
		WithEntryLogger(tp.log),
		WithMetrics(tp.metrics),
		WithClientOptions(mailercloud.WithTransport(tp.fake)),
	}, opts...)
	tp.Mailercloud = NewMailercloud(tp.store, opts...)
	return tp
}
