// Keyscope - Video Keyword Intelligence and Quota-Aware Retrieval
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/keyscope

package api

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/keyscope/internal/catalog"
	"github.com/tomtom215/keyscope/internal/events"
	"github.com/tomtom215/keyscope/internal/keywords"
	"github.com/tomtom215/keyscope/internal/llm"
	"github.com/tomtom215/keyscope/internal/middleware"
	"github.com/tomtom215/keyscope/internal/quota"
	"github.com/tomtom215/keyscope/internal/youtube"
)

const testSecret = "test-secret-key-with-at-least-32-characters"

type fakeSearcher struct {
	mu     sync.Mutex
	result *youtube.SearchResult
	err    error
	last   *youtube.SearchRequest
}

func (f *fakeSearcher) Search(_ context.Context, req *youtube.SearchRequest) (*youtube.SearchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *req
	f.last = &copied
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type fakeTopics struct {
	keyword string
	opts    llm.TopicOptions
}

func (f *fakeTopics) Topics(_ context.Context, keyword string, docs []keywords.Document, opts llm.TopicOptions) llm.TopicSet {
	f.keyword = keyword
	f.opts = opts
	topics := make([]llm.Topic, llm.TopicCount)
	for i := range topics {
		topics[i] = llm.Topic{ID: "t", Title: keyword, Category: "finance"}
	}
	return llm.TopicSet{Topics: topics, Keyword: keyword, AvgViews: int64(len(docs)), AIGenerated: false}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.SearchCompleted
}

func (p *recordingPublisher) PublishSearchCompleted(_ context.Context, ev events.SearchCompleted) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

type testEnv struct {
	handler     http.Handler
	search      *fakeSearcher
	topics      *fakeTopics
	publisher   *recordingPublisher
	credentials *quota.Manager
	admin       *AdminAuth
}

type envOption func(*ChiMiddlewareConfig, *bool)

func withAdminAuth() envOption {
	return func(_ *ChiMiddlewareConfig, admin *bool) { *admin = true }
}

func withMiddlewareConfig(mutate func(*ChiMiddlewareConfig)) envOption {
	return func(cfg *ChiMiddlewareConfig, _ *bool) { mutate(cfg) }
}

func newTestEnv(t *testing.T, opts ...envOption) *testEnv {
	t.Helper()

	mwCfg := DefaultChiMiddlewareConfig()
	mwCfg.CORSAllowedOrigins = []string{"*"}
	mwCfg.RateLimitDisabled = true
	adminEnabled := false
	for _, opt := range opts {
		opt(mwCfg, &adminEnabled)
	}

	scorer, err := keywords.NewScorer(keywords.DefaultConfig(), catalog.Default(), nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewScorer() error = %v", err)
	}
	manager, err := quota.NewManager(quota.Config{DailyLimit: 1000, TimeZone: "UTC"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewManager() error = %v", err)
	}
	manager.SetCredentials([]string{"key-alpha-0000000000000001"})

	admin, err := NewAdminAuth(testSecret, adminEnabled)
	if err != nil {
		t.Fatalf("NewAdminAuth() error = %v", err)
	}

	env := &testEnv{
		search:      &fakeSearcher{result: &youtube.SearchResult{Results: []keywords.Document{}}},
		topics:      &fakeTopics{},
		publisher:   &recordingPublisher{},
		credentials: manager,
		admin:       admin,
	}
	h := NewHandler(Dependencies{
		Search:      env.search,
		Scorer:      scorer,
		Topics:      env.topics,
		Credentials: manager,
		Events:      env.publisher,
		Performance: middleware.NewPerformanceMonitor(100, time.Minute),
		Version:     "test",
	}, zerolog.Nop())
	env.handler = NewRouter(h, NewChiMiddleware(mwCfg), admin).SetupChi()
	return env
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, header http.Header) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json; charset=utf-8" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
		}
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("decode data: %v (data %s)", err, string(env.Data))
	}
}
