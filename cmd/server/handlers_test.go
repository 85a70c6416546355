package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"

	"github.com/baditaflorin/go_string_similarity/internal/adapters/logger"
	"github.com/baditaflorin/go_string_similarity/internal/config"
	"github.com/baditaflorin/go_string_similarity/pkg/similarity"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *server {
	t.Helper()

	cfg := config.Default()
	cfg.Server.MaxCandidates = 3
	cfg.Similarity.Precision = 4
	if mutate != nil {
		mutate(cfg)
	}
	require.NoError(t, cfg.Validate())

	log := logger.NewNopLogger()
	toolkit, err := similarity.New(
		similarity.WithPortLogger(log),
		similarity.WithThreshold(cfg.Similarity.Threshold),
		similarity.WithPrecision(cfg.Similarity.Precision),
		similarity.WithStrictParsing(cfg.Parser.Strict),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = toolkit.Close() })

	srv, err := newServer(cfg, toolkit, log)
	require.NoError(t, err)
	return srv
}

func doRequest(srv *server, method, path, body string) *fasthttp.RequestCtx {
	var req fasthttp.Request
	req.Header.SetMethod(method)
	req.SetRequestURI(path)
	req.SetBodyString(body)

	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	srv.requestHandler(ctx)
	return ctx
}

func decodeBody(t *testing.T, ctx *fasthttp.RequestCtx, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(ctx.Response.Body(), dst), "body: %s", ctx.Response.Body())
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	ctx := doRequest(srv, fasthttp.MethodGet, "/health", "")

	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	assert.Equal(t, "application/json", string(ctx.Response.Header.ContentType()))
	assert.NotEmpty(t, ctx.Response.Header.Peek("X-Request-ID"))

	var body map[string]interface{}
	decodeBody(t, ctx, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newTestServer(t, nil)

	var req fasthttp.Request
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("X-Request-ID", "abc-123")
	req.SetRequestURI("/health")
	ctx := &fasthttp.RequestCtx{}
	ctx.Init(&req, nil, nil)
	srv.requestHandler(ctx)

	assert.Equal(t, "abc-123", string(ctx.Response.Header.Peek("X-Request-ID")))
}

func TestSimilarityEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	ctx := doRequest(srv, fasthttp.MethodPost, "/similarity", `{"a":"kitten","b":"sitting"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp SimilarityResponse
	decodeBody(t, ctx, &resp)
	assert.Equal(t, "levenshtein", resp.Policy)
	assert.Equal(t, 0.5714, resp.Score)
	assert.Equal(t, 3, resp.Distance)
	assert.Equal(t, 6, resp.FirstLength)
	assert.Equal(t, 7, resp.SecondLength)
	assert.False(t, resp.Passed)

	ctx = doRequest(srv, fasthttp.MethodPost, "/similarity", `{"policy":"jaccard","a":"abc!","b":"a b c","normalize":true}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	decodeBody(t, ctx, &resp)
	assert.Equal(t, "jaccard", resp.Policy)
	assert.Equal(t, 1.0, resp.Score)
	assert.True(t, resp.Passed)
}

func TestSimilarityEndpointErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
	}{
		{name: "wrong method", method: fasthttp.MethodGet, path: "/similarity", status: fasthttp.StatusMethodNotAllowed},
		{name: "bad json", method: fasthttp.MethodPost, path: "/similarity", body: "{", status: fasthttp.StatusBadRequest},
		{name: "unknown policy", method: fasthttp.MethodPost, path: "/similarity", body: `{"policy":"cosine","a":"x","b":"y"}`, status: fasthttp.StatusBadRequest},
		{name: "unknown path", method: fasthttp.MethodPost, path: "/length", body: "{}", status: fasthttp.StatusNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ctx := doRequest(srv, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, ctx.Response.StatusCode())

			var resp ErrorResponse
			decodeBody(t, ctx, &resp)
			assert.NotEmpty(t, resp.Error)
		})
	}
}

func TestBestEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	ctx := doRequest(srv, fasthttp.MethodPost, "/best", `{"candidates":["cat","dog","cats"],"query":"cats","top":2}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp BestResponse
	decodeBody(t, ctx, &resp)
	assert.True(t, resp.Found)
	assert.Equal(t, "cats", resp.Candidate)
	assert.Equal(t, 2, resp.Index)
	assert.Equal(t, 1.0, resp.Score)
	require.Len(t, resp.Ranking, 2)
	assert.Equal(t, "cats", resp.Ranking[0].Candidate)
	assert.Equal(t, "cat", resp.Ranking[1].Candidate)
}

func TestBestEndpointNormalizeKeepsOriginalText(t *testing.T) {
	srv := newTestServer(t, nil)

	ctx := doRequest(srv, fasthttp.MethodPost, "/best", `{"candidates":["D.O.G.","C.A.T."],"query":"cat","normalize":true,"policy":"jaccard"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp BestResponse
	decodeBody(t, ctx, &resp)
	assert.Equal(t, 0.0, resp.Score)

	ctx = doRequest(srv, fasthttp.MethodPost, "/best", `{"candidates":["d.o.g.","c.a.t."],"query":"cat","normalize":true,"policy":"jaccard"}`)
	decodeBody(t, ctx, &resp)
	assert.Equal(t, "c.a.t.", resp.Candidate)
	assert.Equal(t, 1.0, resp.Score)
}

func TestBestEndpointEmptyAndLimits(t *testing.T) {
	srv := newTestServer(t, nil)

	ctx := doRequest(srv, fasthttp.MethodPost, "/best", `{"candidates":[],"query":"q"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	var resp BestResponse
	decodeBody(t, ctx, &resp)
	assert.False(t, resp.Found)
	assert.Equal(t, -1, resp.Index)
	assert.Empty(t, resp.Candidate)

	ctx = doRequest(srv, fasthttp.MethodPost, "/best", `{"candidates":["a","b","c","d"],"query":"q"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestNormalizeEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	ctx := doRequest(srv, fasthttp.MethodPost, "/normalize", `{"text":"你好，世界！"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp NormalizeResponse
	decodeBody(t, ctx, &resp)
	assert.Equal(t, "你好世界", resp.Text)
}

func TestParseEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	ctx := doRequest(srv, fasthttp.MethodPost, "/parse", `{"text":"1.0,abc,3.0"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp struct {
		OK     bool          `json:"ok"`
		Values []interface{} `json:"values"`
		Fields int           `json:"fields"`
	}
	decodeBody(t, ctx, &resp)
	assert.True(t, resp.OK)
	assert.Equal(t, []interface{}{1.0, 0.0, 3.0}, resp.Values)
	assert.Equal(t, 3, resp.Fields)

	ctx = doRequest(srv, fasthttp.MethodPost, "/parse", `{"text":"[]"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	decodeBody(t, ctx, &resp)
	assert.False(t, resp.OK)
	assert.Empty(t, resp.Values)

	ctx = doRequest(srv, fasthttp.MethodPost, "/parse", `{"text":"[1, nan]"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())
	decodeBody(t, ctx, &resp)
	assert.Equal(t, []interface{}{1.0, "NaN"}, resp.Values)

	ctx = doRequest(srv, fasthttp.MethodPost, "/parse", `{"text":"1.0,abc,3.0","strict":true}`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestParseEndpointStrictConfig(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.Parser.Strict = true })

	ctx := doRequest(srv, fasthttp.MethodPost, "/parse", `{"text":"1.0,abc"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())

	ctx = doRequest(srv, fasthttp.MethodPost, "/parse", `{"text":"1"}`)
	assert.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode())
}

func TestDistanceEndpoint(t *testing.T) {
	srv := newTestServer(t, nil)

	ctx := doRequest(srv, fasthttp.MethodPost, "/distance", `{"a":"kitten","b":"sitting"}`)
	require.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	var resp DistanceResponse
	decodeBody(t, ctx, &resp)
	assert.Equal(t, 3, resp.Distance)
}

func TestTextLengthLimit(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) { c.Server.MaxTextLength = 8 })

	// The limit counts characters, not bytes.
	atLimit := strings.Repeat("你", 8)
	overLimit := strings.Repeat("a", 9)

	accepted := []struct{ path, body string }{
		{"/distance", fmt.Sprintf(`{"a":%q,"b":%q}`, atLimit, atLimit)},
		{"/similarity", fmt.Sprintf(`{"a":%q,"b":"x"}`, atLimit)},
		{"/best", fmt.Sprintf(`{"query":%q,"candidates":[%q]}`, atLimit, atLimit)},
	}
	for _, tc := range accepted {
		ctx := doRequest(srv, fasthttp.MethodPost, tc.path, tc.body)
		assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode(), "%s %s", tc.path, tc.body)
	}

	rejected := []struct{ path, body string }{
		{"/distance", fmt.Sprintf(`{"a":%q,"b":"b"}`, overLimit)},
		{"/distance", fmt.Sprintf(`{"a":"a","b":%q}`, overLimit)},
		{"/similarity", fmt.Sprintf(`{"a":"a","b":%q}`, overLimit)},
		{"/best", fmt.Sprintf(`{"query":%q,"candidates":["a"]}`, overLimit)},
		{"/best", fmt.Sprintf(`{"query":"a","candidates":["a",%q]}`, overLimit)},
	}
	for _, tc := range rejected {
		ctx := doRequest(srv, fasthttp.MethodPost, tc.path, tc.body)
		require.Equal(t, fasthttp.StatusBadRequest, ctx.Response.StatusCode(), "%s %s", tc.path, tc.body)

		var resp ErrorResponse
		decodeBody(t, ctx, &resp)
		assert.Contains(t, resp.Error, "Text too long: 9 characters (max 8)")
	}
}

func TestRateLimit(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) {
		c.Server.RateLimit = 0.001
		c.Server.RateBurst = 1
	})

	ctx := doRequest(srv, fasthttp.MethodGet, "/health", "")
	assert.Equal(t, fasthttp.StatusOK, ctx.Response.StatusCode())

	ctx = doRequest(srv, fasthttp.MethodGet, "/health", "")
	assert.Equal(t, fasthttp.StatusTooManyRequests, ctx.Response.StatusCode())
}
