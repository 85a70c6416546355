package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"

	"github.com/baditaflorin/go_string_similarity/internal/adapters/parser"
	"github.com/baditaflorin/go_string_similarity/internal/config"
	"github.com/baditaflorin/go_string_similarity/internal/ports"
	"github.com/baditaflorin/go_string_similarity/pkg/similarity"
)

// requestTimeout bounds a single best-match scan.
const requestTimeout = 30 * time.Second

// SimilarityRequest is the body of /similarity.
type SimilarityRequest struct {
	Policy    string `json:"policy,omitempty"`
	A         string `json:"a"`
	B         string `json:"b"`
	Normalize bool   `json:"normalize,omitempty"`
}

// SimilarityResponse is returned by /similarity.
type SimilarityResponse struct {
	Policy         string                 `json:"policy"`
	Score          float64                `json:"score"`
	Passed         bool                   `json:"passed"`
	Threshold      float64                `json:"threshold"`
	Distance       int                    `json:"distance"`
	FirstLength    int                    `json:"first_length"`
	SecondLength   int                    `json:"second_length"`
	ProcessingTime string                 `json:"processing_time,omitempty"`
	Details        map[string]interface{} `json:"details,omitempty"`
}

// BestRequest is the body of /best. Top > 0 adds a ranking of that many candidates.
type BestRequest struct {
	Policy     string   `json:"policy,omitempty"`
	Candidates []string `json:"candidates"`
	Query      string   `json:"query"`
	Normalize  bool     `json:"normalize,omitempty"`
	Top        int      `json:"top,omitempty"`
}

// RankedCandidate is one entry of a /best ranking.
type RankedCandidate struct {
	Candidate string  `json:"candidate"`
	Index     int     `json:"index"`
	Score     float64 `json:"score"`
}

// BestResponse is returned by /best.
type BestResponse struct {
	Candidate string            `json:"candidate"`
	Index     int               `json:"index"`
	Score     float64           `json:"score"`
	Found     bool              `json:"found"`
	Ranking   []RankedCandidate `json:"ranking,omitempty"`
}

// NormalizeRequest is the body of /normalize.
type NormalizeRequest struct {
	Text string `json:"text"`
}

// NormalizeResponse is returned by /normalize.
type NormalizeResponse struct {
	Text string `json:"text"`
}

// ParseRequest is the body of /parse. Strict forces strict parsing for this request.
type ParseRequest struct {
	Text   string `json:"text"`
	Strict bool   `json:"strict,omitempty"`
}

// ParseResponse is returned by /parse.
type ParseResponse struct {
	OK     bool        `json:"ok"`
	Values []jsonFloat `json:"values"`
	Fields int         `json:"fields"`
}

// DistanceRequest is the body of /distance.
type DistanceRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

// DistanceResponse is returned by /distance.
type DistanceResponse struct {
	Distance int `json:"distance"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// jsonFloat encodes NaN and infinities as strings, which plain JSON numbers cannot hold.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return json.Marshal(strconv.FormatFloat(v, 'g', -1, 64))
	}
	return json.Marshal(v)
}

// server holds the state shared by all handlers.
type server struct {
	toolkit       *similarity.Toolkit
	logger        ports.Logger
	policy        similarity.Policy
	maxCandidates int
	maxTextLength int
	limiter       *rate.Limiter
}

func newServer(cfg *config.Config, toolkit *similarity.Toolkit, logger ports.Logger) (*server, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}

	s := &server{
		toolkit:       toolkit,
		logger:        logger,
		policy:        policy,
		maxCandidates: cfg.Server.MaxCandidates,
		maxTextLength: cfg.Server.MaxTextLength,
	}
	if cfg.Server.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.Server.RateLimit), cfg.Server.RateBurst)
	}
	return s, nil
}

// requestHandler is the main fasthttp request handler
func (s *server) requestHandler(ctx *fasthttp.RequestCtx) {
	startTime := time.Now()

	requestID := string(ctx.Request.Header.Peek("X-Request-ID"))
	if requestID == "" {
		requestID = uuid.NewString()
	}

	// Set common headers
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.Response.Header.Set("Server", "StringSimilarityServer")
	ctx.Response.Header.Set("X-Request-ID", requestID)

	if s.limiter != nil && !s.limiter.Allow() {
		ctx.SetStatusCode(fasthttp.StatusTooManyRequests)
		s.writeJSONError(ctx, "Rate limit exceeded")
	} else {
		s.route(ctx)
	}

	s.logger.Info("Request processed",
		"request_id", requestID,
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"ip", ctx.RemoteIP().String(),
		"duration", time.Since(startTime),
	)
}

func (s *server) route(ctx *fasthttp.RequestCtx) {
	switch string(ctx.Path()) {
	case "/health":
		s.handleHealthCheck(ctx)
	case "/similarity":
		s.handleSimilarity(ctx)
	case "/best":
		s.handleBestMatch(ctx)
	case "/normalize":
		s.handleNormalize(ctx)
	case "/parse":
		s.handleParse(ctx)
	case "/distance":
		s.handleDistance(ctx)
	default:
		ctx.SetStatusCode(fasthttp.StatusNotFound)
		s.writeJSONError(ctx, "Not found")
	}
}

func (s *server) handleHealthCheck(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *server) handleSimilarity(ctx *fasthttp.RequestCtx) {
	var req SimilarityRequest
	if !s.decodePost(ctx, &req) {
		return
	}

	if !s.checkTextLength(ctx, req.A, req.B) {
		return
	}

	policy, ok := s.resolvePolicy(ctx, req.Policy)
	if !ok {
		return
	}

	a, b := req.A, req.B
	if req.Normalize {
		a, b = s.toolkit.Normalize(a), s.toolkit.Normalize(b)
	}

	start := time.Now()
	result := s.toolkit.Compare(context.Background(), policy, a, b)

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, SimilarityResponse{
		Policy:         result.Policy.String(),
		Score:          result.Score,
		Passed:         result.Passed,
		Threshold:      result.Threshold,
		Distance:       result.Distance,
		FirstLength:    result.FirstLength,
		SecondLength:   result.SecondLength,
		ProcessingTime: time.Since(start).String(),
		Details:        result.Details,
	})
}

func (s *server) handleBestMatch(ctx *fasthttp.RequestCtx) {
	var req BestRequest
	if !s.decodePost(ctx, &req) {
		return
	}

	if len(req.Candidates) > s.maxCandidates {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		s.writeJSONError(ctx, fmt.Sprintf("Too many candidates: %d (max %d)", len(req.Candidates), s.maxCandidates))
		return
	}
	if !s.checkTextLength(ctx, req.Query) || !s.checkTextLength(ctx, req.Candidates...) {
		return
	}

	policy, ok := s.resolvePolicy(ctx, req.Policy)
	if !ok {
		return
	}

	// Score normalized copies but report the caller's original text.
	candidates, query := req.Candidates, req.Query
	if req.Normalize {
		candidates = make([]string, len(req.Candidates))
		for i, c := range req.Candidates {
			candidates[i] = s.toolkit.Normalize(c)
		}
		query = s.toolkit.Normalize(query)
	}

	c, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	match, err := s.toolkit.FindBest(c, policy, candidates, query)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusServiceUnavailable)
		s.writeJSONError(ctx, "Best match search aborted: "+err.Error())
		return
	}

	response := BestResponse{
		Index: match.Index,
		Score: match.Score,
		Found: match.Found,
	}
	if match.Found {
		response.Candidate = req.Candidates[match.Index]
	}

	if req.Top > 0 {
		for _, m := range s.toolkit.Rank(policy, candidates, query, req.Top) {
			response.Ranking = append(response.Ranking, RankedCandidate{
				Candidate: req.Candidates[m.Index],
				Index:     m.Index,
				Score:     m.Score,
			})
		}
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, response)
}

func (s *server) handleNormalize(ctx *fasthttp.RequestCtx) {
	var req NormalizeRequest
	if !s.decodePost(ctx, &req) {
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, NormalizeResponse{Text: s.toolkit.Normalize(req.Text)})
}

func (s *server) handleParse(ctx *fasthttp.RequestCtx) {
	var req ParseRequest
	if !s.decodePost(ctx, &req) {
		return
	}

	var (
		result similarity.FloatArray
		err    error
	)
	if req.Strict {
		result, err = parser.ParseFloatArrayStrict(req.Text)
	} else {
		result, err = s.toolkit.ParseFloatArray(req.Text)
	}
	if err != nil {
		status := fasthttp.StatusInternalServerError
		if isClientError(err) {
			status = fasthttp.StatusBadRequest
		}
		ctx.SetStatusCode(status)
		s.writeJSONError(ctx, err.Error())
		return
	}

	values := make([]jsonFloat, len(result.Values))
	for i, v := range result.Values {
		values[i] = jsonFloat(v)
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, ParseResponse{
		OK:     result.OK,
		Values: values,
		Fields: result.Fields,
	})
}

func (s *server) handleDistance(ctx *fasthttp.RequestCtx) {
	var req DistanceRequest
	if !s.decodePost(ctx, &req) || !s.checkTextLength(ctx, req.A, req.B) {
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	s.writeJSONResponse(ctx, DistanceResponse{Distance: s.toolkit.Distance(req.A, req.B)})
}

// decodePost rejects non-POST requests and decodes the JSON body into dst.
// It reports false after writing an error response.
func (s *server) decodePost(ctx *fasthttp.RequestCtx, dst interface{}) bool {
	if !ctx.IsPost() {
		ctx.SetStatusCode(fasthttp.StatusMethodNotAllowed)
		s.writeJSONError(ctx, "Method not allowed")
		return false
	}

	if err := json.Unmarshal(ctx.PostBody(), dst); err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		s.writeJSONError(ctx, "Invalid request: "+err.Error())
		return false
	}
	return true
}

// checkTextLength rejects any text longer than the configured rune limit.
func (s *server) checkTextLength(ctx *fasthttp.RequestCtx, texts ...string) bool {
	for _, text := range texts {
		if n := utf8.RuneCountInString(text); n > s.maxTextLength {
			ctx.SetStatusCode(fasthttp.StatusBadRequest)
			s.writeJSONError(ctx, fmt.Sprintf("Text too long: %d characters (max %d)", n, s.maxTextLength))
			return false
		}
	}
	return true
}

// resolvePolicy maps an optional policy name to a Policy, falling back to the configured default.
func (s *server) resolvePolicy(ctx *fasthttp.RequestCtx, name string) (similarity.Policy, bool) {
	if name == "" {
		return s.policy, true
	}

	policy, err := similarity.ParsePolicy(name)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusBadRequest)
		s.writeJSONError(ctx, err.Error())
		return 0, false
	}
	return policy, true
}

// writeJSONResponse writes a JSON response to the context
func (s *server) writeJSONResponse(ctx *fasthttp.RequestCtx, data interface{}) {
	response, err := json.Marshal(data)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		s.logger.Error("Error marshaling JSON response", "error", err)
		s.writeJSONError(ctx, "Internal server error")
		return
	}

	ctx.SetBody(response)
}

// writeJSONError writes a JSON error response to the context
func (s *server) writeJSONError(ctx *fasthttp.RequestCtx, message string) {
	response, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		s.logger.Error("Error marshaling JSON error response", "error", err)
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"error":"Internal server error"}`)
		return
	}

	ctx.SetBody(response)
}

// isClientError reports whether err was caused by the request rather than the server.
func isClientError(err error) bool {
	return errors.Is(err, parser.ErrInvalidField) || errors.Is(err, parser.ErrInputTooShort)
}
