package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"live-commerce/internal/logger"

	"go.uber.org/zap"
)

const (
	// DefaultTimeout bounds a request when no HTTP client is supplied
	DefaultTimeout = 15 * time.Second

	maxBodyBytes = 10 << 20
)

// Transport performs HTTP exchanges and maps every failure onto *Error.
// It is shared by the generic Client and by endpoint-specific clients such
// as auth.
type Transport struct {
	httpClient *http.Client
	authorize  func(*http.Request)
	logger     *zap.Logger
}

// Request describes a single exchange
type Request struct {
	Op          string
	Method      string
	URL         string
	Body        io.Reader
	ContentType string
}

// Response holds a successful (2xx) exchange
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewTransport creates a Transport. A nil httpClient gets DefaultTimeout;
// authorize may be nil.
func NewTransport(httpClient *http.Client, authorize func(*http.Request), log *zap.Logger) *Transport {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Transport{
		httpClient: httpClient,
		authorize:  authorize,
		logger:     logger.OrNop(log),
	}
}

// Do sends req. Non-2xx responses come back as KindHTTPStatus errors with
// the server's message when one can be found.
func (t *Transport) Do(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, req.Body)
	if err != nil {
		return nil, &Error{Kind: KindValidation, Op: req.Op, Message: fmt.Sprintf("invalid request: %v", err), Err: err}
	}
	httpReq.Header.Set("Accept", "application/json")
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	if t.authorize != nil {
		t.authorize(httpReq)
	}

	start := time.Now()
	resp, err := t.httpClient.Do(httpReq)
	if err != nil {
		rerr := transportError(ctx, req.Op, err)
		t.logger.Warn("Request failed",
			zap.String("op", req.Op),
			zap.String("method", req.Method),
			zap.String("url", req.URL),
			zap.String("kind", string(rerr.Kind)),
			zap.Error(err),
		)
		return nil, rerr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, transportError(ctx, req.Op, err)
	}

	t.logger.Debug("Request completed",
		zap.String("op", req.Op),
		zap.String("method", req.Method),
		zap.String("url", req.URL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := statusError(req.Op, resp.StatusCode, body)
		t.logger.Warn("Request rejected",
			zap.String("op", req.Op),
			zap.Int("status", resp.StatusCode),
			zap.String("message", serr.Message),
		)
		return nil, serr
	}

	return &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

// DecodeJSON decodes a successful body into v. An empty or unparsable body
// is a KindMalformedResponse error.
func DecodeJSON(op string, resp *Response, v interface{}) error {
	if len(resp.Body) == 0 {
		return malformedError(op, resp.Status, resp.Body, errors.New("empty response body"))
	}
	if err := json.Unmarshal(resp.Body, v); err != nil {
		return malformedError(op, resp.Status, resp.Body, err)
	}
	return nil
}

func transportError(ctx context.Context, op string, err error) *Error {
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(ctxErr, context.Canceled) {
		return canceledError(op, err)
	}
	return networkError(op, err)
}
