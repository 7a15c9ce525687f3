package webhook

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const defaultUserAgent = "intake/0.1"

var (
	// ErrTransport marks failures where no HTTP response was received.
	ErrTransport = errors.New("transport failure")

	// ErrInvalidURL marks a missing or malformed endpoint URL.
	ErrInvalidURL = errors.New("invalid webhook url")
)

// Field is one text part of a multipart form. Order is preserved and names
// may repeat.
type Field struct {
	Name  string
	Value string
}

// Response is what the endpoint answered.
type Response struct {
	Status int
	Body   []byte
}

// OK reports a 2xx status.
func (r Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Poster sends multipart forms. *Client implements it.
type Poster interface {
	PostForm(ctx context.Context, rawURL string, fields []Field) (Response, error)
}

// Ensure Client implements Poster at compile time.
var _ Poster = (*Client)(nil)

// Client posts multipart forms to automation webhooks.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient builds a Client. A zero timeout leaves the transport defaults in
// place. No retries are configured.
func NewClient(timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	rc := resty.New().
		SetHeader("User-Agent", defaultUserAgent).
		SetLogger(logger.Sugar())
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}
	return &Client{http: rc, logger: logger}
}

// PostForm sends fields as multipart/form-data to rawURL.
func (c *Client) PostForm(ctx context.Context, rawURL string, fields []Field) (Response, error) {
	if c == nil {
		return Response{}, fmt.Errorf("client is nil")
	}
	target, err := ParseURL(rawURL)
	if err != nil {
		return Response{}, err
	}
	body, contentType, err := EncodeMultipart(fields)
	if err != nil {
		return Response{}, fmt.Errorf("encode form: %w", err)
	}

	started := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(body).
		Post(target.String())
	if err != nil {
		c.logger.Warn("webhook request failed",
			zap.String("host", target.Host),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return Response{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	c.logger.Debug("webhook responded",
		zap.String("host", target.Host),
		zap.Int("status", resp.StatusCode()),
		zap.Int("fields", len(fields)),
		zap.Duration("elapsed", time.Since(started)),
	)
	return Response{Status: resp.StatusCode(), Body: resp.Body()}, nil
}

// ParseURL validates an absolute http(s) endpoint URL.
func ParseURL(rawURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u, nil
}

// EncodeMultipart renders fields as a multipart/form-data body, one text
// part per field in order.
func EncodeMultipart(fields []Field) ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range fields {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", err
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
