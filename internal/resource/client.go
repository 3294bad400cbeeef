package resource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Encoding selects how Create and Update send their payload. One endpoint
// always uses the same encoding.
type Encoding int

const (
	// EncodingJSON sends the payload as an application/json body
	EncodingJSON Encoding = iota
	// EncodingMultipart sends the payload JSON-encoded in one form field and
	// the optional attachment in another
	EncodingMultipart
)

// Multipart field names used when Config leaves them empty
const (
	// DefaultPayloadField carries the JSON-encoded payload
	DefaultPayloadField = "product"
	// DefaultFileField carries the attachment
	DefaultFileField = "image"
)

var validate = validator.New()

// Config describes one REST collection.
type Config[R, V any] struct {
	// Name is used in operation labels, e.g. "products"
	Name      string
	BaseURL   string
	Normalize func(R) V
	Encoding  Encoding
	// PayloadField and FileField name the multipart fields
	PayloadField string
	FileField    string
	// Validate checks a payload before any request is made. Defaults to
	// struct tag validation.
	Validate  func(interface{}) error
	Transport *Transport
}

// Client talks to one REST collection: GET/POST on the base URL and
// GET/PUT/DELETE on {base}/{id}. P is the payload sent on create and update,
// R the raw server record and V the normalized view returned to callers.
type Client[P, R, V any] struct {
	name         string
	baseURL      string
	normalize    func(R) V
	encoding     Encoding
	payloadField string
	fileField    string
	validate     func(interface{}) error
	transport    *Transport
}

// NewClient builds a client from cfg.
func NewClient[P, R, V any](cfg Config[R, V]) (*Client[P, R, V], error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("resource: base URL is required")
	}
	if cfg.Normalize == nil {
		return nil, errors.New("resource: normalize func is required")
	}

	c := &Client[P, R, V]{
		name:         cfg.Name,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		normalize:    cfg.Normalize,
		encoding:     cfg.Encoding,
		payloadField: cfg.PayloadField,
		fileField:    cfg.FileField,
		validate:     cfg.Validate,
		transport:    cfg.Transport,
	}
	if c.name == "" {
		c.name = "resource"
	}
	if c.payloadField == "" {
		c.payloadField = DefaultPayloadField
	}
	if c.fileField == "" {
		c.fileField = DefaultFileField
	}
	if c.validate == nil {
		c.validate = ValidateStruct
	}
	if c.transport == nil {
		c.transport = NewTransport(nil, nil, nil)
	}
	return c, nil
}

// BaseURL returns the collection endpoint
func (c *Client[P, R, V]) BaseURL() string { return c.baseURL }

// List fetches the collection, optionally filtered by query.
func (c *Client[P, R, V]) List(ctx context.Context, query url.Values) ([]V, error) {
	op := c.op("list")

	target := c.baseURL
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	resp, err := c.transport.Do(ctx, Request{Op: op, Method: http.MethodGet, URL: target})
	if err != nil {
		return nil, err
	}

	var records []R
	if err := DecodeJSON(op, resp, &records); err != nil {
		return nil, err
	}

	views := make([]V, 0, len(records))
	for _, r := range records {
		views = append(views, c.normalize(r))
	}
	return views, nil
}

// Get fetches a single record. A blank id is rejected without a request.
func (c *Client[P, R, V]) Get(ctx context.Context, id string) (V, error) {
	op := c.op("get")
	var zero V

	target, err := c.itemURL(op, id)
	if err != nil {
		return zero, err
	}

	resp, err := c.transport.Do(ctx, Request{Op: op, Method: http.MethodGet, URL: target})
	if err != nil {
		return zero, err
	}
	return c.decodeOne(op, resp)
}

// Create posts a new record. file may be nil.
func (c *Client[P, R, V]) Create(ctx context.Context, payload P, file *File) (V, error) {
	return c.send(ctx, c.op("create"), http.MethodPost, c.baseURL, payload, file)
}

// Update replaces the record with id. A nil file leaves the stored
// attachment untouched: the file field is omitted, never sent empty.
func (c *Client[P, R, V]) Update(ctx context.Context, id string, payload P, file *File) (V, error) {
	op := c.op("update")

	target, err := c.itemURL(op, id)
	if err != nil {
		var zero V
		return zero, err
	}
	return c.send(ctx, op, http.MethodPut, target, payload, file)
}

// Remove deletes the record with id. Any response body is ignored.
func (c *Client[P, R, V]) Remove(ctx context.Context, id string) error {
	op := c.op("remove")

	target, err := c.itemURL(op, id)
	if err != nil {
		return err
	}

	_, err = c.transport.Do(ctx, Request{Op: op, Method: http.MethodDelete, URL: target})
	return err
}

func (c *Client[P, R, V]) send(ctx context.Context, op, method, target string, payload P, file *File) (V, error) {
	var zero V

	if err := c.validate(payload); err != nil {
		return zero, ValidationError(op, err)
	}

	body, contentType, err := c.encode(op, payload, file)
	if err != nil {
		return zero, err
	}

	resp, err := c.transport.Do(ctx, Request{
		Op:          op,
		Method:      method,
		URL:         target,
		Body:        body,
		ContentType: contentType,
	})
	if err != nil {
		return zero, err
	}
	return c.decodeOne(op, resp)
}

func (c *Client[P, R, V]) encode(op string, payload P, file *File) (io.Reader, string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, "", &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf("failed to encode payload: %v", err), Err: err}
	}

	if c.encoding == EncodingJSON {
		if file != nil {
			return nil, "", ValidationError(op, ErrFileNotAllowed)
		}
		return bytes.NewReader(data), "application/json", nil
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField(c.payloadField, string(data)); err != nil {
		return nil, "", fmt.Errorf("failed to write payload field: %w", err)
	}

	if file != nil {
		if err := writeFilePart(w, c.fileField, file); err != nil {
			return nil, "", &Error{Kind: KindValidation, Op: op, Message: fmt.Sprintf("failed to attach file: %v", err), Err: err}
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

func writeFilePart(w *multipart.Writer, field string, file *File) error {
	name := file.Name
	if name == "" {
		name = field
	}
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, quoteEscaper.Replace(field), quoteEscaper.Replace(name)))
	h.Set("Content-Type", contentType)

	part, err := w.CreatePart(h)
	if err != nil {
		return err
	}
	if file.Content == nil {
		return nil
	}
	_, err = io.Copy(part, file.Content)
	return err
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func (c *Client[P, R, V]) decodeOne(op string, resp *Response) (V, error) {
	var (
		zero   V
		record R
	)
	if err := DecodeJSON(op, resp, &record); err != nil {
		return zero, err
	}
	return c.normalize(record), nil
}

func (c *Client[P, R, V]) itemURL(op, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ValidationError(op, ErrMissingID)
	}
	return c.baseURL + "/" + url.PathEscape(id), nil
}

func (c *Client[P, R, V]) op(verb string) string {
	return verb + " " + c.name
}

// ValidateStruct validates struct payloads by their `validate` tags. Other
// payload kinds pass through.
func ValidateStruct(v interface{}) error {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return errors.New("payload is required")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}
	return validate.Struct(rv.Interface())
}
