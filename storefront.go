// Package storefront is a client SDK for a GraphQL storefront API. It
// fetches catalog entities (shop, products, collections) and manages a
// checkout lifecycle without the caller hand-writing GraphQL documents.
//
// Every operation composes a selection tree from a default or caller
// supplied FieldSelector, dispatches it once, and then transparently walks
// cursor-based connections (images, variants, line items) to completion
// before returning, so callers only ever see fully materialized
// collections. Mutations additionally carry a mandatory userErrors
// sub-selection; a non-empty list fails the call with a
// *MutationRejectedError before any pagination begins.
package storefront

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
)

// RequestModifier allows tweaking the HTTP request before it is sent. It
// is the place to set authentication headers, which this package does not
// construct itself.
type RequestModifier func(*http.Request)

// Client talks to one storefront endpoint.
//
// The With* methods follow an immutable pattern: they return a new Client
// instance rather than modifying the receiver, so a configured Client is
// safe for concurrent use. Always use the returned Client:
//
//	client = client.WithDebug(true)
//
// Methods can be chained since each returns a new Client.
type Client struct {
	url             string // GraphQL endpoint URL.
	httpClient      *http.Client
	requestModifier RequestModifier
	pageSize        int
	debug           bool
}

// NewClient creates a storefront client targeting the specified GraphQL
// endpoint URL. If httpClient is nil, then http.DefaultClient is used.
func NewClient(url string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		url:        url,
		httpClient: httpClient,
		pageSize:   DefaultPageSize,
	}
}

// clone creates a copy of the Client with all fields preserved.
func (c *Client) clone() *Client {
	return &Client{
		url:             c.url,
		httpClient:      c.httpClient,
		requestModifier: c.requestModifier,
		pageSize:        c.pageSize,
		debug:           c.debug,
	}
}

// WithRequestModifier returns a new Client with the request modifier set.
// The modifier runs on every dispatch, including page fetches issued by
// the pagination engine.
func (c *Client) WithRequestModifier(f RequestModifier) *Client {
	clone := c.clone()
	clone.requestModifier = f
	return clone
}

// WithDebug returns a new Client with debug mode enabled or disabled.
// When enabled, errors carry the request and response bodies in their
// extensions, which is useful for troubleshooting storefront API issues.
func (c *Client) WithDebug(debug bool) *Client {
	clone := c.clone()
	clone.debug = debug
	return clone
}

// WithDefaultPageSize returns a new Client whose connection walks request
// n entities per page. It can still be overridden per call with
// WithPageSize.
func (c *Client) WithDefaultPageSize(n int) *Client {
	clone := c.clone()
	clone.pageSize = n
	return clone
}

// do dispatches the selection tree rooted at root once and returns the raw
// "data" payload. GraphQL server errors come back as Errors; transport and
// decode failures as single-element Errors with a code extension.
func (c *Client) do(
	ctx context.Context,
	op operationType,
	root *Node,
) ([]byte, error) {
	doc, err := constructOperation(op, root)
	if err != nil {
		return nil, newSimpleErrors(ErrGraphQLEncode, err)
	}

	request, reqBody, err := c.buildRequest(ctx, doc)
	if err != nil {
		return nil, Errors{c.newRequestError(err, request, nil, reqBody, nil)}
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return nil, Errors{c.newRequestError(err, request, nil, reqBody, nil)}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("%v; body: %q", resp.Status, body)
		return nil, Errors{c.newRequestError(err, request, nil, reqBody, nil)}
	}

	r, err := decompressResponse(resp)
	if err != nil {
		return nil, newSimpleErrors(ErrJsonDecode, err)
	}
	defer func() { _ = r.Close() }()

	var respBody []byte
	var reader io.Reader = r
	if c.debug {
		respBody, err = io.ReadAll(r)
		if err != nil {
			return nil, newSimpleErrors(ErrJsonDecode, err)
		}
		reader = bytes.NewReader(respBody)
	}

	var out struct {
		Data   *json.RawMessage
		Errors Errors
	}
	if err := json.NewDecoder(reader).Decode(&out); err != nil {
		e := newError(ErrJsonDecode, err)
		if c.debug {
			e = e.withRequest(request, bytes.NewReader(reqBody))
			e = e.withResponse(resp, bytes.NewReader(respBody))
		}
		return nil, Errors{e}
	}

	var rawData []byte
	if out.Data != nil && len(*out.Data) > 0 {
		rawData = *out.Data
	}

	if len(out.Errors) > 0 {
		if c.debug {
			out.Errors[0] = out.Errors[0].
				withRequest(request, bytes.NewReader(reqBody)).
				withResponse(resp, bytes.NewReader(respBody))
		}
		return rawData, out.Errors
	}

	return rawData, nil
}

// buildRequest constructs the HTTP request carrying the GraphQL document.
// Every request is tagged with a fresh X-Request-ID so individual page
// fetches of one logical call can be told apart server-side.
func (c *Client) buildRequest(
	ctx context.Context,
	doc string,
) (*http.Request, []byte, error) {
	in := struct {
		Query string `json:"query"`
	}{
		Query: doc,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(in); err != nil {
		return nil, nil, err
	}

	reqBody := buf.Bytes()
	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.url,
		bytes.NewReader(reqBody),
	)
	if err != nil {
		return nil, reqBody, err
	}
	request.Header.Add("Content-Type", "application/json")
	request.Header.Add("X-Request-ID", uuid.NewString())

	if c.requestModifier != nil {
		c.requestModifier(request)
	}

	return request, reqBody, nil
}

// decompressResponse wraps the response body with a gzip reader when the
// Content-Encoding header indicates gzip compression.
func decompressResponse(resp *http.Response) (io.ReadCloser, error) {
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("problem trying to create gzip reader: %w", err)
		}
		return gr, nil
	}
	return io.NopCloser(resp.Body), nil
}

func (c *Client) newRequestError(
	err error,
	req *http.Request,
	resp *http.Response,
	reqBody, respBody []byte,
) Error {
	e := newError(ErrRequestError, err)
	if !c.debug {
		return e
	}
	if req != nil && reqBody != nil {
		e = e.withRequest(req, bytes.NewReader(reqBody))
	}
	if resp != nil && respBody != nil {
		e = e.withResponse(resp, bytes.NewReader(respBody))
	}
	return e
}

// decodeData unmarshals a raw "data" payload into v.
func decodeData(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return newSimpleErrors(ErrGraphQLDecode, err)
	}
	return nil
}
