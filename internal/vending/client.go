package vending

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Call names, used in errors, logs and metrics
const (
	CallListProducts    = "list_products"
	CallCreateProduct   = "create_product"
	CallGeneratePayment = "generate_qr"
	CallHealth          = "health"
)

// Client talks to the vending backend over HTTP
type Client struct {
	baseURL string
	client  *http.Client

	// DispenserID, when set, restricts the product list to one dispenser
	DispenserID string

	// OnRequest is called after every backend call with its outcome
	OnRequest func(call, outcome string, elapsed time.Duration)
}

// NewClient creates a backend client. A nil httpClient means a plain client
// without timeout.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  httpClient,
	}
}

// BaseURL returns the backend root the client points at
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ListProducts fetches the product list
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	path := "/api/productos"
	if c.DispenserID != "" {
		path += "?" + url.Values{"dispenser_id": {c.DispenserID}}.Encode()
	}

	var products []Product
	if err := c.do(ctx, CallListProducts, http.MethodGet, path, nil, &products); err != nil {
		return nil, err
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}

// CreateProduct posts a new product. Only the status of the answer matters.
func (c *Client) CreateProduct(ctx context.Context, p NewProduct) error {
	return c.do(ctx, CallCreateProduct, http.MethodPost, "/api/productos", p, nil)
}

// GeneratePayment asks the backend for the payment payload of a product. The
// payload is an opaque string meant to be rendered as a QR code.
func (c *Client) GeneratePayment(ctx context.Context, id ProductID) (string, error) {
	path := "/api/generar_qr/" + url.PathEscape(string(id))

	var resp paymentResponse
	if err := c.do(ctx, CallGeneratePayment, http.MethodPost, path, struct{}{}, &resp); err != nil {
		return "", err
	}
	if resp.Status != "success" || resp.QRData == "" {
		return "", &AppError{Call: CallGeneratePayment, Message: resp.Error}
	}
	return resp.QRData, nil
}

// Health checks that the backend answers {"status":"ok"} on its root
func (c *Client) Health(ctx context.Context) error {
	var resp healthResponse
	if err := c.do(ctx, CallHealth, http.MethodGet, "/", nil, &resp); err != nil {
		return err
	}
	if resp.Status != "ok" {
		return &AppError{Call: CallHealth, Message: "status " + resp.Status}
	}
	return nil
}

func (c *Client) do(ctx context.Context, call, method, path string, body, out interface{}) (err error) {
	start := time.Now()
	defer func() {
		if c.OnRequest != nil {
			c.OnRequest(call, Outcome(err), time.Since(start))
		}
	}()

	var reqBody io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "%s: encode request", call)
		}
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return errors.Wrapf(err, "%s: build request", call)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Call: call, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Call: call, Err: errors.Wrap(err, "read body")}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		_ = json.Unmarshal(data, &eb)
		return &StatusError{Call: call, StatusCode: resp.StatusCode, Message: eb.Error}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &TransportError{Call: call, Err: errors.Wrap(err, "decode body")}
	}
	return nil
}
