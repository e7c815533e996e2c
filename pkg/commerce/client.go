// Package commerce is the HTTP client for the remote commerce service the cart
// store synchronizes with.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/angelmondragon/cartsync/internal/cart"
	"github.com/angelmondragon/cartsync/pkg/config"
	pkgerrors "github.com/angelmondragon/cartsync/pkg/errors"
	"github.com/angelmondragon/cartsync/pkg/logger"
	"github.com/angelmondragon/cartsync/pkg/metrics"
	"github.com/google/uuid"
)

const (
	requestIDHeader = "X-Request-Id"
	maxBodyBytes    = 1 << 20

	opListProducts   = "products.list"
	opGetCart        = "cart.get"
	opAddToCart      = "cart.add"
	opRemoveFromCart = "cart.remove"
	opUpdateQuantity = "cart.update_quantity"
	opGetCoupon      = "coupon.get"
	opValidateCoupon = "coupon.validate"
	opLogin          = "auth.login"
	opLogout         = "auth.logout"
)

// Options configures a Client. BaseURL is required.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Token      string
	UserAgent  string
	HTTPClient *http.Client
	Logger     *logger.Logger
	Metrics    *metrics.SyncMetrics
}

// Client talks JSON to the commerce service. Cookies set by the service are
// kept in a jar and sent with every later request.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	token     string
	userAgent string
	logg      *logger.Logger
	metrics   *metrics.SyncMetrics
}

var _ cart.Remote = (*Client)(nil)

func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute, got %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		httpClient = &http.Client{Jar: jar, Timeout: opts.Timeout}
	}

	logg := opts.Logger
	if logg == nil {
		logg = logger.Nop()
	}

	return &Client{
		baseURL:   base,
		http:      httpClient,
		token:     strings.TrimSpace(opts.Token),
		userAgent: opts.UserAgent,
		logg:      logg,
		metrics:   opts.Metrics,
	}, nil
}

// NewFromConfig builds a client from the commerce section of the config.
func NewFromConfig(cfg config.CommerceConfig, logg *logger.Logger, m *metrics.SyncMetrics) (*Client, error) {
	return New(Options{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		Token:     cfg.Token,
		UserAgent: cfg.UserAgent,
		Logger:    logg,
		Metrics:   m,
	})
}

type productRequest struct {
	ProductID string `json:"productId"`
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

type codeRequest struct {
	Code string `json:"code"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Products lists the service's catalog.
func (c *Client) Products(ctx context.Context) ([]cart.Product, error) {
	var products []cart.Product
	if _, err := c.do(ctx, opListProducts, http.MethodGet, "/products", nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *Client) GetCart(ctx context.Context) ([]cart.CartItem, error) {
	var items []cart.CartItem
	if _, err := c.do(ctx, opGetCart, http.MethodGet, "/cart", nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (c *Client) AddToCart(ctx context.Context, productID string) error {
	_, err := c.do(ctx, opAddToCart, http.MethodPost, "/cart", productRequest{ProductID: productID}, nil)
	return err
}

func (c *Client) RemoveFromCart(ctx context.Context, productID string) error {
	_, err := c.do(ctx, opRemoveFromCart, http.MethodDelete, "/cart", productRequest{ProductID: productID}, nil)
	return err
}

func (c *Client) UpdateQuantity(ctx context.Context, productID string, quantity int) error {
	path := "/cart/" + url.PathEscape(productID)
	_, err := c.do(ctx, opUpdateQuantity, http.MethodPut, path, quantityRequest{Quantity: quantity}, nil)
	return err
}

// GetCoupon returns the shopper's eligible coupon, or nil when there is none.
func (c *Client) GetCoupon(ctx context.Context) (*cart.Coupon, error) {
	return c.coupon(ctx, opGetCoupon, http.MethodGet, "/coupons", nil)
}

// ValidateCoupon returns the coupon for code, or nil when the code is unknown.
func (c *Client) ValidateCoupon(ctx context.Context, code string) (*cart.Coupon, error) {
	return c.coupon(ctx, opValidateCoupon, http.MethodPost, "/coupons/validate", codeRequest{Code: code})
}

// Login authenticates against the service; the session cookie it sets is
// attached to every later request.
func (c *Client) Login(ctx context.Context, email, password string) error {
	_, err := c.do(ctx, opLogin, http.MethodPost, "/auth/login", loginRequest{Email: email, Password: password}, nil)
	return err
}

func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, opLogout, http.MethodPost, "/auth/logout", nil, nil)
	return err
}

func (c *Client) coupon(ctx context.Context, op, method, path string, body any) (*cart.Coupon, error) {
	var coupon cart.Coupon
	present, err := c.do(ctx, op, method, path, body, &coupon)
	if err != nil || !present {
		return nil, err
	}
	return &coupon, nil
}

// do performs one request. It reports false when a 2xx response carried no
// payload (204, empty body or JSON null).
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) (bool, error) {
	requestID := uuid.NewString()
	ctx = c.logg.WithFields(ctx, map[string]any{
		"remote_op":  op,
		"method":     method,
		"path":       path,
		"request_id": requestID,
	})

	start := time.Now()
	present, err := c.roundTrip(ctx, requestID, method, path, body, out)
	c.metrics.ObserveDuration(op, time.Since(start))

	if err != nil {
		code := pkgerrors.CodeInternal
		if typed := pkgerrors.As(err); typed != nil {
			code = typed.Code()
		}
		c.metrics.IncFailure(op, string(code))
		c.logg.Warn(c.logg.WithFields(ctx, map[string]any{"error": err.Error(), "error_code": code}), "remote.failed")
		return false, err
	}

	c.metrics.IncSuccess(op)
	c.logg.Debug(c.logg.WithField(ctx, "duration_ms", time.Since(start).Milliseconds()), "remote.complete")
	return present, nil
}

func (c *Client) roundTrip(ctx context.Context, requestID, method, path string, body, out any) (bool, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode request body")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), reader)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(requestIDHeader, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("%s %s", method, path))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{
			Status:  resp.StatusCode,
			Method:  method,
			Path:    path,
			Message: extractMessage(raw),
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeFromStatus(resp.StatusCode), statusErr, statusErr.Error())
	}

	trimmed := bytes.TrimSpace(raw)
	if resp.StatusCode == http.StatusNoContent || len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode response body")
	}
	return true, nil
}
