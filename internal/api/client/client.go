// Package client talks to a running market server over its REST API.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wonny/stockmarket/internal/api/handlers"
	"github.com/wonny/stockmarket/internal/stats"
	"github.com/wonny/stockmarket/pkg/httputil"
	"github.com/wonny/stockmarket/pkg/logger"
)

// Client is a typed wrapper over the market endpoints
type Client struct {
	baseURL string
	http    *httputil.Client
	logger  *logger.Logger
}

// New creates a client for the server at baseURL (e.g. http://localhost:8089)
func New(baseURL string, httpClient *httputil.Client, log *logger.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		logger:  log,
	}
}

func (c *Client) url(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = url.PathEscape(p)
	}
	return c.baseURL + "/api/" + strings.Join(escaped, "/")
}

// Stocks lists every stock in registry order
func (c *Client) Stocks(ctx context.Context) (handlers.MarketResponse, error) {
	var out handlers.MarketResponse
	if err := c.http.GetJSON(ctx, c.url("stocks"), &out); err != nil {
		return handlers.MarketResponse{}, fmt.Errorf("list stocks: %w", err)
	}
	return out, nil
}

// Stock returns the quote of one stock
func (c *Client) Stock(ctx context.Context, symbol string) (stats.Quote, error) {
	var out stats.Quote
	if err := c.http.GetJSON(ctx, c.url("stocks", symbol), &out); err != nil {
		return stats.Quote{}, fmt.Errorf("get stock %s: %w", symbol, err)
	}
	return out, nil
}

// AddStock lists a new stock and returns its first quote
func (c *Client) AddStock(ctx context.Context, symbol string, price decimal.Decimal, volatility float64) (stats.Quote, error) {
	req := handlers.AddStockRequest{Symbol: symbol, Price: price, Volatility: volatility}

	var out stats.Quote
	if err := c.http.PostJSON(ctx, c.url("stocks"), req, &out); err != nil {
		return stats.Quote{}, fmt.Errorf("add stock %s: %w", symbol, err)
	}
	return out, nil
}

// CreateSession opens a viewing session on the first page
func (c *Client) CreateSession(ctx context.Context) (handlers.PageResponse, error) {
	var out handlers.PageResponse
	if err := c.http.PostJSON(ctx, c.url("sessions"), nil, &out); err != nil {
		return handlers.PageResponse{}, fmt.Errorf("create session: %w", err)
	}
	return out, nil
}

// Page returns the page under the session's cursor
func (c *Client) Page(ctx context.Context, sessionID string) (handlers.PageResponse, error) {
	var out handlers.PageResponse
	if err := c.http.GetJSON(ctx, c.url("sessions", sessionID, "page"), &out); err != nil {
		return handlers.PageResponse{}, fmt.Errorf("page of %s: %w", sessionID, err)
	}
	return out, nil
}

// Next moves the session one page forward
func (c *Client) Next(ctx context.Context, sessionID string) (handlers.PageResponse, error) {
	return c.move(ctx, sessionID, "next")
}

// Previous moves the session one page back
func (c *Client) Previous(ctx context.Context, sessionID string) (handlers.PageResponse, error) {
	return c.move(ctx, sessionID, "previous")
}

func (c *Client) move(ctx context.Context, sessionID, direction string) (handlers.PageResponse, error) {
	var out handlers.PageResponse
	if err := c.http.PostJSON(ctx, c.url("sessions", sessionID, direction), nil, &out); err != nil {
		return handlers.PageResponse{}, fmt.Errorf("%s page of %s: %w", direction, sessionID, err)
	}
	return out, nil
}

// CloseSession deletes the session on the server
func (c *Client) CloseSession(ctx context.Context, sessionID string) error {
	resp, err := c.http.Delete(ctx, c.url("sessions", sessionID))
	if err != nil {
		return fmt.Errorf("close session %s: %w", sessionID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return fmt.Errorf("close session %s: unexpected status %d", sessionID, resp.StatusCode)
	}
	return nil
}
