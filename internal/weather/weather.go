// Package weather queries current conditions from weatherapi.com.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m3rciful/weatherbot/core/logger"
)

const (
	// DefaultBaseURL is the weatherapi.com v1 endpoint root.
	DefaultBaseURL = "https://api.weatherapi.com/v1"
	// DefaultCountry narrows city lookups.
	DefaultCountry = "Ukraine"
	// DefaultLang selects condition text language.
	DefaultLang = "uk"

	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Kind classifies a failed lookup.
type Kind string

const (
	KindHTTP    Kind = "http"
	KindNetwork Kind = "network"
	KindAPI     Kind = "api"
	KindDecode  Kind = "decode"
)

// Error is the only error type Fetch returns.
type Error struct {
	Kind    Kind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("weather: %s (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("weather: %s: %s", e.Kind, e.Message)
}

// Code returns the failure kind for log summaries.
func (e *Error) Code() string { return "weather_" + string(e.Kind) }

// Location names the place a report belongs to.
type Location struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// Current holds current conditions.
type Current struct {
	TempC      float64 `json:"temp_c"`
	FeelsLikeC float64 `json:"feelslike_c"`
	WindKPH    float64 `json:"wind_kph"`
	Humidity   int     `json:"humidity"`
	Condition  struct {
		Text string `json:"text"`
	} `json:"condition"`
}

// Report is a successful lookup.
type Report struct {
	Location Location `json:"location"`
	Current  Current  `json:"current"`
}

type apiResponse struct {
	Report
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Options configures a Client. Zero values fall back to defaults.
type Options struct {
	APIKey     string
	BaseURL    string
	Country    string
	Lang       string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client fetches current weather.
type Client struct {
	apiKey  string
	baseURL string
	country string
	lang    string
	timeout time.Duration
	http    *http.Client
	log     *slog.Logger
}

// NewClient builds a Client from opts.
func NewClient(opts Options) *Client {
	c := &Client{
		apiKey:  opts.APIKey,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		country: opts.Country,
		lang:    opts.Lang,
		timeout: opts.Timeout,
		http:    opts.HTTPClient,
		log:     logger.Component("weather"),
	}
	if c.baseURL == "" {
		c.baseURL = DefaultBaseURL
	}
	if c.country == "" {
		c.country = DefaultCountry
	}
	if c.lang == "" {
		c.lang = DefaultLang
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.http == nil {
		c.http = &http.Client{Timeout: c.timeout}
	}
	return c
}

func (c *Client) endpoint(city string) string {
	q := url.Values{}
	q.Set("key", c.apiKey)
	q.Set("q", strings.TrimSpace(city+","+c.country))
	q.Set("aqi", "no")
	q.Set("lang", c.lang)
	return c.baseURL + "/current.json?" + q.Encode()
}

// Fetch returns current conditions for city, which should already be Latin script.
// Every failure is reported as *Error.
func (c *Client) Fetch(ctx context.Context, city string) (*Report, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	start := time.Now()

	rep, err := c.fetch(ctx, city)
	attrs := []slog.Attr{
		slog.String("event", "weather.fetch"),
		slog.String("query", city),
		slog.Duration("duration", time.Since(start)),
	}
	if err != nil {
		c.log.LogAttrs(ctx, slog.LevelWarn, "weather lookup failed", append(attrs,
			slog.String("outcome", "fail"),
			slog.String("err_kind", string(err.Kind)),
			slog.String("err", logger.SanitizeLimit(err.Message, 256)),
		)...)
		return nil, err
	}
	c.log.LogAttrs(ctx, slog.LevelDebug, "weather lookup", append(attrs,
		slog.String("outcome", "ok"),
		slog.String("city", rep.Location.Name),
	)...)
	return rep, nil
}

func (c *Client) fetch(ctx context.Context, city string) (*Report, *Error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(city), nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: redactKey(err.Error(), c.apiKey)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Status: resp.StatusCode, Message: err.Error()}
	}

	var parsed apiResponse
	decodeErr := json.Unmarshal(body, &parsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := resp.Status
		if decodeErr == nil && parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		return nil, &Error{Kind: KindHTTP, Status: resp.StatusCode, Message: msg}
	}
	if decodeErr != nil {
		return nil, &Error{Kind: KindDecode, Status: resp.StatusCode, Message: decodeErr.Error()}
	}
	if parsed.Error != nil {
		return nil, &Error{Kind: KindAPI, Status: resp.StatusCode, Message: parsed.Error.Message}
	}
	if parsed.Location.Name == "" {
		return nil, &Error{Kind: KindDecode, Status: resp.StatusCode, Message: "response has no location"}
	}
	return &parsed.Report, nil
}

func redactKey(msg, key string) string {
	if key == "" {
		return msg
	}
	return strings.ReplaceAll(msg, key, "<redacted>")
}
