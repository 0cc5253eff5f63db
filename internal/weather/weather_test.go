package weather

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const okBody = `{
  "location": {"name": "Kyiv", "country": "Ukraine"},
  "current": {"temp_c": 12.5, "feelslike_c": 10, "wind_kph": 14.4, "humidity": 71,
              "condition": {"text": "Мінлива хмарність"}}
}`

func newServer(t *testing.T, status int, body string) (*httptest.Server, <-chan *url.URL) {
	t.Helper()
	seen := make(chan *url.URL, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case seen <- r.URL:
		default:
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, seen
}

func TestFetchSuccess(t *testing.T) {
	srv, urls := newServer(t, http.StatusOK, okBody)
	c := NewClient(Options{APIKey: "k3y", BaseURL: srv.URL + "/"})

	rep, err := c.Fetch(context.Background(), "Kyiv")
	require.NoError(t, err)
	assert.Equal(t, "Kyiv", rep.Location.Name)
	assert.Equal(t, "Ukraine", rep.Location.Country)
	assert.InDelta(t, 12.5, rep.Current.TempC, 0.001)
	assert.InDelta(t, 10, rep.Current.FeelsLikeC, 0.001)
	assert.InDelta(t, 14.4, rep.Current.WindKPH, 0.001)
	assert.Equal(t, 71, rep.Current.Humidity)
	assert.Equal(t, "Мінлива хмарність", rep.Current.Condition.Text)

	seen := <-urls
	assert.Equal(t, "/current.json", seen.Path)
	q := seen.Query()
	assert.Equal(t, "k3y", q.Get("key"))
	assert.Equal(t, "Kyiv,Ukraine", q.Get("q"))
	assert.Equal(t, "no", q.Get("aqi"))
	assert.Equal(t, "uk", q.Get("lang"))
}

func TestFetchFailuresAreTyped(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		kind   Kind
		msg    string
	}{
		{"http with api message", http.StatusBadRequest, `{"error": {"code": 1006, "message": "No matching location found."}}`, KindHTTP, "No matching location found."},
		{"http plain", http.StatusBadGateway, `<html>`, KindHTTP, "502 Bad Gateway"},
		{"api error on 200", http.StatusOK, `{"error": {"code": 2006, "message": "API key is invalid."}}`, KindAPI, "API key is invalid."},
		{"decode", http.StatusOK, `not json`, KindDecode, ""},
		{"empty location", http.StatusOK, `{}`, KindDecode, "response has no location"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newServer(t, tc.status, tc.body)
			rep, err := NewClient(Options{BaseURL: srv.URL}).Fetch(context.Background(), "Nowhere")
			assert.Nil(t, rep)

			var werr *Error
			require.True(t, errors.As(err, &werr), "got %T", err)
			assert.Equal(t, tc.kind, werr.Kind)
			if tc.msg != "" {
				assert.Equal(t, tc.msg, werr.Message)
			}
			assert.Equal(t, "weather_"+string(tc.kind), werr.Code())
		})
	}
}

func TestFetchNetworkError(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, okBody)
	base := srv.URL
	srv.Close()

	_, err := NewClient(Options{BaseURL: base, APIKey: "secret"}).Fetch(context.Background(), "Kyiv")
	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, KindNetwork, werr.Kind)
	assert.NotContains(t, werr.Message, "secret")
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewClient(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}).Fetch(context.Background(), "Kyiv")
	var werr *Error
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, KindNetwork, werr.Kind)
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(Options{})
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultCountry, c.country)
	assert.Equal(t, DefaultLang, c.lang)
	assert.Equal(t, defaultTimeout, c.timeout)
	assert.NotNil(t, c.http)
}
