package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// send performs one API call and returns the raw status and body. It never
// interprets the status; that is interpret's job. Only transport level
// failures (including a done context) come back as errors.
func (c *Client) send(ctx context.Context, method, endpoint string, query url.Values, payload any) (int, []byte, error) {
	requestID := uuid.NewString()
	metricEndpoint := metricLabel(endpoint)

	startTime := time.Now()
	defer func() {
		requestDuration.WithLabelValues(metricEndpoint).Observe(time.Since(startTime).Seconds())
	}()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, &Error{Kind: KindIllegalParameter, Message: "encode request body: " + err.Error(), Err: err}
		}
		body = bytes.NewReader(data)
	}

	fullURL := c.config.BaseURL + endpoint
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return 0, nil, &Error{Kind: KindTransport, Err: err}
	}

	req.Header.Set(AuthTokenHeader, c.config.Token)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.config.UserAgent != "" {
		req.Header.Set("User-Agent", c.config.UserAgent)
	}

	c.logger.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("endpoint", endpoint).
		Msg("Executing Yupdates request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(metricEndpoint, "transport_error").Inc()
		return 0, nil, &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		requestsTotal.WithLabelValues(metricEndpoint, "transport_error").Inc()
		return 0, nil, &Error{Kind: KindTransport, Err: err}
	}

	requestsTotal.WithLabelValues(metricEndpoint, strconv.Itoa(resp.StatusCode)).Inc()

	c.logger.Debug().
		Str("request_id", requestID).
		Str("endpoint", endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(startTime)).
		Msg("Yupdates request complete")

	return resp.StatusCode, respBody, nil
}

// metricLabel collapses per-feed endpoints so metric cardinality stays bounded.
func metricLabel(endpoint string) string {
	if strings.HasPrefix(endpoint, "feeds/") {
		return "feeds/{feed_id}/"
	}
	return endpoint
}
