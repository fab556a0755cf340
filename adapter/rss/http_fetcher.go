package rss

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"meetupsplit/domain"
)

const DefaultUserAgent = "meetup-rss-pubdate-year-check/1.2 (Debian12; local-script)"

type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher(timeout time.Duration, userAgent string) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	tr := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		DialContext:         (&net.Dialer{Timeout: timeout, KeepAlive: 60 * time.Second}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &HTTPFetcher{client: &http.Client{Timeout: timeout, Transport: tr}, userAgent: userAgent}
}

// Fetch returns the response body. A cancelled ctx is returned as ctx.Err()
// so callers can tell an aborted run from a failed feed.
func (f *HTTPFetcher) Fetch(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, domain.AsFeedError(err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, domain.HTTPError(resp.StatusCode, statusReason(resp))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if isTimeout(err) {
			return nil, domain.ReadTimeoutError(err)
		}
		return nil, domain.AsFeedError(err)
	}
	return body, nil
}

func transportError(err error) *domain.FeedError {
	if isTimeout(err) {
		return domain.TimeoutError(err)
	}
	var uerr *url.Error
	if errors.As(err, &uerr) {
		// request never left the process
		if strings.HasPrefix(uerr.Err.Error(), "unsupported protocol scheme") {
			return domain.AsFeedError(uerr.Err)
		}
		return domain.NetworkError(uerr.Err.Error(), err)
	}
	return domain.NetworkError(err.Error(), err)
}

func isTimeout(err error) bool {
	var nerr net.Error
	return errors.As(err, &nerr) && nerr.Timeout()
}

func statusReason(resp *http.Response) string {
	code := strconv.Itoa(resp.StatusCode)
	if reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}
