package helper

import (
	"fmt"
	"net/url"
)

// IsValidURL checks that feedURL is an absolute http(s) URL. It does not
// contact the host.
func IsValidURL(feedURL string) error {
	u, err := url.ParseRequestURI(feedURL)
	if err != nil {
		return fmt.Errorf("invalid feed URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid feed URL: missing host")
	}

	return nil
}
