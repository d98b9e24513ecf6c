package models

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/desertthunder/linkreel/internal/shared"
)

// ParseItemURL parses raw as an absolute URL with a host. It does not guess a scheme.
func ParseItemURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", shared.ErrInvalidURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrInvalidURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", shared.ErrInvalidURL, raw)
	}
	return u, nil
}

// SanitizeURL accepts user-typed links: input without a scheme is treated as https.
func SanitizeURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" && !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	return ParseItemURL(raw)
}
