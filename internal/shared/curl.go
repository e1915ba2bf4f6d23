// Utilities for importing API credentials from a browser "Copy as cURL" command.
package shared

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
)

var (
	curlHeaderRegex = regexp.MustCompile(`-H\s+'([^']+)'|-H\s+"([^"]+)"`)
	curlURLRegex    = regexp.MustCompile(`curl\s+(?:-[^\s]+\s+)*'?"?(https?://[^\s'"]+)`)
)

// resourceSegments are the first path segments of catalogue endpoints; the base URL is everything before them.
var resourceSegments = []string{"/movies", "/persons", "/users"}

// CurlRequest represents the URL and headers parsed from a cURL command.
type CurlRequest struct {
	URL     string
	Headers map[string]string
}

// ParseCurlFile reads a .sh file containing a cURL command and extracts the request.
func ParseCurlFile(filepath string) (*CurlRequest, error) {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(string(content))
}

// ParseCurlCommand parses a cURL command string and extracts its URL and headers.
//
// Header names are lower-cased so lookups don't depend on how the browser spelled them.
func ParseCurlCommand(curlCmd string) (*CurlRequest, error) {
	curlCmd = strings.ReplaceAll(curlCmd, "\\\n", " ")
	curlCmd = strings.ReplaceAll(curlCmd, "\\", "")

	req := &CurlRequest{Headers: make(map[string]string)}

	for _, match := range curlHeaderRegex.FindAllStringSubmatch(curlCmd, -1) {
		line := FirstNonEmpty(match[1], match[2])
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		req.Headers[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	if m := curlURLRegex.FindStringSubmatch(curlCmd); len(m) > 1 {
		req.URL = m[1]
	}

	if req.URL == "" && len(req.Headers) == 0 {
		return nil, fmt.Errorf("%w: no URL or headers found in curl command", ErrInvalidInput)
	}

	return req, nil
}

// AppToken returns the static service token (x-app-token header), if present.
func (c *CurlRequest) AppToken() string {
	return c.Headers["x-app-token"]
}

// BearerToken returns the session token from an "Authorization: Bearer" header, if present.
func (c *CurlRequest) BearerToken() string {
	auth := c.Headers["authorization"]
	if len(auth) > 7 && strings.EqualFold(auth[:7], "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// BaseURL derives the API base URL by cutting the request path at the first catalogue resource segment.
func (c *CurlRequest) BaseURL() (string, error) {
	if c.URL == "" {
		return "", fmt.Errorf("%w: curl command has no URL", ErrInvalidInput)
	}

	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	p := u.Path
	for _, seg := range resourceSegments {
		if idx := strings.Index(p, seg); idx >= 0 {
			p = p[:idx]
			break
		}
	}

	u.Path = strings.TrimSuffix(p, "/")
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}
