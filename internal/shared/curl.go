// Utilities for importing a backend session from a copied cURL command.
package shared

import (
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"

	"golang.org/x/oauth2"
)

// SessionCookie is the cookie the backend keeps its session identifier in.
const SessionCookie = "sid"

var (
	headerRegex = regexp.MustCompile(`(?:-H|--header)\s+'([^']+)'|(?:-H|--header)\s+"([^"]+)"`)
	cookieRegex = regexp.MustCompile(`(?:-b|--cookie)\s+'([^']+)'|(?:-b|--cookie)\s+"([^"]+)"`)
	urlRegex    = regexp.MustCompile(`https?://[^\s'"]+`)
)

// CurlRequest holds the parts of a cURL command needed to reuse a browser session.
type CurlRequest struct {
	URL     string
	Headers map[string]string
	Cookie  string
}

// ParseCurlFile reads a file containing a cURL command and parses it.
func ParseCurlFile(path string) (*CurlRequest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read curl file: %w", err)
	}

	return ParseCurlCommand(string(content))
}

// ParseCurlCommand extracts the URL, headers and cookies from a cURL command.
//
// The cookie given with -b wins over a Cookie header.
func ParseCurlCommand(cmd string) (*CurlRequest, error) {
	cmd = strings.ReplaceAll(cmd, "\\\n", " ")
	cmd = strings.ReplaceAll(cmd, "\\", "")

	req := &CurlRequest{Headers: make(map[string]string)}
	if m := urlRegex.FindString(cmd); m != "" {
		req.URL = m
	}

	var headerCookie string
	for _, match := range headerRegex.FindAllStringSubmatch(cmd, -1) {
		key, value, ok := strings.Cut(firstGroup(match), ":")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if strings.EqualFold(key, "cookie") {
			if headerCookie == "" {
				headerCookie = value
			}
			continue
		}
		req.Headers[key] = value
	}

	if m := cookieRegex.FindStringSubmatch(cmd); m != nil {
		req.Cookie = firstGroup(m)
	} else {
		req.Cookie = headerCookie
	}

	if len(req.Headers) == 0 && req.Cookie == "" {
		return nil, fmt.Errorf("%w: no headers found in curl command", ErrInvalidInput)
	}
	return req, nil
}

func firstGroup(match []string) string {
	if match[1] != "" {
		return match[1]
	}
	return match[2]
}

// Header looks up a header case-insensitively.
func (c *CurlRequest) Header(name string) string {
	for k, v := range c.Headers {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return ""
}

// SessionToken returns the backend credential carried by the request.
//
// A bearer Authorization header is preferred; otherwise the session cookie value is used.
func (c *CurlRequest) SessionToken() (*oauth2.Token, error) {
	if auth := c.Header("Authorization"); auth != "" {
		scheme, value, ok := strings.Cut(auth, " ")
		if ok && strings.EqualFold(scheme, "bearer") && strings.TrimSpace(value) != "" {
			return &oauth2.Token{AccessToken: strings.TrimSpace(value), TokenType: "Bearer"}, nil
		}
	}

	if c.Cookie != "" {
		cookies, err := http.ParseCookie(c.Cookie)
		if err == nil {
			for _, ck := range cookies {
				if ck.Name == SessionCookie && ck.Value != "" {
					return &oauth2.Token{AccessToken: ck.Value, TokenType: "Bearer"}, nil
				}
			}
		}
	}

	return nil, fmt.Errorf("%w: no bearer token or %s cookie in curl command", ErrNotAuthenticated, SessionCookie)
}
