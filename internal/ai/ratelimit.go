package ai

import (
	"errors"
	"net/http"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// ErrRateLimited marks a backend refusal caused by rate limiting or quota exhaustion.
var ErrRateLimited = errors.New("rate limited")

var (
	rateLimitMarkers = []string{"rate_limit", "rate limit", "resource_exhausted", "too many requests"}
	statusCode429    = regexp.MustCompile(`\b429\b`)
)

// IsRateLimit classifies err as a rate-limit fault by sentinel, HTTP status or message text.
// Errors that carry an HTTP status are judged by that status alone.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}

	msg := strings.ToLower(err.Error())
	if statusCode429.MatchString(msg) {
		return true
	}
	for _, marker := range rateLimitMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
