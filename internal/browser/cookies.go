package browser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Cookie is one entry of a cookie export. Extension exports use expirationDate,
// Playwright storage state uses expires.
type Cookie struct {
	Name           string  `json:"name"`
	Value          string  `json:"value"`
	Domain         string  `json:"domain"`
	Path           string  `json:"path"`
	Expires        float64 `json:"expires"`
	ExpirationDate float64 `json:"expirationDate"`
	HTTPOnly       bool    `json:"httpOnly"`
	Secure         bool    `json:"secure"`
	SameSite       string  `json:"sameSite"`
}

type storageState struct {
	Cookies []Cookie `json:"cookies"`
}

// LoadCookies reads consent cookies for the careers sites, either a plain JSON array
// or a Playwright storage state file. Expired and nameless entries are skipped.
func LoadCookies(path string) ([]playwright.OptionalCookie, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cookies: %w", err)
	}

	var cookies []Cookie
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '{' {
		var state storageState
		if err := json.Unmarshal(trimmed, &state); err != nil {
			return nil, fmt.Errorf("parse storage state %s: %w", path, err)
		}
		cookies = state.Cookies
	} else if err := json.Unmarshal(data, &cookies); err != nil {
		return nil, fmt.Errorf("parse cookies %s: %w", path, err)
	}

	now := float64(time.Now().Unix())
	pwCookies := make([]playwright.OptionalCookie, 0, len(cookies))
	for _, c := range cookies {
		if c.Name == "" || c.Domain == "" {
			continue
		}
		if exp := c.expiry(); exp > 0 && exp < now {
			continue
		}
		pwCookies = append(pwCookies, c.ToPlaywright())
	}
	return pwCookies, nil
}

//-1 or 0 means a session cookie
func (c Cookie) expiry() float64 {
	if c.Expires > 0 {
		return c.Expires
	}
	return c.ExpirationDate
}

func (c Cookie) ToPlaywright() playwright.OptionalCookie {
	path := c.Path
	if path == "" {
		path = "/"
	}
	pw := playwright.OptionalCookie{
		Name:   c.Name,
		Value:  c.Value,
		Domain: playwright.String(c.Domain),
		Path:   playwright.String(path),
	}
	if exp := c.expiry(); exp > 0 {
		pw.Expires = playwright.Float(exp)
	}
	if c.HTTPOnly {
		pw.HttpOnly = playwright.Bool(true)
	}
	if c.Secure {
		pw.Secure = playwright.Bool(true)
	}

	switch strings.ToLower(c.SameSite) {
	case "lax":
		pw.SameSite = playwright.SameSiteAttributeLax
	case "strict":
		pw.SameSite = playwright.SameSiteAttributeStrict
	case "none", "no_restriction":
		pw.SameSite = playwright.SameSiteAttributeNone
	}
	return pw
}
