// Package pagination parses limit/offset query parameters with the
// defaults and caps the feedback listing endpoint uses.
package pagination

import (
	"net/url"
	"strconv"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500
)

// Params holds a parsed limit/offset pair.
type Params struct {
	Limit  int
	Offset int
}

// Parse reads "limit" and "offset" from query values. Missing or malformed
// values fall back to the defaults; limits are capped at MaxLimit.
func Parse(values url.Values) Params {
	p := Params{Limit: DefaultLimit, Offset: 0}

	if raw := values.Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			p.Limit = n
		}
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}

	if raw := values.Get("offset"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			p.Offset = n
		}
	}

	return p
}
