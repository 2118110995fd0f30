// Package validation checks diagnose requests against the configured
// browser and connection whitelists before they reach the engine.
package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jonny/edudiag/internal/domain/model"
)

// Whitelist restricts accepted system-info values. Empty lists accept anything.
type Whitelist struct {
	Browsers    []string
	Connections []string
}

// NewWhitelist returns a Whitelist with both lists sorted, so rejections
// list the accepted values in a stable order.
func NewWhitelist(browsers, connections []string) Whitelist {
	return Whitelist{
		Browsers:    slices.Sorted(slices.Values(browsers)),
		Connections: slices.Sorted(slices.Values(connections)),
	}
}

// Rejection describes a request refused before diagnosis. Allowed is set
// when a value fell outside a whitelist.
type Rejection struct {
	Message string
	Allowed []string
}

func (r *Rejection) Error() string {
	if len(r.Allowed) == 0 {
		return r.Message
	}
	return fmt.Sprintf("%s (allowed: %s)", r.Message, strings.Join(r.Allowed, ", "))
}

// Check validates the request shape and whitelisted values. Browser and
// connection are only checked when supplied.
func (wl Whitelist) Check(req model.DiagnoseRequest) *Rejection {
	if len(req.Symptoms) == 0 {
		return &Rejection{Message: "'symptoms' must be a non-empty list"}
	}
	if req.SystemInfo == nil {
		return nil
	}
	if b := req.SystemInfo.Browser; b != "" && len(wl.Browsers) > 0 && !slices.Contains(wl.Browsers, b) {
		return &Rejection{Message: "invalid browser: " + b, Allowed: wl.Browsers}
	}
	if c := req.SystemInfo.ConnectionType; c != "" && len(wl.Connections) > 0 && !slices.Contains(wl.Connections, c) {
		return &Rejection{Message: "invalid connection: " + c, Allowed: wl.Connections}
	}
	return nil
}

