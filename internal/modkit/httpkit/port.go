// Package httpkit provides tiny HTTP helpers and adapters
package httpkit

import (
	"net/http"
	"strconv"
	"strings"

	perrs "agora/internal/platform/errors"
	pnet "agora/internal/platform/net"
)

// ActorHeader carries the calling actor id, stamped by the upstream gateway
const ActorHeader = "X-Agora-Actor"

// HeaderPort implements middleware.ActorPort by reading a trusted header
type HeaderPort struct {
	header string
}

// NewHeaderPort builds a port for header; empty means ActorHeader
func NewHeaderPort(header string) *HeaderPort {
	if strings.TrimSpace(header) == "" {
		header = ActorHeader
	}
	return &HeaderPort{header: header}
}

// Parse returns the actor id from the header
// a missing header is the anonymous actor 0; anything but a non negative integer is unauthorized
func (p *HeaderPort) Parse(r *http.Request) (int64, error) {
	raw := strings.TrimSpace(r.Header.Get(p.header))
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, perrs.Unauthorizedf("invalid %s header", p.header)
	}
	return id, nil
}

// Actor is the actor id Actors stamped on the request, zero when anonymous
func Actor(r *http.Request) int64 { return pnet.ActorID(r.Context()) }
