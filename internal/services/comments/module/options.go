package module

import (
	"strconv"
	"strings"
	"time"

	"agora/internal/platform/config"
	"agora/internal/services/comments/domain"
)

// Render modes
const (
	RenderMarkdown = "markdown"
	RenderRemote   = "remote"
)

// Options controls the comments module
type Options struct {
	Namespaces      []int
	RenderMode      string
	RenderURL       string
	RenderTimeout   time.Duration
	RenderAttempts  int
	IdentityTTL     time.Duration
	UnknownName     string
	AnonymousRights []string
	TxAttempts      int
}

// FromConfig reads with COMMENTS_ prefix under the api config
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("COMMENTS_")
	return Options{
		Namespaces:      parseNamespaces(c.MayCSV("NAMESPACES", []string{"0"})),
		RenderMode:      c.MayEnum("RENDER_MODE", RenderMarkdown, RenderMarkdown, RenderRemote),
		RenderURL:       c.MayString("RENDER_URL", ""),
		RenderTimeout:   c.MayDuration("RENDER_TIMEOUT", 5*time.Second),
		RenderAttempts:  c.MayInt("RENDER_ATTEMPTS", 3),
		IdentityTTL:     c.MayDuration("IDENTITY_TTL", 10*time.Minute),
		UnknownName:     c.MayString("UNKNOWN_NAME", "Unknown user"),
		AnonymousRights: c.MayCSV("ANON_RIGHTS", []string{domain.RightComment}),
		TxAttempts:      c.MayInt("TX_ATTEMPTS", 3),
	}
}

// bad entries are skipped; nothing usable falls back to the main namespace
func parseNamespaces(raw []string) []int {
	var out []int
	for _, s := range raw {
		n, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			continue
		}
		out = append(out, n)
	}
	if len(out) == 0 {
		return []int{0}
	}
	return out
}
