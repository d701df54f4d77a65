package render

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	perr "agora/internal/platform/errors"
	"agora/internal/platform/logger"
	"agora/internal/services/comments/domain"

	"github.com/microcosm-cc/bluemonday"
)

const (
	defaultRemoteTimeout = 5 * time.Second
	defaultUA            = "agora-comments"
	maxResponseBytes     = 1 << 20
)

// RemoteOptions configures the Remote renderer
type RemoteOptions struct {
	URL       string
	UserAgent string
	Timeout   time.Duration
}

// Remote asks an external markup service to render comment text
// one attempt per call; the comment service owns retries
type Remote struct {
	http   *http.Client
	opts   RemoteOptions
	policy *bluemonday.Policy
	log    logger.Logger
}

var _ domain.Renderer = (*Remote)(nil)

type remoteRequest struct {
	Text      string `json:"text"`
	Title     string `json:"title,omitempty"`
	Namespace int    `json:"namespace"`
	ActorID   int64  `json:"actor_id"`
}

type remoteResponse struct {
	HTML string `json:"html"`
}

// NewRemote builds a remote renderer with sane defaults
func NewRemote(o RemoteOptions) *Remote {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultRemoteTimeout
	}
	return &Remote{
		http:   &http.Client{Timeout: o.Timeout},
		opts:   o,
		policy: Policy(),
		log:    *logger.Named("render"),
	}
}

// Render posts the text with its page context and sanitizes the reply
// 4xx means the text was rejected, anything else transient
func (r *Remote) Render(ctx context.Context, raw string, page domain.Page, author int64) (string, error) {
	if strings.TrimSpace(r.opts.URL) == "" {
		return "", perr.New(perr.ErrorCodeUnavailable, "remote renderer has no url")
	}
	body, err := json.Marshal(remoteRequest{Text: raw, Title: page.Title, Namespace: page.Namespace, ActorID: author})
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeJSON, "encode render request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.opts.URL, bytes.NewReader(body))
	if err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnknown, "render new request failed")
	}
	req.Header.Set("User-Agent", r.opts.UserAgent)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := r.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", perr.Wrap(err, perr.ErrorCodeUnavailable, "render transport error")
	}
	defer func() { _ = drainAndClose(resp.Body) }()

	r.log.Debug().
		Int("status", resp.StatusCode).
		Int64("page_id", page.ID).
		Dur("latency", time.Since(start)).
		Msg("render response")

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return "", perr.New(perr.ErrorCodeUnavailable, "renderer rate limited")
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		tail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", perr.Newf(perr.ErrorCodeValidation, "renderer rejected text: status %d %s", resp.StatusCode, strings.TrimSpace(string(tail)))
	default:
		return "", perr.Newf(perr.ErrorCodeUnavailable, "renderer unexpected status %d", resp.StatusCode)
	}

	var out remoteResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeUnavailable, "decode render response")
	}
	return r.policy.Sanitize(out.HTML), nil
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, maxResponseBytes))
	return rc.Close()
}
