package service

import (
	"context"
	"errors"
	"time"

	perr "agora/internal/platform/errors"
	"agora/internal/services/comments/domain"

	"github.com/jpillora/backoff"
)

// render asks the renderer for html, retrying transient failures
// input errors from the renderer surface at once as malformed input
func (s *Svc) render(ctx context.Context, raw string, page domain.Page, author int64) (string, error) {
	b := &backoff.Backoff{Min: s.backoffMin, Max: s.backoffMax, Factor: 2, Jitter: true}

	var last error
	for attempt := 1; attempt <= s.renderAttempts; attempt++ {
		html, err := s.renderer.Render(ctx, raw, page, author)
		if err == nil {
			return html, nil
		}
		if badInput(err) {
			return "", perr.WithReason(perr.Wrap(err, perr.ErrorCodeValidation, "render rejected input"), domain.ReasonMalformedInput)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", perr.WithReason(perr.Wrap(err, perr.ErrorCodeUnavailable, "render canceled"), domain.ReasonStorageFailure)
		}
		last = err
		if attempt == s.renderAttempts {
			break
		}

		wait := b.Duration()
		s.log.Debug().Err(err).Int("attempt", attempt).Dur("wait", wait).Msg("render failed; retrying")
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return "", perr.WithReason(perr.Wrap(ctx.Err(), perr.ErrorCodeUnavailable, "render canceled"), domain.ReasonStorageFailure)
		case <-t.C:
		}
	}

	s.log.Warn().Err(last).Int("attempts", s.renderAttempts).Msg("renderer unavailable")
	return "", perr.WithReason(
		perr.Wrapf(last, perr.ErrorCodeUnavailable, "render failed after %d attempts", s.renderAttempts),
		domain.ReasonStorageFailure,
	)
}

func badInput(err error) bool {
	switch perr.CodeOf(err) {
	case perr.ErrorCodeValidation, perr.ErrorCodeInvalidArgument:
		return true
	}
	return false
}
