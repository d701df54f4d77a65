// Package render provides comment renderers that turn raw text into sanitized html
package render

import (
	"bytes"
	"context"
	"sync"

	perr "agora/internal/platform/errors"
	"agora/internal/services/comments/domain"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Policy is the sanitizer applied to every rendered comment
// raw html in the source is escaped by goldmark and stripped here if it slips through
func Policy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.RequireNoFollowOnLinks(true)
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// Markdown renders comment text as GitHub flavored markdown
type Markdown struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	bufs   sync.Pool
}

var _ domain.Renderer = (*Markdown)(nil)

// NewMarkdown builds the local renderer
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		),
		policy: Policy(),
		bufs:   sync.Pool{New: func() any { return new(bytes.Buffer) }},
	}
}

// Render converts raw to html; page and author do not change the output
func (m *Markdown) Render(ctx context.Context, raw string, _ domain.Page, _ int64) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	buf := m.bufs.Get().(*bytes.Buffer)
	buf.Reset()
	defer m.bufs.Put(buf)

	if err := m.md.Convert([]byte(raw), buf); err != nil {
		return "", perr.Wrap(err, perr.ErrorCodeValidation, "markdown conversion failed")
	}
	return string(m.policy.SanitizeBytes(buf.Bytes())), nil
}
