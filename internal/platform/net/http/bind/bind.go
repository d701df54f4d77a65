// Package bind decodes and validates JSON request bodies
package bind

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"unicode"

	perr "agora/internal/platform/errors"
	"agora/internal/platform/logger"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	once  sync.Once
	valid *validator.Validate
	trans ut.Translator
)

// messages name fields by their json tag
func setup() {
	loc := en.New()
	trans, _ = ut.New(loc, loc).GetTranslator("en")

	valid = validator.New(validator.WithRequiredStructEnabled())
	valid.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = en_translations.RegisterDefaultTranslations(valid, trans)
	_ = valid.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		f := fl.Field()
		return f.Kind() != reflect.String || strings.IndexFunc(f.String(), func(r rune) bool { return !unicode.IsSpace(r) }) >= 0
	})

	for tag, text := range map[string]string{
		"min":      "{0} must be at least {1}",
		"max":      "{0} must be at most {1}",
		"notblank": "{0} must not be blank",
	} {
		_ = valid.RegisterTranslation(tag, trans,
			func(t ut.Translator) error { return t.Add(tag, text, true) },
			func(t ut.Translator, fe validator.FieldError) string {
				msg, _ := t.T(fe.Tag(), fe.Field(), fe.Param())
				return msg
			})
	}
}

// Validate runs the struct rules on v
// the first failing rule becomes a validation error naming its field
func Validate(v any) error {
	once.Do(setup)
	err := valid.Struct(v)
	if err == nil {
		return nil
	}
	var fails validator.ValidationErrors
	if !errors.As(err, &fails) || len(fails) == 0 {
		logger.Get().Error().Err(err).Msg("validator misuse")
		return perr.Wrap(err, perr.ErrorCodeUnknown, "validate")
	}
	first := fails[0]
	return perr.WithFieldChain(perr.New(perr.ErrorCodeValidation, first.Translate(trans)), first.Field())
}

// JSONOptions controls parsing
type JSONOptions struct {
	MaxBytes        int64
	DisallowUnknown bool
	AllowEmptyBody  bool
}

var defaults = JSONOptions{MaxBytes: 1 << 20, DisallowUnknown: true}

// ParseJSON decodes one JSON value into T and validates it
// every failure carries ReasonMalformedInput; bodyless methods may send nothing
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	var dst T
	err := parse(r, &dst, opts...)
	if err != nil {
		var zero T
		return zero, perr.WithReason(err, perr.ReasonMalformedInput)
	}
	return dst, nil
}

func parse(r *http.Request, dst any, opts ...JSONOptions) error {
	o := defaults
	if len(opts) > 0 {
		o = opts[0]
	}
	defer r.Body.Close()

	var src io.Reader = r.Body
	if o.MaxBytes > 0 {
		src = io.LimitReader(r.Body, o.MaxBytes+1)
	}
	raw, err := io.ReadAll(src)
	switch {
	case err != nil:
		return perr.JSONErrf("read body: %v", err)
	case o.MaxBytes > 0 && int64(len(raw)) > o.MaxBytes:
		return perr.JSONErrf("body exceeds %d bytes", o.MaxBytes)
	}

	if len(bytes.TrimSpace(raw)) == 0 {
		if o.AllowEmptyBody || bodyless(r.Method) {
			return nil
		}
		return perr.JSONErrf("empty body")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	if o.DisallowUnknown {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(dst); err != nil {
		return perr.JSONErrf("invalid JSON: %v", err)
	}
	if dec.More() {
		return perr.JSONErrf("unexpected trailing data")
	}
	return Validate(dst)
}

func bodyless(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodDelete, http.MethodOptions:
		return true
	}
	return false
}
