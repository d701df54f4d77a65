// Package config reads typed settings from the environment under a key prefix
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"agora/internal/platform/logger"
)

// Conf reads variables under a key prefix; the zero value reads unprefixed keys
type Conf struct{ prefix string }

func New() Conf { return Conf{} }

// Prefix scopes a child view, e.g. New().Prefix("CORE_").Prefix("API_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

func (c Conf) get(k string) string { return strings.TrimSpace(os.Getenv(c.key(k))) }

// MustString panics when key is missing or blank
func (c Conf) MustString(key string) string {
	v := c.get(key)
	if v == "" {
		logger.Get().Panic().Str("key", c.key(key)).Msg("missing required env")
	}
	return v
}

// MayString treats blank as missing
func (c Conf) MayString(key, def string) string {
	return parsed(c, key, "string", def, func(s string) (string, error) { return s, nil })
}

// parsed reads key through parse, logging and falling back to def on bad input
func parsed[T any](c Conf, key, kind string, def T, parse func(string) (T, error)) T {
	s := c.get(key)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.key(key)).Str("value", s).Msgf("invalid %s; using default", kind)
		return def
	}
	return v
}

func (c Conf) MayInt(key string, def int) int { return parsed(c, key, "int", def, strconv.Atoi) }

func (c Conf) MayBool(key string, def bool) bool {
	return parsed(c, key, "bool", def, strconv.ParseBool)
}

// MayDuration takes Go duration syntax like 250ms or 1m30s
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return parsed(c, key, "duration", def, time.ParseDuration)
}

// MayCSV splits a comma separated value, dropping blanks; def when nothing is left
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.get(key), ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value when it is one of allowed, def when missing
// any other value panics
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return v
		}
	}
	logger.Get().Panic().Str("key", c.key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}
