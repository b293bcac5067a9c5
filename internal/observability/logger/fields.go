package logger

import (
	"strings"
	"time"

	"go.uber.org/zap"
)

// ─── HTTP ───

func RequestID(v string) zap.Field { return zap.String("request_id", v) }
func Method(v string) zap.Field    { return zap.String("method", v) }
func Path(v string) zap.Field      { return zap.String("path", v) }
func Route(v string) zap.Field     { return zap.String("route", v) }
func Status(v int) zap.Field       { return zap.Int("status", v) }
func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }
func Bytes(v int) zap.Field        { return zap.Int("bytes", v) }
func ClientIP(v string) zap.Field  { return zap.String("client_ip", v) }
func UserAgent(v string) zap.Field { return zap.String("user_agent", v) }

// ─── Domain ───

func UserID(v string) zap.Field    { return zap.String("user_id", v) }
func AttemptID(v string) zap.Field { return zap.String("attempt_id", v) }
func Role(v string) zap.Field      { return zap.String("role", v) }
func Code(v string) zap.Field      { return zap.String("code", v) }

// Email logs a masked address: "ann@example.com" becomes "a…@e….com".
func Email(v string) zap.Field { return zap.String("email", MaskEmail(v)) }

func MaskEmail(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	at := strings.IndexByte(s, '@')
	if at <= 0 {
		if len(s) <= 3 {
			return strings.Repeat("*", len(s))
		}
		return s[:1] + "…" + s[len(s)-1:]
	}
	local, domain := s[:at], s[at+1:]
	if len(local) > 1 {
		local = local[:1] + "…"
	}
	labels := strings.Split(domain, ".")
	if len(labels[0]) > 1 {
		labels[0] = labels[0][:1] + "…"
	}
	return local + "@" + strings.Join(labels, ".")
}

// ─── System ───

func Component(v string) zap.Field { return zap.String("component", v) }
func Op(v string) zap.Field        { return zap.String("op", v) }
func Layer(v string) zap.Field     { return zap.String("layer", v) }
func Driver(v string) zap.Field    { return zap.String("driver", v) }
func Err(err error) zap.Field      { return zap.Error(err) }

func Duration(key string, v time.Duration) zap.Field { return zap.Duration(key, v) }
func Count(v int) zap.Field                          { return zap.Int("count", v) }
func String(key, v string) zap.Field                 { return zap.String(key, v) }
func Int(key string, v int) zap.Field                { return zap.Int(key, v) }
func Bool(key string, v bool) zap.Field              { return zap.Bool(key, v) }
func Any(key string, v any) zap.Field                { return zap.Any(key, v) }
