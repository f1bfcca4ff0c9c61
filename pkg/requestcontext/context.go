// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Middleware and handlers set values; services only read them. Keeping this
// package free of net/http lets the service layer stay testable with fixed
// clocks and synthetic locations:
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
//	ctx = requestcontext.WithLocation(ctx, &domain.Location{Lat: 48.85, Lng: 2.35})
package requestcontext

import (
	"context"
	"time"

	"cartlog/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	requestIDKey   struct{}
	requestTimeKey struct{}
	locationKey    struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
)

// RequestID retrieves the request correlation ID from the context.
// Returns "" if not set.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the actor timestamp from context. The timestamp is supplied
// by the caller (middleware stamps it at request arrival) so that every
// mutation within one request observes the same instant and tests can pin
// the clock. Falls back to time.Now() for non-HTTP contexts.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific actor timestamp into a context.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}

// Location retrieves the device geolocation from context, or nil when the
// client did not report one.
func Location(ctx context.Context) *domain.Location {
	if loc, ok := ctx.Value(locationKey{}).(*domain.Location); ok {
		return loc
	}
	return nil
}

// WithLocation injects a device geolocation into a context. A nil location
// is a no-op so handlers can pass through whatever the client sent.
func WithLocation(ctx context.Context, loc *domain.Location) context.Context {
	if loc == nil {
		return ctx
	}
	return context.WithValue(ctx, locationKey{}, loc)
}

// ClientIP retrieves the client IP address from the context, or "" when no
// middleware recorded one.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the raw User-Agent header from the context, or "".
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithClientInfo injects the client IP and raw User-Agent into a context.
// Middleware sets these on every request; service tests set them directly.
func WithClientInfo(ctx context.Context, ip, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, ip)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}
