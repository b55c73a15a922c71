package service

import "context"

// ClientInfo describes the caller of a request. The HTTP layer attaches it to the
// request context; the audit log reads it back.
type ClientInfo struct {
	IP        string
	UserAgent string
	RequestID string
}

type clientKey struct{}

// WithClient returns a copy of ctx carrying info.
func WithClient(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, clientKey{}, info)
}

// ClientFrom returns the ClientInfo stored in ctx, if any.
func ClientFrom(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(clientKey{}).(ClientInfo)
	return info
}
