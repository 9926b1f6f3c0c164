package auth

import (
	"context"
	"errors"
)

type ctxKey int

const (
	ctxOrganization ctxKey = iota
	ctxEmail
)

func WithIdentity(ctx context.Context, organization, email string) context.Context {
	ctx = context.WithValue(ctx, ctxOrganization, organization)
	ctx = context.WithValue(ctx, ctxEmail, email)
	return ctx
}

func Organization(ctx context.Context) (string, error) {
	v := ctx.Value(ctxOrganization)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("organization not in context")
}

func Email(ctx context.Context) (string, error) {
	v := ctx.Value(ctxEmail)
	if s, ok := v.(string); ok && s != "" {
		return s, nil
	}
	return "", errors.New("email not in context")
}
