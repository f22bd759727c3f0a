package auth

import "context"

type contextKey string

const (
	contextKeySession contextKey = "auth.session"
	contextKeySubject contextKey = "auth.subject"
)

// WithSession stores the resolved session and token subject in context.
func WithSession(ctx context.Context, session Session, subject string) context.Context {
	ctx = context.WithValue(ctx, contextKeySession, session)
	ctx = context.WithValue(ctx, contextKeySubject, subject)
	return ctx
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) (Session, bool) {
	if ctx == nil {
		return Session{}, false
	}
	session, ok := ctx.Value(contextKeySession).(Session)
	return session, ok
}

// RoleFromContext extracts the session role from context.
func RoleFromContext(ctx context.Context) Role {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return ""
	}
	return session.Role
}

// PermissionsFromContext returns the permissions of the context session.
// A context without a session grants nothing.
func PermissionsFromContext(ctx context.Context) PermissionSet {
	session, ok := SessionFromContext(ctx)
	if !ok {
		return PermissionSet{}
	}
	return session.Permissions
}

// SubjectFromContext extracts subject from context.
func SubjectFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if subject, ok := ctx.Value(contextKeySubject).(string); ok {
		return subject
	}
	return ""
}
