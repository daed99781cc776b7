package session

import (
	"context"

	"github.com/dmitrijs2005/talentmatch/internal/logging"
)

// WithSession bootstraps a Manager, runs fn, and tears the Manager down on
// every exit path, panics included.
func WithSession(ctx context.Context, credentials Credentials, profiles Profiles, logger logging.Logger,
	fn func(ctx context.Context, m *Manager) error, opts ...Option) error {

	m := New(credentials, profiles, logger, opts...)
	defer m.Teardown()

	if err := m.Bootstrap(ctx); err != nil {
		return err
	}
	return fn(ctx, m)
}
