// Package mail delivers verification emails through a configured provider.
package mail

import (
	"context"

	"github.com/dmitrijs2005/talentmatch/internal/identity"
	"github.com/dmitrijs2005/talentmatch/internal/logging"
	"github.com/google/uuid"
)

// LogDispatcher writes messages to the log instead of sending them. It is
// the development provider and always succeeds.
type LogDispatcher struct {
	from   string
	logger logging.Logger
}

func NewLogDispatcher(from string, logger logging.Logger) *LogDispatcher {
	return &LogDispatcher{from: from, logger: logger}
}

func (d *LogDispatcher) Send(ctx context.Context, msg identity.Message) (identity.Delivery, error) {
	id := "log-" + uuid.NewString()
	d.logger.Info(ctx, "mail dispatched",
		"provider", "log",
		"message_id", id,
		"from", d.from,
		"to", msg.To,
		"subject", msg.Subject,
		"body", msg.BodyHTML,
	)
	return identity.Delivery{Success: true, MessageID: id}, nil
}
