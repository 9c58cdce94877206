package ports

import "context"

// EventPublisher notifies other services about completed logins
type EventPublisher interface {
	PublishLogin(ctx context.Context, address, accountID string, created bool) error
}
