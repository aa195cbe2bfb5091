// Package history keeps a short rolling window of each session's recent
// exchanges so the generation step can see the conversation without a round
// trip through the relational store. It is a cache: losing it costs prompt
// quality, never data.
package history

import "context"

type MessageHistory interface {
	// Append records one formatted exchange for the session.
	Append(ctx context.Context, sessionID, entry string) error
	// Recent returns up to n entries, oldest first.
	Recent(ctx context.Context, sessionID string, n int) ([]string, error)
	Clear(ctx context.Context, sessionID string) error
}
