package state

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/leapstack-labs/phonebook/pkg/core"
)

func selectMessages() squirrel.SelectBuilder {
	return squirrel.Select("m.id", "m.contact_id", "c.name", "m.content", "m.is_sent", "m.created_at").
		From("messages m").
		Join("contacts c ON c.id = m.contact_id")
}

func queryMessages(ctx context.Context, q queryer, sb squirrel.SelectBuilder) ([]*core.Message, error) {
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build message query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer func() { _ = rows.Close() }()

	messages := []*core.Message{}
	for rows.Next() {
		m := &core.Message{}
		var isSent bool
		var createdAt int64
		if err := rows.Scan(&m.ID, &m.ContactID, &m.ContactName, &m.Content, &isSent, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Direction = core.DirectionFromSent(isSent)
		m.CreatedAt = fromMillis(createdAt)
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// CreateMessage inserts m and assigns its ID.
// Returns NotFoundError if the contact does not exist.
func (s *SQLiteStore) CreateMessage(ctx context.Context, m *core.Message) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = nowMillis()
	}
	m.CreatedAt = fromMillis(toMillis(m.CreatedAt))

	return s.inTx(ctx, func(q queryer) error {
		name, err := contactName(ctx, q, m.ContactID)
		if err != nil {
			return err
		}

		query, args, err := squirrel.Insert("messages").
			Columns("contact_id", "content", "is_sent", "created_at").
			Values(m.ContactID, m.Content, m.IsSent(), toMillis(m.CreatedAt)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert: %w", err)
		}

		result, err := q.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to create message: %w", err)
		}
		if m.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read message id: %w", err)
		}
		m.ContactName = name

		s.logger.Debug("logged message",
			slog.Int64("id", m.ID),
			slog.Int64("contact_id", m.ContactID),
			slog.String("direction", m.Direction.String()))
		return nil
	})
}

// ListMessages returns every message of a contact in the order it was logged.
// Returns NotFoundError if the contact does not exist.
func (s *SQLiteStore) ListMessages(ctx context.Context, contactID int64) ([]*core.Message, error) {
	var messages []*core.Message
	err := s.inTx(ctx, func(q queryer) error {
		if _, err := contactName(ctx, q, contactID); err != nil {
			return err
		}

		var err error
		messages, err = queryMessages(ctx, q, selectMessages().
			Where(squirrel.Eq{"m.contact_id": contactID}).
			OrderBy("m.id"))
		return err
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// SearchMessages returns messages whose content contains keyword, ignoring case.
func (s *SQLiteStore) SearchMessages(ctx context.Context, keyword string) ([]*core.Message, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	return queryMessages(ctx, s.db, selectMessages().
		Where(containsFold("m.content", keyword)).
		OrderBy("m.id"))
}
