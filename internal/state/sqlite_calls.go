package state

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/leapstack-labs/phonebook/pkg/core"
)

func queryCalls(ctx context.Context, q queryer, sb squirrel.SelectBuilder) ([]*core.Call, error) {
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build call query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calls: %w", err)
	}
	defer func() { _ = rows.Close() }()

	calls := []*core.Call{}
	for rows.Next() {
		c := &core.Call{}
		var callType string
		var ts int64
		if err := rows.Scan(&c.ID, &c.ContactID, &c.ContactName, &callType, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}
		c.Type = core.CallType(callType)
		c.Timestamp = fromMillis(ts)
		calls = append(calls, c)
	}
	return calls, rows.Err()
}

// CreateCall inserts c and assigns its ID.
// Returns NotFoundError if the contact does not exist.
func (s *SQLiteStore) CreateCall(ctx context.Context, c *core.Call) error {
	if !c.Type.Valid() {
		return &core.ValidationError{Field: "call_type", Reason: fmt.Sprintf("unknown call type %q", c.Type)}
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = nowMillis()
	}
	c.Timestamp = fromMillis(toMillis(c.Timestamp))

	return s.inTx(ctx, func(q queryer) error {
		name, err := contactName(ctx, q, c.ContactID)
		if err != nil {
			return err
		}

		query, args, err := squirrel.Insert("calls").
			Columns("contact_id", "call_type", "timestamp").
			Values(c.ContactID, string(c.Type), toMillis(c.Timestamp)).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build insert: %w", err)
		}

		result, err := q.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to create call: %w", err)
		}
		if c.ID, err = result.LastInsertId(); err != nil {
			return fmt.Errorf("failed to read call id: %w", err)
		}
		c.ContactName = name

		s.logger.Debug("logged call",
			slog.Int64("id", c.ID),
			slog.Int64("contact_id", c.ContactID),
			slog.String("type", c.Type.String()))
		return nil
	})
}

// ListCalls returns the calls matching f.
// Returns NotFoundError if f names a contact that does not exist.
func (s *SQLiteStore) ListCalls(ctx context.Context, f core.CallFilter) ([]*core.Call, error) {
	sb := squirrel.Select("k.id", "k.contact_id", "c.name", "k.call_type", "k.timestamp").
		From("calls k").
		Join("contacts c ON c.id = k.contact_id")

	if f.ContactID != 0 {
		sb = sb.Where(squirrel.Eq{"k.contact_id": f.ContactID})
	}
	if f.Type != "" {
		sb = sb.Where(squirrel.Eq{"k.call_type": string(f.Type)})
	}
	if !f.From.IsZero() {
		sb = sb.Where(squirrel.GtOrEq{"k.timestamp": toMillis(f.From)})
	}
	if !f.To.IsZero() {
		sb = sb.Where(squirrel.LtOrEq{"k.timestamp": toMillis(f.To)})
	}

	switch f.Order {
	case core.CallOrderTimeAsc:
		sb = sb.OrderBy("k.timestamp", "k.id")
	case core.CallOrderTimeDesc:
		sb = sb.OrderBy("k.timestamp DESC", "k.id DESC")
	default:
		sb = sb.OrderBy("k.id")
	}

	var calls []*core.Call
	err := s.inTx(ctx, func(q queryer) error {
		if f.ContactID != 0 {
			if _, err := contactName(ctx, q, f.ContactID); err != nil {
				return err
			}
		}

		var err error
		calls, err = queryCalls(ctx, q, sb)
		return err
	})
	if err != nil {
		return nil, err
	}
	return calls, nil
}
