package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/leapstack-labs/phonebook/pkg/core"
)

var contactColumns = []string{"id", "name", "phone", "email", "is_favorite", "created_at"}

func selectContacts() squirrel.SelectBuilder {
	return squirrel.Select(contactColumns...).From("contacts")
}

func scanContact(row rowScanner) (*core.Contact, error) {
	c := &core.Contact{}
	var email sql.NullString
	var createdAt int64
	if err := row.Scan(&c.ID, &c.Name, &c.Phone, &email, &c.IsFavorite, &createdAt); err != nil {
		return nil, err
	}
	c.Email = email.String
	c.CreatedAt = fromMillis(createdAt)
	return c, nil
}

func queryContacts(ctx context.Context, q queryer, sb squirrel.SelectBuilder) ([]*core.Contact, error) {
	query, args, err := sb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build contact query: %w", err)
	}

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	contacts := []*core.Contact{}
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, c)
	}
	return contacts, rows.Err()
}

func getContact(ctx context.Context, q queryer, id int64) (*core.Contact, error) {
	query, args, err := selectContacts().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build contact query: %w", err)
	}

	c, err := scanContact(q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound("contact", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}
	return c, nil
}

// contactName returns the name of a contact, or NotFoundError.
func contactName(ctx context.Context, q queryer, id int64) (string, error) {
	var name string
	err := q.QueryRowContext(ctx, `SELECT name FROM contacts WHERE id = ?`, id).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", notFound("contact", id)
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up contact: %w", err)
	}
	return name, nil
}

// CreateContact inserts c and assigns its ID.
func (s *SQLiteStore) CreateContact(ctx context.Context, c *core.Contact) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = nowMillis()
	}
	c.CreatedAt = fromMillis(toMillis(c.CreatedAt))

	query, args, err := squirrel.Insert("contacts").
		Columns("name", "phone", "email", "is_favorite", "created_at").
		Values(c.Name, c.Phone, nullString(c.Email), c.IsFavorite, toMillis(c.CreatedAt)).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read contact id: %w", err)
	}
	c.ID = id

	s.logger.Debug("created contact", slog.Int64("id", id), slog.String("name", c.Name))
	return nil
}

// GetContact retrieves a contact by ID.
func (s *SQLiteStore) GetContact(ctx context.Context, id int64) (*core.Contact, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}
	return getContact(ctx, s.db, id)
}

// ListContacts retrieves contacts in the requested order.
// Returns an empty slice when there are none.
func (s *SQLiteStore) ListContacts(ctx context.Context, q core.ContactQuery) ([]*core.Contact, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	sb := selectContacts()
	if q.FavoritesOnly {
		sb = sb.Where(squirrel.Eq{"is_favorite": true})
	}
	switch q.Sort {
	case core.SortByName:
		sb = sb.OrderBy("name COLLATE NOCASE", "id")
	default:
		sb = sb.OrderBy("id")
	}

	return queryContacts(ctx, s.db, sb)
}

// SearchContacts returns contacts whose name, phone or email contains
// keyword, ignoring case.
func (s *SQLiteStore) SearchContacts(ctx context.Context, keyword string) ([]*core.Contact, error) {
	if s.db == nil {
		return nil, fmt.Errorf("database not opened")
	}

	sb := selectContacts().
		Where(squirrel.Or{
			containsFold("name", keyword),
			containsFold("phone", keyword),
			containsFold("email", keyword),
		}).
		OrderBy("id")

	return queryContacts(ctx, s.db, sb)
}

// UpdateContact writes the name, phone and email of c.
func (s *SQLiteStore) UpdateContact(ctx context.Context, c *core.Contact) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	query, args, err := squirrel.Update("contacts").
		Set("name", c.Name).
		Set("phone", c.Phone).
		Set("email", nullString(c.Email)).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound("contact", c.ID)
	}
	return nil
}

// ToggleFavorite flips the favorite flag and returns the updated contact.
func (s *SQLiteStore) ToggleFavorite(ctx context.Context, id int64) (*core.Contact, error) {
	var contact *core.Contact
	err := s.inTx(ctx, func(q queryer) error {
		query, args, err := squirrel.Update("contacts").
			Set("is_favorite", squirrel.Expr("NOT is_favorite")).
			Where(squirrel.Eq{"id": id}).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build update: %w", err)
		}

		result, err := q.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to toggle favorite: %w", err)
		}
		if n, err := result.RowsAffected(); err != nil {
			return fmt.Errorf("failed to read rows affected: %w", err)
		} else if n == 0 {
			return notFound("contact", id)
		}

		contact, err = getContact(ctx, q, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return contact, nil
}

// DeleteContact removes one contact together with its messages and calls.
func (s *SQLiteStore) DeleteContact(ctx context.Context, id int64) error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM contacts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return notFound("contact", id)
	}

	s.logger.Debug("deleted contact", slog.Int64("id", id))
	return nil
}

// DeleteAllContacts removes every contact and returns how many were removed.
// Messages and calls are removed with them by ON DELETE CASCADE.
func (s *SQLiteStore) DeleteAllContacts(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM contacts`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete contacts: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}

	s.logger.Debug("deleted all contacts", slog.Int64("count", rowsAffected))
	return rowsAffected, nil
}

// CountContacts returns the number of stored contacts.
func (s *SQLiteStore) CountContacts(ctx context.Context) (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}

	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contacts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count contacts: %w", err)
	}
	return n, nil
}
