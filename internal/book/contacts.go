package book

import (
	"context"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/phonebook/pkg/core"
)

// ContactInput holds the fields of a new contact.
type ContactInput struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email"`
}

func (in ContactInput) trimmed() ContactInput {
	return ContactInput{
		Name:  strings.TrimSpace(in.Name),
		Phone: strings.TrimSpace(in.Phone),
		Email: strings.TrimSpace(in.Email),
	}
}

// ContactPatch holds replacement values for an existing contact.
// Blank fields keep their current value.
type ContactPatch struct {
	Name  string
	Phone string
	Email string
}

// ListOptions narrows and orders a contact listing.
type ListOptions struct {
	Sort          string `json:"sort" validate:"omitempty,oneof=id name"`
	FavoritesOnly bool   `json:"favorites"`
}

type searchInput struct {
	Keyword string `json:"keyword" validate:"required"`
}

// CreateContact adds a contact and returns it with its assigned id.
func (b *Book) CreateContact(ctx context.Context, in ContactInput) (*core.Contact, error) {
	in = in.trimmed()
	if err := b.check(in); err != nil {
		return nil, err
	}

	c := &core.Contact{Name: in.Name, Phone: in.Phone, Email: in.Email}
	if err := b.store.CreateContact(ctx, c); err != nil {
		return nil, err
	}

	b.logger.Debug("contact added", slog.Int64("id", c.ID))
	return c, nil
}

// GetContact returns one contact.
func (b *Book) GetContact(ctx context.Context, id int64) (*core.Contact, error) {
	return b.store.GetContact(ctx, id)
}

// ListContacts returns contacts ordered by id unless opts asks for name order.
// An empty book yields an empty slice.
func (b *Book) ListContacts(ctx context.Context, opts ListOptions) ([]*core.Contact, error) {
	opts.Sort = strings.ToLower(strings.TrimSpace(opts.Sort))
	if err := b.check(opts); err != nil {
		return nil, err
	}

	return b.store.ListContacts(ctx, core.ContactQuery{
		Sort:          core.ContactSort(opts.Sort),
		FavoritesOnly: opts.FavoritesOnly,
	})
}

// SearchContacts returns contacts whose name, phone or email contains
// keyword, ignoring case.
func (b *Book) SearchContacts(ctx context.Context, keyword string) ([]*core.Contact, error) {
	in := searchInput{Keyword: strings.TrimSpace(keyword)}
	if err := b.check(in); err != nil {
		return nil, err
	}
	return b.store.SearchContacts(ctx, in.Keyword)
}

// UpdateContact applies patch to the contact with the given id and
// returns the result.
func (b *Book) UpdateContact(ctx context.Context, id int64, patch ContactPatch) (*core.Contact, error) {
	c, err := b.store.GetContact(ctx, id)
	if err != nil {
		return nil, err
	}

	if v := strings.TrimSpace(patch.Name); v != "" {
		c.Name = v
	}
	if v := strings.TrimSpace(patch.Phone); v != "" {
		c.Phone = v
	}
	if v := strings.TrimSpace(patch.Email); v != "" {
		c.Email = v
	}

	if err := b.store.UpdateContact(ctx, c); err != nil {
		return nil, err
	}

	b.logger.Debug("contact updated", slog.Int64("id", id))
	return c, nil
}

// ToggleFavorite flips the favorite flag of a contact.
func (b *Book) ToggleFavorite(ctx context.Context, id int64) (*core.Contact, error) {
	return b.store.ToggleFavorite(ctx, id)
}

// DeleteContact removes a contact along with its messages and calls.
func (b *Book) DeleteContact(ctx context.Context, id int64) error {
	if err := b.store.DeleteContact(ctx, id); err != nil {
		return err
	}
	b.logger.Info("contact deleted", slog.Int64("id", id))
	return nil
}

// DeleteAllContacts removes every contact, message and call.
// It returns the number of contacts removed.
func (b *Book) DeleteAllContacts(ctx context.Context) (int64, error) {
	n, err := b.store.DeleteAllContacts(ctx)
	if err != nil {
		return 0, err
	}
	b.logger.Info("all contacts deleted", slog.Int64("count", n))
	return n, nil
}

// CountContacts returns the number of stored contacts.
func (b *Book) CountContacts(ctx context.Context) (int64, error) {
	return b.store.CountContacts(ctx)
}

// Stats counts the stored records.
func (b *Book) Stats(ctx context.Context) (*core.Stats, error) {
	return b.store.Stats(ctx)
}
