package core

import (
	"context"
	"time"
)

// Store defines the interface for phone book persistence.
type Store interface {
	Open(path string) error
	Close() error
	InitSchema(ctx context.Context) error

	// Contact operations
	CreateContact(ctx context.Context, c *Contact) error
	GetContact(ctx context.Context, id int64) (*Contact, error)
	ListContacts(ctx context.Context, q ContactQuery) ([]*Contact, error)
	SearchContacts(ctx context.Context, keyword string) ([]*Contact, error)
	UpdateContact(ctx context.Context, c *Contact) error
	ToggleFavorite(ctx context.Context, id int64) (*Contact, error)
	DeleteContact(ctx context.Context, id int64) error
	DeleteAllContacts(ctx context.Context) (int64, error)
	CountContacts(ctx context.Context) (int64, error)

	// Message operations
	CreateMessage(ctx context.Context, m *Message) error
	ListMessages(ctx context.Context, contactID int64) ([]*Message, error)
	SearchMessages(ctx context.Context, keyword string) ([]*Message, error)

	// Call operations
	CreateCall(ctx context.Context, c *Call) error
	ListCalls(ctx context.Context, f CallFilter) ([]*Call, error)

	Stats(ctx context.Context) (*Stats, error)
}

// Stats counts the stored records.
type Stats struct {
	Contacts  int64 `json:"contacts" yaml:"contacts"`
	Favorites int64 `json:"favorites" yaml:"favorites"`
	Messages  int64 `json:"messages" yaml:"messages"`
	Calls     int64 `json:"calls" yaml:"calls"`
}

// ContactSort selects the ordering of a contact listing.
type ContactSort string

// Contact orderings.
const (
	SortByID   ContactSort = "id"
	SortByName ContactSort = "name"
)

// ContactQuery narrows and orders a contact listing.
type ContactQuery struct {
	Sort          ContactSort
	FavoritesOnly bool
}

// CallOrder selects the ordering of a call listing.
type CallOrder int

// Call orderings.
const (
	CallOrderID CallOrder = iota
	CallOrderTimeAsc
	CallOrderTimeDesc
)

// CallFilter narrows a call listing. Zero values mean "no restriction".
// From and To are inclusive bounds on the call timestamp.
type CallFilter struct {
	ContactID int64
	Type      CallType
	From      time.Time
	To        time.Time
	Order     CallOrder
}
