package core

import "time"

// Contact is a person in the phone book.
// Email is empty when the contact has no email address.
type Contact struct {
	ID         int64     `json:"id" yaml:"id"`
	Name       string    `json:"name" yaml:"name"`
	Phone      string    `json:"phone" yaml:"phone"`
	Email      string    `json:"email,omitempty" yaml:"email,omitempty"`
	IsFavorite bool      `json:"is_favorite" yaml:"is_favorite"`
	CreatedAt  time.Time `json:"created_at" yaml:"created_at"`
}

// HasEmail reports whether the contact has an email address.
func (c *Contact) HasEmail() bool {
	return c.Email != ""
}

// Message is a text exchanged with a contact.
// ContactName is populated by reads that join the owning contact.
type Message struct {
	ID          int64     `json:"id" yaml:"id"`
	ContactID   int64     `json:"contact_id" yaml:"contact_id"`
	ContactName string    `json:"contact_name,omitempty" yaml:"contact_name,omitempty"`
	Content     string    `json:"content" yaml:"content"`
	Direction   Direction `json:"direction" yaml:"direction"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

// IsSent reports whether the message was outgoing.
func (m *Message) IsSent() bool {
	return m.Direction == DirectionSent
}

// Call is a phone call logged against a contact.
// ContactName is populated by reads that join the owning contact.
type Call struct {
	ID          int64     `json:"id" yaml:"id"`
	ContactID   int64     `json:"contact_id" yaml:"contact_id"`
	ContactName string    `json:"contact_name,omitempty" yaml:"contact_name,omitempty"`
	Type        CallType  `json:"call_type" yaml:"call_type"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
}
