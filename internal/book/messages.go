package book

import (
	"context"
	"log/slog"
	"strings"

	"github.com/leapstack-labs/phonebook/pkg/core"
)

type messageInput struct {
	Content   string         `json:"content" validate:"required"`
	Direction core.Direction `json:"direction" validate:"required,direction"`
}

// LogMessage records a message exchanged with a contact.
func (b *Book) LogMessage(ctx context.Context, contactID int64, content string, dir core.Direction) (*core.Message, error) {
	in := messageInput{Content: strings.TrimSpace(content), Direction: dir}
	if err := b.check(in); err != nil {
		return nil, err
	}

	m := &core.Message{ContactID: contactID, Content: in.Content, Direction: in.Direction}
	if err := b.store.CreateMessage(ctx, m); err != nil {
		return nil, err
	}

	b.logger.Debug("message logged", slog.Int64("id", m.ID), slog.Int64("contact_id", contactID))
	return m, nil
}

// Conversation returns every message with a contact in the order logged.
func (b *Book) Conversation(ctx context.Context, contactID int64) ([]*core.Message, error) {
	return b.store.ListMessages(ctx, contactID)
}

// SearchMessages returns messages whose content contains keyword,
// ignoring case. Each result carries its contact's name.
func (b *Book) SearchMessages(ctx context.Context, keyword string) ([]*core.Message, error) {
	in := searchInput{Keyword: strings.TrimSpace(keyword)}
	if err := b.check(in); err != nil {
		return nil, err
	}
	return b.store.SearchMessages(ctx, in.Keyword)
}
