package book

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/leapstack-labs/phonebook/pkg/core"
)

// DateLayout is the format of a calendar day filter.
const DateLayout = "2006-01-02"

// CallTimeLayout is the preferred format for an explicit call time.
const CallTimeLayout = "2006-01-02 15:04"

// callTimeLayouts are tried in order; the first two are read in the
// book's location, RFC 3339 carries its own offset.
var callTimeLayouts = []string{CallTimeLayout, "2006-01-02 15:04:05", time.RFC3339}

// CallInput holds the fields of a call to log.
// An empty At means now.
type CallInput struct {
	ContactID int64  `json:"contact_id"`
	Type      string `json:"call_type" validate:"required,call_type"`
	At        string `json:"timestamp" validate:"omitempty,call_time"`
}

type typeFilter struct {
	Type string `json:"call_type" validate:"required,call_type"`
}

type dateFilter struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
}

func parseCallTime(s string, loc *time.Location) (time.Time, error) {
	for _, layout := range callTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q", s)
}

// LogCall records a call with a contact. Nothing is stored if the
// input is invalid or the contact does not exist.
func (b *Book) LogCall(ctx context.Context, in CallInput) (*core.Call, error) {
	in.Type = strings.TrimSpace(in.Type)
	in.At = strings.TrimSpace(in.At)
	if err := b.check(in); err != nil {
		return nil, err
	}

	callType, err := core.ParseCallType(in.Type)
	if err != nil {
		return nil, err
	}

	at := b.now()
	if in.At != "" {
		if at, err = parseCallTime(in.At, b.loc); err != nil {
			return nil, &core.ValidationError{Field: "timestamp", Reason: err.Error()}
		}
	}

	c := &core.Call{ContactID: in.ContactID, Type: callType, Timestamp: at}
	if err := b.store.CreateCall(ctx, c); err != nil {
		return nil, err
	}

	b.logger.Debug("call logged",
		slog.Int64("id", c.ID),
		slog.Int64("contact_id", c.ContactID),
		slog.String("type", c.Type.String()))
	return c, nil
}

// CallHistory returns every call, most recent first.
func (b *Book) CallHistory(ctx context.Context) ([]*core.Call, error) {
	return b.store.ListCalls(ctx, core.CallFilter{Order: core.CallOrderTimeDesc})
}

// ContactCallHistory returns the calls of one contact in the order logged.
// A zero ContactID in a CallFilter means every contact, so ids that can
// never exist are rejected here.
func (b *Book) ContactCallHistory(ctx context.Context, contactID int64) ([]*core.Call, error) {
	if contactID <= 0 {
		return nil, &core.NotFoundError{Entity: "contact", ID: contactID}
	}
	return b.store.ListCalls(ctx, core.CallFilter{ContactID: contactID})
}

// FilterCallsByType returns calls of one type in the order logged.
func (b *Book) FilterCallsByType(ctx context.Context, callType string) ([]*core.Call, error) {
	in := typeFilter{Type: strings.TrimSpace(callType)}
	if err := b.check(in); err != nil {
		return nil, err
	}

	t, err := core.ParseCallType(in.Type)
	if err != nil {
		return nil, err
	}
	return b.store.ListCalls(ctx, core.CallFilter{Type: t})
}

// FilterCallsByDate returns the calls placed on a calendar day
// (YYYY-MM-DD, in the book's location), oldest first. Both ends of
// the day are included.
func (b *Book) FilterCallsByDate(ctx context.Context, date string) ([]*core.Call, error) {
	in := dateFilter{Date: strings.TrimSpace(date)}
	if err := b.check(in); err != nil {
		return nil, err
	}

	day, err := time.ParseInLocation(DateLayout, in.Date, b.loc)
	if err != nil {
		return nil, &core.ValidationError{Field: "date", Reason: err.Error()}
	}

	return b.store.ListCalls(ctx, core.CallFilter{
		From:  day,
		To:    day.AddDate(0, 0, 1).Add(-time.Millisecond),
		Order: core.CallOrderTimeAsc,
	})
}
