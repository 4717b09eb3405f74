package book_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/leapstack-labs/phonebook/internal/book"
	"github.com/leapstack-labs/phonebook/internal/state"
	"github.com/leapstack-labs/phonebook/internal/testutil"
	"github.com/leapstack-labs/phonebook/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedNow is the clock of every test book.
var fixedNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func setupTestBook(t *testing.T) *book.Book {
	t.Helper()
	store := state.NewSQLiteStore(testutil.NewTestLogger(t))
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.InitSchema(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	return book.New(store, book.Options{
		Logger:   testutil.NewTestLogger(t),
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
	})
}

func mustCreate(t *testing.T, b *book.Book, name, phone, email string) *core.Contact {
	t.Helper()
	c, err := b.CreateContact(context.Background(), book.ContactInput{Name: name, Phone: phone, Email: email})
	require.NoError(t, err)
	return c
}

func assertValidation(t *testing.T, err error, field string) {
	t.Helper()
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	assert.Equal(t, field, verr.Field)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestCreateContact(t *testing.T) {
	tests := []struct {
		name    string
		input   book.ContactInput
		field   string
		wantErr bool
	}{
		{name: "all fields", input: book.ContactInput{Name: "Alice", Phone: "555-1000", Email: "a@x.io"}},
		{name: "email optional", input: book.ContactInput{Name: "Bob", Phone: "555-2000"}},
		{name: "empty name", input: book.ContactInput{Phone: "555"}, wantErr: true, field: "name"},
		{name: "blank name", input: book.ContactInput{Name: "   ", Phone: "555"}, wantErr: true, field: "name"},
		{name: "empty phone", input: book.ContactInput{Name: "Carol"}, wantErr: true, field: "phone"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := setupTestBook(t)
			ctx := context.Background()

			c, err := b.CreateContact(ctx, tt.input)
			if tt.wantErr {
				assertValidation(t, err, tt.field)
				contacts, err := b.ListContacts(ctx, book.ListOptions{})
				require.NoError(t, err)
				assert.Empty(t, contacts)
				return
			}

			require.NoError(t, err)
			assert.NotZero(t, c.ID)
			assert.Equal(t, tt.input.Name, c.Name)
			assert.Equal(t, tt.input.Email, c.Email)
			assert.False(t, c.IsFavorite)
		})
	}
}

func TestCreateThenListHasOneMatchingRecord(t *testing.T) {
	b := setupTestBook(t)
	ctx := context.Background()

	existing := mustCreate(t, b, "Zoe", "555-0000", "")
	c := mustCreate(t, b, "  Alice  ", " 555-1000 ", "")
	assert.Equal(t, "Alice", c.Name, "input is trimmed")
	assert.Greater(t, c.ID, existing.ID)

	contacts, err := b.ListContacts(ctx, book.ListOptions{})
	require.NoError(t, err)

	matches := 0
	for _, got := range contacts {
		if got.Name == "Alice" && got.Phone == "555-1000" {
			matches++
			assert.Equal(t, c.ID, got.ID)
		}
	}
	assert.Equal(t, 1, matches)
}

func TestListContacts(t *testing.T) {
	b := setupTestBook(t)
	ctx := context.Background()

	empty, err := b.ListContacts(ctx, book.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, empty)

	carol := mustCreate(t, b, "carol", "3", "")
	alice := mustCreate(t, b, "Alice", "1", "")
	_, err = b.ToggleFavorite(ctx, alice.ID)
	require.NoError(t, err)

	byName, err := b.ListContacts(ctx, book.ListOptions{Sort: "NAME"})
	require.NoError(t, err)
	require.Len(t, byName, 2)
	assert.Equal(t, alice.ID, byName[0].ID)
	assert.Equal(t, carol.ID, byName[1].ID)

	favorites, err := b.ListContacts(ctx, book.ListOptions{FavoritesOnly: true})
	require.NoError(t, err)
	require.Len(t, favorites, 1)
	assert.Equal(t, alice.ID, favorites[0].ID)

	_, err = b.ListContacts(ctx, book.ListOptions{Sort: "age"})
	assertValidation(t, err, "sort")
}

func TestSearchContacts(t *testing.T) {
	b := setupTestBook(t)
	ctx := context.Background()

	alice := mustCreate(t, b, "Alice", "555-1000", "alice@home.net")
	bob := mustCreate(t, b, "Bob", "555-2000", "bob@WORK.com")
	elodie := mustCreate(t, b, "Élodie", "+33 140 00", "")

	tests := []struct {
		keyword string
		want    []int64
		field   string
	}{
		{keyword: "Élodie", want: []int64{elodie.ID}},
		{keyword: "élodie", want: []int64{elodie.ID}},
		{keyword: "ÉLO", want: []int64{elodie.ID}},
		{keyword: "ALI", want: []int64{alice.ID}},
		{keyword: "2000", want: []int64{bob.ID}},
		{keyword: "work", want: []int64{bob.ID}},
		{keyword: "555", want: []int64{alice.ID, bob.ID}},
		{keyword: "zzz", want: []int64{}},
		{keyword: "", field: "keyword"},
		{keyword: "   ", field: "keyword"},
	}

	for _, tt := range tests {
		t.Run("keyword="+tt.keyword, func(t *testing.T) {
			got, err := b.SearchContacts(ctx, tt.keyword)
			if tt.field != "" {
				assertValidation(t, err, tt.field)
				return
			}
			require.NoError(t, err)
			ids := []int64{}
			for _, c := range got {
				ids = append(ids, c.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestUpdateContact(t *testing.T) {
	b := setupTestBook(t)
	ctx := context.Background()

	c := mustCreate(t, b, "Alice", "555-1000", "alice@home.net")

	t.Run("blank fields keep prior values", func(t *testing.T) {
		got, err := b.UpdateContact(ctx, c.ID, book.ContactPatch{Phone: "555-9999", Email: "  "})
		require.NoError(t, err)
		assert.Equal(t, "Alice", got.Name)
		assert.Equal(t, "555-9999", got.Phone)
		assert.Equal(t, "alice@home.net", got.Email)

		stored, err := b.GetContact(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, got, stored)
	})

	t.Run("unknown id", func(t *testing.T) {
		_, err := b.UpdateContact(ctx, 404, book.ContactPatch{Name: "Ghost"})
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestToggleFavoriteTwiceRestores(t *testing.T) {
	b := setupTestBook(t)
	ctx := context.Background()

	c := mustCreate(t, b, "Alice", "555-1000", "")

	once, err := b.ToggleFavorite(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, !c.IsFavorite, once.IsFavorite)

	twice, err := b.ToggleFavorite(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.IsFavorite, twice.IsFavorite)

	_, err = b.ToggleFavorite(ctx, 404)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteContact(t *testing.T) {
	b := setupTestBook(t)
	ctx := context.Background()

	c := mustCreate(t, b, "Alice", "555-1000", "")
	_, err := b.LogMessage(ctx, c.ID, "hi", core.DirectionSent)
	require.NoError(t, err)

	require.NoError(t, b.DeleteContact(ctx, c.ID))
	assert.ErrorIs(t, b.DeleteContact(ctx, c.ID), core.ErrNotFound)

	found, err := b.SearchMessages(ctx, "hi")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestDeleteAllContactsCascades(t *testing.T) {
	b := setupTestBook(t)
	ctx := context.Background()

	alice := mustCreate(t, b, "Alice", "555-1000", "")
	mustCreate(t, b, "Bob", "555-2000", "")
	_, err := b.LogMessage(ctx, alice.ID, "see you", core.DirectionReceived)
	require.NoError(t, err)
	_, err = b.LogCall(ctx, book.CallInput{ContactID: alice.ID, Type: "missed"})
	require.NoError(t, err)

	n, err := b.DeleteAllContacts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	calls, err := b.CallHistory(ctx)
	require.NoError(t, err)
	assert.Empty(t, calls)

	messages, err := b.SearchMessages(ctx, "see")
	require.NoError(t, err)
	assert.Empty(t, messages)

	count, err := b.CountContacts(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	n, err = b.DeleteAllContacts(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "deleting an empty book is not an error")
}

func TestMessages(t *testing.T) {
	b := setupTestBook(t)
	ctx := context.Background()

	alice := mustCreate(t, b, "Alice", "555-1000", "")
	bob := mustCreate(t, b, "Bob", "555-2000", "")

	t.Run("conversation in logging order", func(t *testing.T) {
		contents := []string{"first", "second", "third"}
		for i, content := range contents {
			dir := core.DirectionSent
			if i%2 == 1 {
				dir = core.DirectionReceived
			}
			_, err := b.LogMessage(ctx, alice.ID, content, dir)
			require.NoError(t, err)
		}
		_, err := b.LogMessage(ctx, bob.ID, "unrelated", core.DirectionSent)
		require.NoError(t, err)

		conversation, err := b.Conversation(ctx, alice.ID)
		require.NoError(t, err)
		require.Len(t, conversation, len(contents))
		for i, m := range conversation {
			assert.Equal(t, contents[i], m.Content)
		}
		assert.Equal(t, core.DirectionReceived, conversation[1].Direction)
	})

	t.Run("empty conversation", func(t *testing.T) {
		carol := mustCreate(t, b, "Carol", "555-3000", "")
		conversation, err := b.Conversation(ctx, carol.ID)
		require.NoError(t, err)
		assert.Empty(t, conversation)
	})

	t.Run("search carries contact name", func(t *testing.T) {
		found, err := b.SearchMessages(ctx, "UNREL")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Bob", found[0].ContactName)
	})

	t.Run("search folds non-ASCII case", func(t *testing.T) {
		_, err := b.LogMessage(ctx, bob.ID, "Ça va?", core.DirectionReceived)
		require.NoError(t, err)

		for _, keyword := range []string{"Ça", "ça va"} {
			found, err := b.SearchMessages(ctx, keyword)
			require.NoError(t, err)
			require.Len(t, found, 1, keyword)
			assert.Equal(t, "Ça va?", found[0].Content)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := b.LogMessage(ctx, alice.ID, "  ", core.DirectionSent)
		assertValidation(t, err, "content")

		_, err = b.LogMessage(ctx, alice.ID, "hello", core.Direction("sideways"))
		assertValidation(t, err, "direction")

		_, err = b.SearchMessages(ctx, "")
		assertValidation(t, err, "keyword")
	})

	t.Run("unknown contact", func(t *testing.T) {
		_, err := b.LogMessage(ctx, 404, "hello", core.DirectionSent)
		assert.ErrorIs(t, err, core.ErrNotFound)

		_, err = b.Conversation(ctx, 404)
		assert.ErrorIs(t, err, core.ErrNotFound)
	})
}

func TestLogCall(t *testing.T) {
	b := setupTestBook(t)
	ctx := context.Background()

	alice := mustCreate(t, b, "Alice", "555-1000", "")

	tests := []struct {
		name   string
		input  book.CallInput
		want   time.Time
		field  string
		absent bool
	}{
		{
			name:  "defaults to now",
			input: book.CallInput{ContactID: alice.ID, Type: "missed"},
			want:  fixedNow,
		},
		{
			name:  "explicit minute",
			input: book.CallInput{ContactID: alice.ID, Type: "Incoming", At: "2024-01-02 08:15"},
			want:  time.Date(2024, 1, 2, 8, 15, 0, 0, time.UTC),
		},
		{
			name:  "explicit seconds",
			input: book.CallInput{ContactID: alice.ID, Type: "outgoing", At: "2024-01-02 08:15:30"},
			want:  time.Date(2024, 1, 2, 8, 15, 30, 0, time.UTC),
		},
		{
			name:  "rfc3339 keeps its offset",
			input: book.CallInput{ContactID: alice.ID, Type: "outgoing", At: "2024-01-02T10:00:00+02:00"},
			want:  time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC),
		},
		{
			name:  "invalid type",
			input: book.CallInput{ContactID: alice.ID, Type: "dropped"},
			field: "call_type",
		},
		{
			name:  "empty type",
			input: book.CallInput{ContactID: alice.ID},
			field: "call_type",
		},
		{
			name:  "malformed time",
			input: book.CallInput{ContactID: alice.ID, Type: "missed", At: "yesterday"},
			field: "timestamp",
		},
		{
			name:   "unknown contact",
			input:  book.CallInput{ContactID: 404, Type: "missed"},
			absent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before, err := b.CallHistory(ctx)
			require.NoError(t, err)

			c, err := b.LogCall(ctx, tt.input)

			switch {
			case tt.field != "":
				assertValidation(t, err, tt.field)
			case tt.absent:
				assert.ErrorIs(t, err, core.ErrNotFound)
			default:
				require.NoError(t, err)
				assert.NotZero(t, c.ID)
				assert.Equal(t, "Alice", c.ContactName)
				assert.True(t, tt.want.Equal(c.Timestamp), "want %s, got %s", tt.want, c.Timestamp)
				return
			}

			after, err := b.CallHistory(ctx)
			require.NoError(t, err)
			assert.Len(t, after, len(before), "failed log must persist nothing")
		})
	}
}

func TestCallQueries(t *testing.T) {
	b := setupTestBook(t)
	ctx := context.Background()

	alice := mustCreate(t, b, "Alice", "555-1000", "")
	bob := mustCreate(t, b, "Bob", "555-2000", "")

	logCall := func(id int64, callType, at string) *core.Call {
		c, err := b.LogCall(ctx, book.CallInput{ContactID: id, Type: callType, At: at})
		require.NoError(t, err)
		return c
	}

	startOfDay := logCall(alice.ID, "incoming", "2024-03-10 00:00:00")
	previousDay := logCall(bob.ID, "missed", "2024-03-09 23:59:59")
	endOfDay := logCall(bob.ID, "outgoing", "2024-03-10 23:59:59")
	nextDay := logCall(alice.ID, "missed", "2024-03-11 00:00")

	ids := func(calls []*core.Call) []int64 {
		out := []int64{}
		for _, c := range calls {
			out = append(out, c.ID)
		}
		return out
	}

	t.Run("history newest first", func(t *testing.T) {
		calls, err := b.CallHistory(ctx)
		require.NoError(t, err)
		assert.Equal(t, []int64{nextDay.ID, endOfDay.ID, startOfDay.ID, previousDay.ID}, ids(calls))
	})

	t.Run("contact history in logging order", func(t *testing.T) {
		calls, err := b.ContactCallHistory(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{startOfDay.ID, nextDay.ID}, ids(calls))

		for _, id := range []int64{404, 0, -1} {
			_, err = b.ContactCallHistory(ctx, id)
			assert.ErrorIs(t, err, core.ErrNotFound, "contact %d", id)
		}
	})

	t.Run("filter by type", func(t *testing.T) {
		calls, err := b.FilterCallsByType(ctx, " MISSED ")
		require.NoError(t, err)
		assert.Equal(t, []int64{previousDay.ID, nextDay.ID}, ids(calls))

		_, err = b.FilterCallsByType(ctx, "voicemail")
		assertValidation(t, err, "call_type")
	})

	t.Run("filter by date includes both day boundaries", func(t *testing.T) {
		calls, err := b.FilterCallsByDate(ctx, "2024-03-10")
		require.NoError(t, err)
		assert.Equal(t, []int64{startOfDay.ID, endOfDay.ID}, ids(calls))

		none, err := b.FilterCallsByDate(ctx, "2023-01-01")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("malformed date", func(t *testing.T) {
		for _, date := range []string{"", "10/03/2024", "2024-02-30"} {
			_, err := b.FilterCallsByDate(ctx, date)
			assertValidation(t, err, "date")
		}
	})
}

func TestFilterCallsByDateUsesLocation(t *testing.T) {
	store := state.NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.InitSchema(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	tokyo := time.FixedZone("JST", 9*60*60)
	b := book.New(store, book.Options{Location: tokyo})
	ctx := context.Background()

	c, err := b.CreateContact(ctx, book.ContactInput{Name: "Kenji", Phone: "03-0000"})
	require.NoError(t, err)

	// 08:30 JST on the 10th is still the 9th in UTC.
	logged, err := b.LogCall(ctx, book.CallInput{ContactID: c.ID, Type: "incoming", At: "2024-03-10 08:30"})
	require.NoError(t, err)
	assert.Equal(t, 9, logged.Timestamp.UTC().Day())

	calls, err := b.FilterCallsByDate(ctx, "2024-03-10")
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, logged.ID, calls[0].ID)
}

// Scenario: a contact's full lifecycle through favorites, search and
// deletion.
func TestScenarioAlice(t *testing.T) {
	b := setupTestBook(t)
	ctx := context.Background()

	alice := mustCreate(t, b, "Alice", "555-1000", "")

	toggled, err := b.ToggleFavorite(ctx, alice.ID)
	require.NoError(t, err)
	assert.True(t, toggled.IsFavorite)

	found, err := b.SearchContacts(ctx, "ali")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, alice.ID, found[0].ID)
	assert.True(t, found[0].IsFavorite)

	_, err = b.DeleteAllContacts(ctx)
	require.NoError(t, err)

	contacts, err := b.ListContacts(ctx, book.ListOptions{})
	require.NoError(t, err)
	assert.Empty(t, contacts)
}

// Scenario: a missed call logged without a timestamp lands at "now".
func TestScenarioMissedCall(t *testing.T) {
	store := state.NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.InitSchema(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	b := book.New(store, book.Options{})
	ctx := context.Background()

	bob, err := b.CreateContact(ctx, book.ContactInput{Name: "Bob", Phone: "555-2000"})
	require.NoError(t, err)

	_, err = b.LogCall(ctx, book.CallInput{ContactID: bob.ID, Type: "missed"})
	require.NoError(t, err)

	history, err := b.ContactCallHistory(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, core.CallMissed, history[0].Type)
	assert.WithinDuration(t, time.Now(), history[0].Timestamp, 5*time.Second)
}

func TestOperationsAreLogged(t *testing.T) {
	ctx := context.Background()
	store := state.NewSQLiteStore(nil)
	require.NoError(t, store.Open(":memory:"))
	require.NoError(t, store.InitSchema(ctx))
	t.Cleanup(func() { _ = store.Close() })

	logger, logs := testutil.NewCaptureLogger()
	b := book.New(store, book.Options{Logger: logger, Location: time.UTC, Now: func() time.Time { return fixedNow }})

	c := mustCreate(t, b, "Alice", "555-1000", "")
	_, err := b.LogCall(ctx, book.CallInput{ContactID: c.ID, Type: "missed"})
	require.NoError(t, err)
	require.NoError(t, b.DeleteContact(ctx, c.ID))

	assert.True(t, logs.Contains("contact added", "id=1"))
	assert.True(t, logs.Contains("call logged", "type=missed"))
	assert.True(t, logs.Contains("level=INFO", "contact deleted"))

	_, err = b.CreateContact(ctx, book.ContactInput{Phone: "555"})
	require.Error(t, err)
	assert.Len(t, logs.Lines(), 3, "rejected input is not logged")
}
