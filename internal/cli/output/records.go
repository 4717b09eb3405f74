package output

import (
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/leapstack-labs/phonebook/pkg/core"
)

// titleCase upper-cases the first letter of an enum value for display.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// table writes rows under header in text or markdown form.
// Callers handle machine modes and empty results first.
func (r *Renderer) table(header table.Row, rows []table.Row) {
	t := table.NewWriter()
	t.AppendHeader(header)
	t.AppendRows(rows)

	if r.EffectiveMode() == ModeMarkdown {
		r.Println(t.RenderMarkdown())
		r.Println("")
		return
	}
	t.SetStyle(table.StyleLight)
	r.Println(t.Render())
}

// empty writes the placeholder for an empty result.
func (r *Renderer) empty(msg string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println("_" + msg + "_")
		return
	}
	r.Muted(msg)
}

func (r *Renderer) favoriteMark(c *core.Contact) string {
	if !c.IsFavorite {
		return ""
	}
	if r.EffectiveMode() == ModeMarkdown {
		return "yes"
	}
	return r.styles.Favorite.Render("★")
}

// CallTypeLabel returns the display label of a call type.
func CallTypeLabel(t core.CallType) string {
	return titleCase(t.String())
}

func (r *Renderer) callTypeLabel(t core.CallType) string {
	label := CallTypeLabel(t)
	if t == core.CallMissed && r.EffectiveMode() == ModeText {
		return r.styles.Missed.Render(label)
	}
	return label
}

func (r *Renderer) directionLabel(d core.Direction) string {
	label := titleCase(d.String())
	if r.EffectiveMode() != ModeText {
		return label
	}
	if d == core.DirectionSent {
		return r.styles.Sent.Render(label)
	}
	return r.styles.Received.Render(label)
}

// Contacts writes a contact listing.
func (r *Renderer) Contacts(title string, contacts []*core.Contact) error {
	if ok, err := r.Data(contacts); ok {
		return err
	}

	r.Header(1, fmt.Sprintf("%s (%d)", title, len(contacts)))
	if len(contacts) == 0 {
		r.empty("No contacts found.")
		return nil
	}

	rows := make([]table.Row, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, table.Row{c.ID, c.Name, c.Phone, c.Email, r.favoriteMark(c)})
	}
	r.table(table.Row{"ID", "Name", "Phone", "Email", "Favorite"}, rows)
	return nil
}

// Contact writes a single contact.
func (r *Renderer) Contact(c *core.Contact) error {
	if ok, err := r.Data(c); ok {
		return err
	}

	email := c.Email
	if !c.HasEmail() {
		email = "-"
	}
	favorite := "no"
	if c.IsFavorite {
		favorite = "yes"
	}

	if r.EffectiveMode() == ModeMarkdown {
		r.Println(FormatHeader(2, fmt.Sprintf("%s (#%d)", c.Name, c.ID)))
		r.Println(FormatKeyValue("Phone", c.Phone))
		r.Println(FormatKeyValue("Email", email))
		r.Println(FormatKeyValue("Favorite", favorite))
		r.Println(FormatKeyValue("Added", r.Time(c.CreatedAt)))
		return nil
	}

	name := r.styles.Bold.Render(c.Name)
	if c.IsFavorite {
		name += " " + r.favoriteMark(c)
	}
	r.Printf("%s %s\n", name, r.styles.Muted.Render("#"+strconv.FormatInt(c.ID, 10)))
	r.Printf("  Phone: %s\n", c.Phone)
	r.Printf("  Email: %s\n", email)
	r.Printf("  Added: %s\n", r.Time(c.CreatedAt))
	return nil
}

// Message writes a single logged message.
func (r *Renderer) Message(m *core.Message) error {
	if ok, err := r.Data(m); ok {
		return err
	}
	r.Printf("[%s] %s %s: %s\n", r.Time(m.CreatedAt), r.directionLabel(m.Direction), m.ContactName, m.Content)
	return nil
}

// Messages writes a message search result.
func (r *Renderer) Messages(title string, messages []*core.Message) error {
	if ok, err := r.Data(messages); ok {
		return err
	}

	r.Header(1, fmt.Sprintf("%s (%d)", title, len(messages)))
	if len(messages) == 0 {
		r.empty("No messages found.")
		return nil
	}

	rows := make([]table.Row, 0, len(messages))
	for _, m := range messages {
		rows = append(rows, table.Row{m.ID, m.ContactName, r.directionLabel(m.Direction), m.Content, r.Time(m.CreatedAt)})
	}
	r.table(table.Row{"ID", "Contact", "Direction", "Content", "Time"}, rows)
	return nil
}

// Conversation writes the message thread with one contact.
func (r *Renderer) Conversation(contact *core.Contact, messages []*core.Message) error {
	if ok, err := r.Data(messages); ok {
		return err
	}

	r.Header(1, "Conversation with "+contact.Name)
	if len(messages) == 0 {
		r.empty("No messages yet.")
		return nil
	}

	for _, m := range messages {
		who := "You"
		if !m.IsSent() {
			who = contact.Name
		}
		line := fmt.Sprintf("[%s] %s: %s", r.Time(m.CreatedAt), who, m.Content)
		if r.EffectiveMode() == ModeMarkdown {
			r.Println("- " + line)
			continue
		}
		if m.IsSent() {
			r.Println(r.styles.Sent.Render(line))
		} else {
			r.Println(r.styles.Received.Render(line))
		}
	}
	return nil
}

// Call writes a single logged call.
func (r *Renderer) Call(c *core.Call) error {
	if ok, err := r.Data(c); ok {
		return err
	}
	r.Printf("%s call with %s at %s\n", r.callTypeLabel(c.Type), c.ContactName, r.Time(c.Timestamp))
	return nil
}

// Calls writes a call listing.
func (r *Renderer) Calls(title string, calls []*core.Call) error {
	if ok, err := r.Data(calls); ok {
		return err
	}

	r.Header(1, fmt.Sprintf("%s (%d)", title, len(calls)))
	if len(calls) == 0 {
		r.empty("No calls found.")
		return nil
	}

	rows := make([]table.Row, 0, len(calls))
	for _, c := range calls {
		rows = append(rows, table.Row{c.ID, c.ContactName, r.callTypeLabel(c.Type), r.Time(c.Timestamp)})
	}
	r.table(table.Row{"ID", "Contact", "Type", "Time"}, rows)
	return nil
}
