package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/crmclient/internal/client/client"
	"github.com/dmitrijs2005/crmclient/internal/client/models"
)

const dateLayout = "2006-01-02"

// List prints one record collection as a table.
func (a *App) List(ctx context.Context, kind string) error {
	if !a.requireSession(ctx) {
		return errNotLoggedIn
	}

	var err error
	switch kind {
	case "contacts":
		err = listTable(ctx, a.out, a.api.Contacts(),
			[]string{"ID", "NAME", "PHONE", "CITY", "SOURCE"},
			func(c models.Contact) []string {
				return []string{id(c.ID), c.FirstName + " " + c.LastName, c.PrimaryPhone, deref(c.City), deref(c.ContactSource)}
			})
	case "properties":
		err = listTable(ctx, a.out, a.api.Properties(),
			[]string{"ID", "NAME", "UNIT", "PRICE", "STATUS"},
			func(p models.Property) []string {
				return []string{id(p.ID), p.Name, deref(p.UnitNo), money(p.Price), p.Status}
			})
	case "leads":
		err = listTable(ctx, a.out, a.api.Leads(),
			[]string{"ID", "CONTACT", "PROPERTY", "STATUS", "ASSIGNED TO"},
			func(l models.Lead) []string {
				prop := ""
				if l.PropertyID != nil {
					prop = id(*l.PropertyID)
				}
				return []string{id(l.ID), id(l.ContactID), prop, id(l.StatusID), id(l.AssignedTo)}
			})
	case "deals":
		err = listTable(ctx, a.out, a.api.Deals(),
			[]string{"ID", "LEAD", "PROPERTY", "STATUS", "AMOUNT", "DATE"},
			func(d models.Deal) []string {
				return []string{id(d.ID), id(d.LeadID), id(d.PropertyID), d.DealStatus, money(d.DealAmount), date(d.DealDate)}
			})
	case "tasks":
		err = listTable(ctx, a.out, a.api.Tasks(),
			[]string{"ID", "TASK", "DUE", "STATUS", "ASSIGNED TO"},
			func(t models.Task) []string {
				return []string{id(t.ID), t.TaskName, date(t.DueDate), t.Status, id(t.AssignedTo)}
			})
	case "events":
		err = listTable(ctx, a.out, a.api.Events(),
			[]string{"ID", "EVENT", "START", "END", "LOCATION"},
			func(e models.Event) []string {
				return []string{id(e.ID), e.EventName, e.StartTime.Format(time.DateTime), e.EndTime.Format(time.DateTime), deref(e.Location)}
			})
	default:
		fmt.Fprintf(a.out, "Unknown record kind %q. Use one of: %s\n", kind, strings.Join(recordKinds, ", "))
		return fmt.Errorf("unknown record kind %q", kind)
	}

	if err != nil {
		a.reportAPIError(ctx, err)
	}
	return err
}

// Show prints one record as JSON. A contact also gets its notes and
// communication log.
func (a *App) Show(ctx context.Context, args []string) error {
	if len(args) != 2 {
		fmt.Fprintln(a.out, "Usage: show <"+strings.Join(recordKinds, "|")+"> <id>")
		return errors.New("usage: show <kind> <id>")
	}
	recID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		fmt.Fprintf(a.out, "Invalid id %q.\n", args[1])
		return err
	}
	if !a.requireSession(ctx) {
		return errNotLoggedIn
	}

	var rec any
	switch args[0] {
	case "contacts", "contact":
		rec, err = a.showContact(ctx, recID)
	case "properties", "property":
		rec, err = a.api.Properties().Get(ctx, recID)
	case "leads", "lead":
		rec, err = a.api.Leads().Get(ctx, recID)
	case "deals", "deal":
		rec, err = a.api.Deals().Get(ctx, recID)
	case "tasks", "task":
		rec, err = a.api.Tasks().Get(ctx, recID)
	case "events", "event":
		rec, err = a.api.Events().Get(ctx, recID)
	default:
		fmt.Fprintf(a.out, "Unknown record kind %q.\n", args[0])
		return fmt.Errorf("unknown record kind %q", args[0])
	}
	if err != nil {
		a.reportAPIError(ctx, err)
		return err
	}
	return printJSON(a.out, rec)
}

type contactDetails struct {
	*models.Contact
	Notes    []models.Note    `json:"notes"`
	CommLogs []models.CommLog `json:"comm_logs"`
}

func (a *App) showContact(ctx context.Context, contactID int64) (*contactDetails, error) {
	c, err := a.api.Contacts().Get(ctx, contactID)
	if err != nil {
		return nil, err
	}
	notes, err := a.api.ContactNotes(contactID).List(ctx)
	if err != nil {
		return nil, err
	}
	logs, err := a.api.ContactCommLogs(contactID).List(ctx)
	if err != nil {
		return nil, err
	}
	return &contactDetails{Contact: c, Notes: notes, CommLogs: logs}, nil
}

// AddNote reads a multi-line note and attaches it to a contact.
func (a *App) AddNote(ctx context.Context, args []string) error {
	if len(args) != 1 {
		fmt.Fprintln(a.out, "Usage: addnote <contact-id>")
		return errors.New("usage: addnote <contact-id>")
	}
	contactID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(a.out, "Invalid id %q.\n", args[0])
		return err
	}
	if !a.requireSession(ctx) {
		return errNotLoggedIn
	}

	text, err := readMultilineFn(a.reader, a.out, "Enter note text")
	if err != nil {
		return err
	}
	if text == "" {
		fmt.Fprintln(a.out, "Empty note, nothing saved.")
		return nil
	}

	n, err := a.api.ContactNotes(contactID).Create(ctx, &models.Note{ContactID: contactID, NoteText: text})
	if err != nil {
		a.reportAPIError(ctx, err)
		return err
	}
	fmt.Fprintf(a.out, "Note %d added.\n", n.ID)
	return nil
}

var readMultilineFn = ReadMultiline

// reportAPIError turns an API failure into a user message. A rejected
// session is announced by the session subscriber, so it only gets a hint.
func (a *App) reportAPIError(ctx context.Context, err error) {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintln(a.out, "Please log in first.")
	case errors.Is(err, client.ErrForbidden):
		fmt.Fprintln(a.out, "Access denied.")
	case errors.Is(err, client.ErrNotFound):
		fmt.Fprintln(a.out, "Not found.")
	case errors.Is(err, client.ErrUnavailable):
		a.log.Warn(ctx, "api unavailable", "error", err)
		fmt.Fprintln(a.out, "Service unavailable, please try again later.")
	default:
		a.log.Error(ctx, "api request failed", "error", err)
		fmt.Fprintf(a.out, "Error: %v\n", err)
	}
}

func listTable[T any](ctx context.Context, w io.Writer, r client.Resource[T], header []string, row func(T) []string) error {
	items, err := r.List(ctx)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(w, "No records.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, it := range items {
		fmt.Fprintln(tw, strings.Join(row(it), "\t"))
	}
	return tw.Flush()
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

func money(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}
