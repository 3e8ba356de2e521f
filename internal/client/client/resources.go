package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/crmclient/internal/client/models"
)

// Resource is a REST collection at a fixed path: GET/POST on the collection,
// GET/PUT/DELETE on /{id}.
type Resource[T any] struct {
	c    *HTTPClient
	path string
}

func newResource[T any](c *HTTPClient, path string) Resource[T] {
	return Resource[T]{c: c, path: path}
}

func (r Resource[T]) List(ctx context.Context) ([]T, error) {
	var out []T
	if err := r.c.do(ctx, http.MethodGet, r.path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r Resource[T]) Get(ctx context.Context, id int64) (*T, error) {
	var out T
	if err := r.c.do(ctx, http.MethodGet, r.item(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r Resource[T]) Create(ctx context.Context, v *T) (*T, error) {
	var out T
	if err := r.c.do(ctx, http.MethodPost, r.path, v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r Resource[T]) Update(ctx context.Context, id int64, v *T) (*T, error) {
	var out T
	if err := r.c.do(ctx, http.MethodPut, r.item(id), v, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r Resource[T]) Delete(ctx context.Context, id int64) error {
	return r.c.do(ctx, http.MethodDelete, r.item(id), nil, nil)
}

func (r Resource[T]) item(id int64) string {
	return fmt.Sprintf("%s/%d", r.path, id)
}

func (c *HTTPClient) Contacts() Resource[models.Contact] {
	return newResource[models.Contact](c, "/contacts")
}

func (c *HTTPClient) Properties() Resource[models.Property] {
	return newResource[models.Property](c, "/properties")
}

func (c *HTTPClient) Leads() Resource[models.Lead] {
	return newResource[models.Lead](c, "/leads")
}

func (c *HTTPClient) Deals() Resource[models.Deal] {
	return newResource[models.Deal](c, "/deals")
}

func (c *HTTPClient) Tasks() Resource[models.Task] {
	return newResource[models.Task](c, "/tasks")
}

func (c *HTTPClient) Events() Resource[models.Event] {
	return newResource[models.Event](c, "/events")
}

// ContactNotes is the notes collection nested under one contact.
func (c *HTTPClient) ContactNotes(contactID int64) Resource[models.Note] {
	return newResource[models.Note](c, fmt.Sprintf("/contacts/%d/notes", contactID))
}

// ContactCommLogs is the communication log nested under one contact.
func (c *HTTPClient) ContactCommLogs(contactID int64) Resource[models.CommLog] {
	return newResource[models.CommLog](c, fmt.Sprintf("/contacts/%d/comm-logs", contactID))
}

// Users lists users for assignee selection.
func (c *HTTPClient) Users(ctx context.Context) ([]models.User, error) {
	var out []models.User
	if err := c.do(ctx, http.MethodGet, "/users", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Report names accepted by Report.
const (
	ReportEmployeeLeads = "employee-leads"
	ReportEmployeeSales = "employee-sales"
	ReportSourceLeads   = "source-leads"
	ReportSourceSales   = "source-sales"
	ReportMySales       = "my-sales"
	ReportDealsPipeline = "deals-pipeline"
)

// ReportNames lists every report the API serves, in display order.
var ReportNames = []string{
	ReportEmployeeLeads,
	ReportEmployeeSales,
	ReportSourceLeads,
	ReportSourceSales,
	ReportMySales,
	ReportDealsPipeline,
}

func (c *HTTPClient) EmployeeLeadReport(ctx context.Context) (*models.EmployeeLeadReport, error) {
	var out models.EmployeeLeadReport
	if err := c.do(ctx, http.MethodGet, "/reports/"+ReportEmployeeLeads, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Report fetches a report by name as raw JSON; its shape is owned by the
// server.
func (c *HTTPClient) Report(ctx context.Context, name string) (json.RawMessage, error) {
	var out json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/reports/"+name, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
