// Package models defines the CRM record shapes exchanged with the API. They
// carry no client-side behaviour; the server owns every invariant.
package models

import "time"

type Contact struct {
	ID             int64     `json:"id"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Email          *string   `json:"email,omitempty"`
	PrimaryPhone   string    `json:"primary_phone"`
	SecondaryPhone *string   `json:"secondary_phone,omitempty"`
	Address        *string   `json:"address,omitempty"`
	City           *string   `json:"city,omitempty"`
	SubCity        *string   `json:"sub_city,omitempty"`
	ContactSource  *string   `json:"contact_source,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitzero"`
}

type Property struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	SiteID         int64     `json:"site_id"`
	PropertyTypeID int64     `json:"property_type_id"`
	UnitNo         *string   `json:"unit_no,omitempty"`
	SizeSqft       *float64  `json:"size_sqft,omitempty"`
	Price          float64   `json:"price"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at,omitzero"`
	UpdatedAt      time.Time `json:"updated_at,omitzero"`
}

type Lead struct {
	ID         int64     `json:"id"`
	ContactID  int64     `json:"contact_id"`
	PropertyID *int64    `json:"property_id,omitempty"`
	SourceID   int64     `json:"source_id"`
	StatusID   int64     `json:"status_id"`
	AssignedTo int64     `json:"assigned_to"`
	Notes      *string   `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at,omitzero"`
	UpdatedAt  time.Time `json:"updated_at,omitzero"`
}

type Deal struct {
	ID          int64      `json:"id"`
	LeadID      int64      `json:"lead_id"`
	PropertyID  int64      `json:"property_id"`
	StageID     int64      `json:"stage_id"`
	DealStatus  string     `json:"deal_status"`
	DealAmount  float64    `json:"deal_amount"`
	DealDate    time.Time  `json:"deal_date,omitzero"`
	ClosingDate *time.Time `json:"closing_date,omitempty"`
	Notes       *string    `json:"notes,omitempty"`
	CreatedAt   time.Time  `json:"created_at,omitzero"`
	UpdatedAt   time.Time  `json:"updated_at,omitzero"`
}

type Task struct {
	ID              int64     `json:"id"`
	TaskName        string    `json:"task_name"`
	TaskDescription *string   `json:"task_description,omitempty"`
	DueDate         time.Time `json:"due_date"`
	Status          string    `json:"status"`
	AssignedTo      int64     `json:"assigned_to"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
	UpdatedAt       time.Time `json:"updated_at,omitzero"`
}

type Event struct {
	ID               int64     `json:"id"`
	EventName        string    `json:"event_name"`
	EventDescription *string   `json:"event_description,omitempty"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Location         *string   `json:"location,omitempty"`
	OrganizerID      int64     `json:"organizer_id"`
	CreatedAt        time.Time `json:"created_at,omitzero"`
	UpdatedAt        time.Time `json:"updated_at,omitzero"`
}

// Note is a free-text note attached to a contact.
type Note struct {
	ID        int64     `json:"id"`
	ContactID int64     `json:"contact_id,omitempty"`
	UserID    int64     `json:"user_id"`
	NoteDate  time.Time `json:"note_date,omitzero"`
	NoteText  string    `json:"note_text"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// CommLog records a single interaction (call, email, visit) with a contact.
type CommLog struct {
	ID              int64     `json:"id"`
	ContactID       int64     `json:"contact_id"`
	UserID          int64     `json:"user_id"`
	InteractionDate time.Time `json:"interaction_date"`
	InteractionType string    `json:"interaction_type"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitzero"`
}

// User is the short user listing used for assignee pickers.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
	RoleID   int64  `json:"role_id,omitempty"`
}
