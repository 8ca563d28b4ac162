package models

import (
	"encoding/json"
	"time"
)

// Order statuses. The transition graph is enforced in the service layer.
const (
	OrderScheduled  = "scheduled"
	OrderInProgress = "in_progress"
	OrderCompleted  = "completed"
	OrderCancelled  = "cancelled"
)

// Ticket statuses.
const (
	TicketOpen       = "open"
	TicketAssigned   = "assigned"
	TicketInProgress = "in_progress"
	TicketResolved   = "resolved"
	TicketClosed     = "closed"
)

// Note kinds on the ticket audit log.
const (
	NoteCreated = "created"
	NoteStatus  = "status"
	NoteAssign  = "assign"
	NoteComment = "comment"
)

// Message senders.
const (
	SenderUser   = "user"
	SenderAI     = "ai"
	SenderSystem = "system"
)

const StatusActive = "ACTIVE"

type Plan struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	SpeedMbps int       `json:"speed_mbps"`
	Price     int       `json:"price"`
	DataCapGB *int      `json:"data_cap_gb"`
	OTT       []string  `json:"ott"`
	Areas     []string  `json:"areas"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ServiceArea struct {
	Pincode   string    `json:"pincode"`
	City      string    `json:"city"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Engineer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	Skills    []string  `json:"skills"`
	Areas     []string  `json:"areas"`
	Workload  int       `json:"workload"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TimelineEntry is one append-only audit record on an order.
type TimelineEntry struct {
	Status string    `json:"status"`
	TS     time.Time `json:"ts"`
	By     string    `json:"by"`
}

type Order struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"user_id"`
	PlanID             string          `json:"plan_id"`
	Price              int             `json:"price"`
	Address            json.RawMessage `json:"address"`
	Pincode            string          `json:"pincode"`
	Status             string          `json:"status"`
	Slot               string          `json:"slot"`
	AssignedEngineerID *string         `json:"assigned_engineer_id"`
	Timeline           []TimelineEntry `json:"timeline"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// TicketNote is one append-only audit record on a ticket.
type TicketNote struct {
	TS      time.Time `json:"ts"`
	By      string    `json:"by"`
	Kind    string    `json:"type"`
	Message string    `json:"message"`
}

// TicketAssignee references the staff user a ticket is assigned to.
type TicketAssignee struct {
	UserID string `json:"user_id"`
}

type Ticket struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	IssueType   string          `json:"issue_type"`
	Severity    string          `json:"severity"`
	Status      string          `json:"status"`
	AssignedTo  *TicketAssignee `json:"assigned_to"`
	Notes       []TicketNote    `json:"notes"`
	Attachments []string        `json:"attachments"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type Conversation struct {
	ID            string          `json:"id"`
	UserID        string          `json:"user_id"`
	StartedAt     time.Time       `json:"started_at"`
	LastMessageAt time.Time       `json:"last_message_at"`
	Meta          json.RawMessage `json:"meta"`
}

// Message belongs to a conversation by reference. Ids are time-prefixed, so
// ordering by id is chronological and an id doubles as a history cursor.
type Message struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversation_id"`
	Sender         string          `json:"sender"`
	Text           *string         `json:"text"`
	Payload        json.RawMessage `json:"payload"`
	CreatedAt      time.Time       `json:"created_at"`
}
