// Package policy is the single authorization table for the portal. Every
// role or ownership gate goes through Allow so the workflow services stay
// free of inline role checks.
package policy

import "github.com/fibrelink/backend/internal/auth"

type Action int

const (
	OrderRead Action = iota
	OrderUpdateStatus
	TicketRead
	TicketClose
	TicketWorkflow // any ticket status change other than closed
	TicketAssign
	TicketComment
)

// Staff roles in order of no particular precedence; holding any one of them
// makes a principal staff.
var staffRoles = []string{"admin", "agent", "engineer"}

type rule struct {
	staff bool // staff principals allowed
	owner bool // the resource owner allowed
}

var rules = map[Action]rule{
	OrderRead:         {staff: true, owner: true},
	OrderUpdateStatus: {staff: true},
	TicketRead:        {staff: true, owner: true},
	TicketClose:       {staff: true, owner: true},
	TicketWorkflow:    {staff: true},
	TicketAssign:      {staff: true},
	TicketComment:     {staff: true, owner: true},
}

// IsStaff reports whether the principal holds any staff role.
func IsStaff(p auth.Principal) bool {
	for _, r := range staffRoles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

// Allow decides whether the principal may perform action on a resource owned
// by ownerID. Unknown actions are denied.
func Allow(action Action, p auth.Principal, ownerID string) bool {
	r, ok := rules[action]
	if !ok {
		return false
	}
	if r.staff && IsStaff(p) {
		return true
	}
	if r.owner && ownerID != "" && p.UserID == ownerID {
		return true
	}
	return false
}
