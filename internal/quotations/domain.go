package quotations

import (
	"errors"
	"time"
)

// Status enumerates quotation lifecycle states.
type Status string

const (
	StatusDraft    Status = "draft"
	StatusSent     Status = "sent"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	StatusExpired  Status = "expired"
)

// Action enumerates operations that may move a quotation between states.
type Action string

const (
	ActionSave    Action = "save"
	ActionSend    Action = "send"
	ActionAccept  Action = "accept"
	ActionReject  Action = "reject"
	ActionExpire  Action = "expire"
	ActionConvert Action = "convert"
	ActionDelete  Action = "delete"
)

var (
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrAlreadyConverted    = errors.New("quotation already converted to invoice")
	ErrNotDraft            = errors.New("only draft quotations can be deleted")
	ErrNotEditable         = errors.New("quotation can no longer be edited")
	ErrNoItems             = errors.New("add at least one item")
	ErrClientNameRequired  = errors.New("client name is required")
	ErrClientEmailRequired = errors.New("client email is required")
	ErrExpiryBeforeIssue   = errors.New("expiry date must not be before issue date")
	ErrUnknownStatus       = errors.New("unknown status")
)

// transitions is the single authoritative table of allowed state changes.
// Every entry point consults it; nothing else inspects Status directly.
var transitions = map[Status]map[Action]Status{
	StatusDraft: {
		ActionSave:   StatusDraft,
		ActionSend:   StatusSent,
		ActionDelete: StatusDraft,
	},
	StatusSent: {
		ActionSave:   StatusSent,
		ActionAccept: StatusAccepted,
		ActionReject: StatusRejected,
		ActionExpire: StatusExpired,
	},
	StatusAccepted: {
		ActionConvert: StatusAccepted,
	},
}

// Transition returns the state reached by applying action in the from state,
// or ErrInvalidTransition when the table has no such entry.
func Transition(from Status, action Action) (Status, error) {
	if allowed, ok := transitions[from]; ok {
		if next, ok := allowed[action]; ok {
			return next, nil
		}
	}
	return "", ErrInvalidTransition
}

// Allows reports whether action is permitted in the from state.
func Allows(from Status, action Action) bool {
	_, err := Transition(from, action)
	return err == nil
}

// ParseStatus validates a wire-format status string.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected, StatusExpired:
		return Status(s), nil
	}
	return "", ErrUnknownStatus
}

// Client identifies the recipient of a quotation.
type Client struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
}

// LineItem is one priced row within a quotation.
type LineItem struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

// Quotation is a priced proposal document sent to a prospective client.
type Quotation struct {
	ID                 int64      `json:"id"`
	QuotationNumber    string     `json:"quotation_number"`
	Client             Client     `json:"client"`
	Items              []LineItem `json:"items"`
	Subtotal           float64    `json:"subtotal"`
	TaxRate            float64    `json:"tax_rate"`
	TaxAmount          float64    `json:"tax_amount"`
	Discount           float64    `json:"discount"`
	Total              float64    `json:"total"`
	Currency           string     `json:"currency"`
	IssueDate          time.Time  `json:"issue_date"`
	ExpiryDate         time.Time  `json:"expiry_date"`
	Status             Status     `json:"status"`
	ConvertedToInvoice bool       `json:"converted_to_invoice"`
	Notes              string     `json:"notes,omitempty"`
	Terms              string     `json:"terms,omitempty"`
	CreatedBy          int64      `json:"created_by"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CanConvert reports whether the convert-to-invoice action is available.
func (q *Quotation) CanConvert() bool {
	return Allows(q.Status, ActionConvert) && !q.ConvertedToInvoice
}

// CanEdit reports whether the quotation may still be modified.
func (q *Quotation) CanEdit() bool {
	return Allows(q.Status, ActionSave)
}

// CanDelete reports whether the quotation may be removed.
func (q *Quotation) CanDelete() bool {
	return Allows(q.Status, ActionDelete)
}
