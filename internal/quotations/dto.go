package quotations

import "time"

// ClientInput carries client fields on create/update requests. Name and email
// are checked by the save gate after trimming, not by struct tags, so the
// error message can name the offending field.
type ClientInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
}

// LineItemInput is one editable quotation row.
type LineItemInput struct {
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity" validate:"gte=0"`
	UnitPrice   float64 `json:"unit_price" validate:"gte=0"`
}

// SaveQuotationRequest is the payload for POST /quotations and PUT /quotations/{id}.
type SaveQuotationRequest struct {
	Client     ClientInput     `json:"client"`
	Items      []LineItemInput `json:"items" validate:"dive"`
	TaxRate    float64         `json:"tax_rate" validate:"gte=0,lte=100"`
	Discount   float64         `json:"discount" validate:"gte=0"`
	Currency   string          `json:"currency" validate:"required,oneof=USD KES EUR"`
	IssueDate  time.Time       `json:"issue_date" validate:"required"`
	ExpiryDate time.Time       `json:"expiry_date" validate:"required"`
	Notes      string          `json:"notes,omitempty"`
	Terms      string          `json:"terms,omitempty"`
}

// PatchStatusRequest is the payload for PATCH /quotations/{id}/status.
type PatchStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=sent accepted rejected"`
}

// ListQuotationsRequest filters the paginated listing.
type ListQuotationsRequest struct {
	Search string
	Status *Status
	Limit  int
	Offset int
}

// StatsOverview aggregates quotation counts by status for the dashboard.
type StatsOverview struct {
	Total      int     `json:"total"`
	Draft      int     `json:"draft"`
	Sent       int     `json:"sent"`
	Accepted   int     `json:"accepted"`
	Rejected   int     `json:"rejected"`
	Expired    int     `json:"expired"`
	Converted  int     `json:"converted"`
	TotalValue float64 `json:"total_value"`
}

// ConvertResult is returned by the convert-to-invoice endpoint so the caller
// can redirect to the new invoice.
type ConvertResult struct {
	Quotation     *Quotation `json:"quotation"`
	InvoiceID     int64      `json:"invoice_id"`
	InvoiceNumber string     `json:"invoice_number"`
}
