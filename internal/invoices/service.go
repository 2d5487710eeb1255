package invoices

import (
	"context"
	"fmt"
	"time"

	"github.com/skyfalke/backoffice/internal/quotations"
)

// DefaultPaymentTermDays is the due-date offset applied to new invoices.
const DefaultPaymentTermDays = 30

// Service handles invoice business logic.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds an invoice Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// CreateFromQuotation issues an invoice carrying the quotation's client,
// items and totals. It satisfies the creator port the quotation service
// expects for the convert action.
func (s *Service) CreateFromQuotation(ctx context.Context, q *quotations.Quotation) (int64, string, error) {
	issueDate := s.now().UTC().Truncate(24 * time.Hour)
	number, err := s.repo.GenerateNumber(ctx, issueDate)
	if err != nil {
		return 0, "", fmt.Errorf("generate invoice number: %w", err)
	}

	items := make([]LineItem, 0, len(q.Items))
	for _, item := range q.Items {
		items = append(items, LineItem{
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		})
	}

	quotationID := q.ID
	invoice := Invoice{
		InvoiceNumber: number,
		QuotationID:   &quotationID,
		ClientName:    q.Client.Name,
		ClientEmail:   q.Client.Email,
		Subtotal:      q.Subtotal,
		TaxRate:       q.TaxRate,
		TaxAmount:     q.TaxAmount,
		Discount:      q.Discount,
		Total:         q.Total,
		Currency:      q.Currency,
		Status:        StatusIssued,
		IssueDate:     issueDate,
		DueDate:       issueDate.AddDate(0, 0, DefaultPaymentTermDays),
		CreatedBy:     q.CreatedBy,
	}

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		id, err = repo.Create(ctx, invoice)
		if err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		return repo.InsertItems(ctx, id, items)
	})
	if err != nil {
		return 0, "", err
	}
	return id, number, nil
}

// Get returns a single invoice.
func (s *Service) Get(ctx context.Context, id int64) (*Invoice, error) {
	return s.repo.Get(ctx, id)
}

// List returns a page of invoices plus the total count.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Invoice, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// MarkPaid records payment on an issued invoice.
func (s *Service) MarkPaid(ctx context.Context, id int64) (*Invoice, error) {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	switch invoice.Status {
	case StatusPaid:
		return nil, ErrAlreadyPaid
	case StatusVoid:
		return nil, ErrVoided
	}

	paidAt := s.now().UTC()
	if err := s.repo.SetStatus(ctx, id, StatusPaid, &paidAt); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Void cancels an issued invoice. Paid invoices cannot be voided.
func (s *Service) Void(ctx context.Context, id int64) (*Invoice, error) {
	invoice, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if invoice.Status != StatusIssued {
		return nil, ErrNotIssued
	}
	if err := s.repo.SetStatus(ctx, id, StatusVoid, nil); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}
