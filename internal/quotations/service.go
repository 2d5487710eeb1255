package quotations

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/skyfalke/backoffice/internal/notifications"
)

// QuotationEmail describes the outbound email triggered by the send action.
type QuotationEmail struct {
	To              string
	ClientName      string
	QuotationNumber string
	TotalDisplay    string
	ExpiryDate      time.Time
}

// Mailer queues quotation emails for asynchronous delivery.
type Mailer interface {
	EnqueueQuotationEmail(ctx context.Context, email QuotationEmail) error
}

// InvoiceCreator turns an accepted quotation into an invoice and returns the
// new invoice id and display number.
type InvoiceCreator interface {
	CreateFromQuotation(ctx context.Context, q *Quotation) (int64, string, error)
}

// Notifier publishes dashboard notifications on lifecycle events.
type Notifier interface {
	Publish(ctx context.Context, input notifications.PublishInput) (*notifications.Notification, error)
}

// Service handles quotation business logic.
type Service struct {
	repo     Repository
	mailer   Mailer
	invoices InvoiceCreator
	notifier Notifier
	stats    *StatsCache
}

// NewService builds a Service instance. Mailer, invoice creator, notifier and
// stats cache may be nil; the corresponding side effects are then skipped.
func NewService(repo Repository, mailer Mailer, invoices InvoiceCreator, notifier Notifier, stats *StatsCache) *Service {
	return &Service{repo: repo, mailer: mailer, invoices: invoices, notifier: notifier, stats: stats}
}

// prepareForSave runs the pre-save gate: trims and validates the client,
// drops blank items, and recomputes totals from the filtered set. Nothing is
// persisted when an error is returned.
func prepareForSave(req SaveQuotationRequest) (Client, []LineItem, Totals, error) {
	client := Client{
		Name:    strings.TrimSpace(req.Client.Name),
		Email:   strings.TrimSpace(req.Client.Email),
		Phone:   strings.TrimSpace(req.Client.Phone),
		Company: strings.TrimSpace(req.Client.Company),
		Address: strings.TrimSpace(req.Client.Address),
	}
	if client.Name == "" {
		return Client{}, nil, Totals{}, ErrClientNameRequired
	}
	if client.Email == "" {
		return Client{}, nil, Totals{}, ErrClientEmailRequired
	}
	if req.ExpiryDate.Before(req.IssueDate) {
		return Client{}, nil, Totals{}, ErrExpiryBeforeIssue
	}

	items := make([]LineItem, 0, len(req.Items))
	for _, in := range req.Items {
		items = append(items, LineItem{
			Description: in.Description,
			Quantity:    in.Quantity,
			UnitPrice:   in.UnitPrice,
		})
	}
	filtered := FilterBlankItems(items)
	if len(filtered) == 0 {
		return Client{}, nil, Totals{}, ErrNoItems
	}

	totals := ComputeTotals(filtered, req.Discount, req.TaxRate)
	return client, filtered, totals, nil
}

// Create persists a new quotation in draft status.
func (s *Service) Create(ctx context.Context, req SaveQuotationRequest, createdBy int64) (*Quotation, error) {
	client, items, totals, err := prepareForSave(req)
	if err != nil {
		return nil, err
	}

	number, err := s.repo.GenerateNumber(ctx, req.IssueDate)
	if err != nil {
		return nil, fmt.Errorf("generate quotation number: %w", err)
	}

	quotation := Quotation{
		QuotationNumber: number,
		Client:          client,
		Subtotal:        totals.Subtotal,
		TaxRate:         req.TaxRate,
		TaxAmount:       totals.TaxAmount,
		Discount:        req.Discount,
		Total:           totals.Total,
		Currency:        req.Currency,
		IssueDate:       req.IssueDate,
		ExpiryDate:      req.ExpiryDate,
		Status:          StatusDraft,
		Notes:           req.Notes,
		Terms:           req.Terms,
		CreatedBy:       createdBy,
	}

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		var err error
		id, err = repo.Create(ctx, quotation)
		if err != nil {
			return fmt.Errorf("create quotation: %w", err)
		}
		return repo.InsertItems(ctx, id, items)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx)
	return s.repo.Get(ctx, id)
}

// Update replaces the editable fields and items of a quotation. Edits are
// permitted while the status allows the save action; the status itself never
// changes here.
func (s *Service) Update(ctx context.Context, id int64, req SaveQuotationRequest) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !existing.CanEdit() {
		return nil, ErrNotEditable
	}

	client, items, totals, err := prepareForSave(req)
	if err != nil {
		return nil, err
	}

	updated := *existing
	updated.Client = client
	updated.Subtotal = totals.Subtotal
	updated.TaxRate = req.TaxRate
	updated.TaxAmount = totals.TaxAmount
	updated.Discount = req.Discount
	updated.Total = totals.Total
	updated.Currency = req.Currency
	updated.IssueDate = req.IssueDate
	updated.ExpiryDate = req.ExpiryDate
	updated.Notes = req.Notes
	updated.Terms = req.Terms

	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.Update(ctx, id, updated); err != nil {
			return err
		}
		if err := repo.DeleteItems(ctx, id); err != nil {
			return err
		}
		return repo.InsertItems(ctx, id, items)
	})
	if err != nil {
		return nil, fmt.Errorf("update quotation: %w", err)
	}

	s.invalidateStats(ctx)
	return s.repo.Get(ctx, id)
}

// Delete removes a quotation. Only drafts can be deleted.
func (s *Service) Delete(ctx context.Context, id int64) error {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !existing.CanDelete() {
		return ErrNotDraft
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateStats(ctx)
	return nil
}

// Send transitions a draft to sent and queues the quotation email.
func (s *Service) Send(ctx context.Context, id int64) (*Quotation, error) {
	quotation, err := s.applyAction(ctx, id, ActionSend)
	if err != nil {
		return nil, err
	}

	if s.mailer != nil {
		email := QuotationEmail{
			To:              quotation.Client.Email,
			ClientName:      quotation.Client.Name,
			QuotationNumber: quotation.QuotationNumber,
			TotalDisplay:    FormatAmount(quotation.Currency, quotation.Total),
			ExpiryDate:      quotation.ExpiryDate,
		}
		if err := s.mailer.EnqueueQuotationEmail(ctx, email); err != nil {
			return nil, fmt.Errorf("queue quotation email: %w", err)
		}
	}

	s.notify(ctx, quotation, "quotation.sent", "Quotation sent",
		fmt.Sprintf("Quotation %s was sent to %s", quotation.QuotationNumber, quotation.Client.Email))
	return quotation, nil
}

// SetStatus applies a generic status transition requested over the API.
func (s *Service) SetStatus(ctx context.Context, id int64, target Status) (*Quotation, error) {
	action, err := actionForTarget(target)
	if err != nil {
		return nil, err
	}
	quotation, err := s.applyAction(ctx, id, action)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, quotation, "quotation."+string(target),
		fmt.Sprintf("Quotation %s", target),
		fmt.Sprintf("Quotation %s is now %s", quotation.QuotationNumber, target))
	return quotation, nil
}

func actionForTarget(target Status) (Action, error) {
	switch target {
	case StatusSent:
		return ActionSend, nil
	case StatusAccepted:
		return ActionAccept, nil
	case StatusRejected:
		return ActionReject, nil
	case StatusExpired:
		return ActionExpire, nil
	}
	return "", ErrInvalidTransition
}

// applyAction consults the transition table, persists the new status and
// returns the refreshed quotation.
func (s *Service) applyAction(ctx context.Context, id int64, action Action) (*Quotation, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := Transition(existing.Status, action)
	if err != nil {
		return nil, fmt.Errorf("%w: cannot %s a %s quotation", ErrInvalidTransition, action, existing.Status)
	}
	if next != existing.Status {
		if err := s.repo.UpdateStatus(ctx, id, next); err != nil {
			return nil, err
		}
		s.invalidateStats(ctx)
	}
	return s.repo.Get(ctx, id)
}

// Convert creates an invoice from an accepted quotation. The action is
// one-way: a converted quotation cannot be converted again.
func (s *Service) Convert(ctx context.Context, id int64) (*ConvertResult, error) {
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.ConvertedToInvoice {
		return nil, ErrAlreadyConverted
	}
	if _, err := Transition(existing.Status, ActionConvert); err != nil {
		return nil, fmt.Errorf("%w: only accepted quotations can be converted", ErrInvalidTransition)
	}
	if s.invoices == nil {
		return nil, fmt.Errorf("invoice creation is not configured")
	}

	// The guarded flag update is the at-most-once gate: it runs before the
	// invoice insert so a lost race never creates a second invoice, and a
	// failed insert rolls the flag back with the transaction.
	var invoiceID int64
	var invoiceNumber string
	err = s.repo.WithTx(ctx, func(ctx context.Context, repo Repository) error {
		if err := repo.MarkConverted(ctx, id); err != nil {
			return err
		}
		var err error
		invoiceID, invoiceNumber, err = s.invoices.CreateFromQuotation(ctx, existing)
		if err != nil {
			return fmt.Errorf("create invoice: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateStats(ctx)
	quotation, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, quotation, "quotation.converted", "Quotation converted",
		fmt.Sprintf("Quotation %s was converted to invoice %s", quotation.QuotationNumber, invoiceNumber))
	return &ConvertResult{Quotation: quotation, InvoiceID: invoiceID, InvoiceNumber: invoiceNumber}, nil
}

// ExpireDue moves sent quotations past their expiry date to expired. It is
// invoked by the nightly sweep job and returns the number of quotations that
// changed state.
func (s *Service) ExpireDue(ctx context.Context, asOf time.Time) (int, error) {
	ids, err := s.repo.ListExpiryDue(ctx, asOf)
	if err != nil {
		return 0, err
	}
	expired := 0
	for _, id := range ids {
		quotation, err := s.applyAction(ctx, id, ActionExpire)
		if err != nil {
			return expired, err
		}
		expired++
		s.notify(ctx, quotation, "quotation.expired", "Quotation expired",
			fmt.Sprintf("Quotation %s expired on %s", quotation.QuotationNumber, quotation.ExpiryDate.Format("2006-01-02")))
	}
	return expired, nil
}

// Get returns a single quotation.
func (s *Service) Get(ctx context.Context, id int64) (*Quotation, error) {
	return s.repo.Get(ctx, id)
}

// List returns a filtered page of quotations plus the total match count.
func (s *Service) List(ctx context.Context, req ListQuotationsRequest) ([]Quotation, int, error) {
	return s.repo.List(ctx, req)
}

// Stats aggregates counts by status for the dashboard overview.
func (s *Service) Stats(ctx context.Context) (StatsOverview, error) {
	if s.stats == nil {
		return s.repo.Stats(ctx)
	}
	return s.stats.Fetch(ctx, s.repo.Stats)
}

func (s *Service) invalidateStats(ctx context.Context) {
	if s.stats != nil {
		s.stats.Invalidate(ctx)
	}
}

func (s *Service) notify(ctx context.Context, q *Quotation, kind, title, body string) {
	if s.notifier == nil || q.CreatedBy == 0 {
		return
	}
	_, _ = s.notifier.Publish(ctx, notifications.PublishInput{
		UserID: q.CreatedBy,
		Kind:   kind,
		Title:  title,
		Body:   body,
		Ref:    fmt.Sprintf("quotations/%d", q.ID),
	})
}
