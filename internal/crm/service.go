package crm

import (
	"context"
	"fmt"
	"strings"
)

// SaveContactRequest carries contact fields on create/update.
type SaveContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

// Service handles contact pipeline logic.
type Service struct {
	repo Repository
}

// NewService builds a CRM Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Create adds a contact in the new stage.
func (s *Service) Create(ctx context.Context, req SaveContactRequest, createdBy int64) (*Contact, error) {
	contact := Contact{
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
		Company:   strings.TrimSpace(req.Company),
		Stage:     StageNew,
		Notes:     req.Notes,
		CreatedBy: createdBy,
	}
	id, err := s.repo.Create(ctx, contact)
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Update replaces the contact's details. The stage is changed only through
// MoveStage.
func (s *Service) Update(ctx context.Context, id int64, req SaveContactRequest) (*Contact, error) {
	contact := Contact{
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:   strings.TrimSpace(req.Phone),
		Company: strings.TrimSpace(req.Company),
		Notes:   req.Notes,
	}
	if err := s.repo.Update(ctx, id, contact); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// MoveStage advances a contact through the pipeline. Stages move forward one
// step at a time; lost is reachable from any active stage.
func (s *Service) MoveStage(ctx context.Context, id int64, target Stage) (*Contact, error) {
	contact, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanMove(contact.Stage, target) {
		return nil, fmt.Errorf("%w: %s to %s", ErrStageChange, contact.Stage, target)
	}
	if err := s.repo.SetStage(ctx, id, target); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Get returns a single contact.
func (s *Service) Get(ctx context.Context, id int64) (*Contact, error) {
	return s.repo.Get(ctx, id)
}

// List returns a filtered page of contacts plus the total match count.
func (s *Service) List(ctx context.Context, search string, stage *Stage, limit, offset int) ([]Contact, int, error) {
	return s.repo.List(ctx, search, stage, limit, offset)
}

// Delete removes a contact.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
