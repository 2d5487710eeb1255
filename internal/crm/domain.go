package crm

import (
	"errors"
	"time"
)

// Stage enumerates the pipeline position of a contact.
type Stage string

const (
	StageNew       Stage = "new"
	StageContacted Stage = "contacted"
	StageQualified Stage = "qualified"
	StageConverted Stage = "converted"
	StageLost      Stage = "lost"
)

var (
	ErrNotFound     = errors.New("contact not found")
	ErrUnknownStage = errors.New("unknown pipeline stage")
	ErrStageChange  = errors.New("invalid pipeline stage change")
	ErrDuplicate    = errors.New("a contact with this email already exists")
)

// stageOrder drives forward-only movement through the pipeline. Converted and
// lost are terminal; lost can be reached from any active stage.
var stageOrder = map[Stage]int{
	StageNew:       0,
	StageContacted: 1,
	StageQualified: 2,
	StageConverted: 3,
}

// ParseStage validates a wire-format stage string.
func ParseStage(s string) (Stage, error) {
	switch Stage(s) {
	case StageNew, StageContacted, StageQualified, StageConverted, StageLost:
		return Stage(s), nil
	}
	return "", ErrUnknownStage
}

// CanMove reports whether a contact may move from one stage to another.
func CanMove(from, to Stage) bool {
	if from == to {
		return false
	}
	if from == StageConverted || from == StageLost {
		return false
	}
	if to == StageLost {
		return true
	}
	fromRank, ok := stageOrder[from]
	if !ok {
		return false
	}
	toRank, ok := stageOrder[to]
	if !ok {
		return false
	}
	return toRank == fromRank+1
}

// Contact is a prospective or existing client tracked in the pipeline.
type Contact struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone,omitempty"`
	Company   string    `json:"company,omitempty"`
	Stage     Stage     `json:"stage"`
	Notes     string    `json:"notes,omitempty"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
