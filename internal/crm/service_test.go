package crm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryRepo struct {
	nextID   int64
	contacts map[int64]*Contact
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{contacts: map[int64]*Contact{}}
}

func (m *memoryRepo) Get(_ context.Context, id int64) (*Contact, error) {
	c, ok := m.contacts[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (m *memoryRepo) List(_ context.Context, search string, stage *Stage, limit, offset int) ([]Contact, int, error) {
	var out []Contact
	for _, c := range m.contacts {
		if stage != nil && c.Stage != *stage {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Create(_ context.Context, c Contact) (int64, error) {
	for _, existing := range m.contacts {
		if existing.Email == c.Email {
			return 0, ErrDuplicate
		}
	}
	m.nextID++
	c.ID = m.nextID
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.contacts[c.ID] = &c
	return c.ID, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, c Contact) error {
	existing, ok := m.contacts[id]
	if !ok {
		return ErrNotFound
	}
	c.ID = id
	c.Stage = existing.Stage
	c.CreatedBy = existing.CreatedBy
	c.CreatedAt = existing.CreatedAt
	c.UpdatedAt = time.Now()
	m.contacts[id] = &c
	return nil
}

func (m *memoryRepo) SetStage(_ context.Context, id int64, stage Stage) error {
	c, ok := m.contacts[id]
	if !ok {
		return ErrNotFound
	}
	c.Stage = stage
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.contacts[id]; !ok {
		return ErrNotFound
	}
	delete(m.contacts, id)
	return nil
}

func TestCanMove(t *testing.T) {
	require.True(t, CanMove(StageNew, StageContacted))
	require.True(t, CanMove(StageContacted, StageQualified))
	require.True(t, CanMove(StageQualified, StageConverted))
	require.True(t, CanMove(StageNew, StageLost))
	require.True(t, CanMove(StageQualified, StageLost))

	require.False(t, CanMove(StageNew, StageQualified), "no stage skipping")
	require.False(t, CanMove(StageContacted, StageNew), "no moving backwards")
	require.False(t, CanMove(StageConverted, StageLost), "converted is terminal")
	require.False(t, CanMove(StageLost, StageContacted), "lost is terminal")
	require.False(t, CanMove(StageNew, StageNew))
}

func TestCreateContact(t *testing.T) {
	svc := NewService(newMemoryRepo())

	contact, err := svc.Create(context.Background(), SaveContactRequest{
		Name:    "  Jordan Mwangi ",
		Email:   "Jordan@Example.COM",
		Company: "Acme Ltd",
	}, 4)
	require.NoError(t, err)
	require.Equal(t, "Jordan Mwangi", contact.Name)
	require.Equal(t, "jordan@example.com", contact.Email)
	require.Equal(t, StageNew, contact.Stage)
	require.Equal(t, int64(4), contact.CreatedBy)
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), SaveContactRequest{Name: "A", Email: "dup@x.test"}, 1)
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), SaveContactRequest{Name: "B", Email: "DUP@x.test"}, 1)
	require.ErrorIs(t, err, ErrDuplicate)
}

func TestMoveStagePipeline(t *testing.T) {
	svc := NewService(newMemoryRepo())

	contact, err := svc.Create(context.Background(), SaveContactRequest{Name: "A", Email: "a@x.test"}, 1)
	require.NoError(t, err)

	contact, err = svc.MoveStage(context.Background(), contact.ID, StageContacted)
	require.NoError(t, err)
	require.Equal(t, StageContacted, contact.Stage)

	contact, err = svc.MoveStage(context.Background(), contact.ID, StageQualified)
	require.NoError(t, err)
	contact, err = svc.MoveStage(context.Background(), contact.ID, StageConverted)
	require.NoError(t, err)
	require.Equal(t, StageConverted, contact.Stage)

	_, err = svc.MoveStage(context.Background(), contact.ID, StageLost)
	require.ErrorIs(t, err, ErrStageChange)
}

func TestMoveStageRejectsSkip(t *testing.T) {
	svc := NewService(newMemoryRepo())

	contact, err := svc.Create(context.Background(), SaveContactRequest{Name: "A", Email: "a@x.test"}, 1)
	require.NoError(t, err)

	_, err = svc.MoveStage(context.Background(), contact.ID, StageConverted)
	require.ErrorIs(t, err, ErrStageChange)

	got, err := svc.Get(context.Background(), contact.ID)
	require.NoError(t, err)
	require.Equal(t, StageNew, got.Stage)
}

func TestUpdateKeepsStage(t *testing.T) {
	svc := NewService(newMemoryRepo())

	contact, err := svc.Create(context.Background(), SaveContactRequest{Name: "A", Email: "a@x.test"}, 1)
	require.NoError(t, err)
	_, err = svc.MoveStage(context.Background(), contact.ID, StageContacted)
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), contact.ID, SaveContactRequest{
		Name:  "A Renamed",
		Email: "a@x.test",
	})
	require.NoError(t, err)
	require.Equal(t, "A Renamed", updated.Name)
	require.Equal(t, StageContacted, updated.Stage)
}

func TestParseStage(t *testing.T) {
	for _, s := range []string{"new", "contacted", "qualified", "converted", "lost"} {
		parsed, err := ParseStage(s)
		require.NoError(t, err)
		require.Equal(t, Stage(s), parsed)
	}
	_, err := ParseStage("won")
	require.ErrorIs(t, err, ErrUnknownStage)
}
