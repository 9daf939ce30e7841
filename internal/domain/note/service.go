package note

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ehr/journal/internal/platform/apperr"
	"github.com/ehr/journal/internal/platform/ident"
	"github.com/ehr/journal/internal/platform/markup"
)

type Service struct {
	repo    Repository
	parents ParentChecker
	newID   func() string
	now     func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		newID: func() string { return ident.New(ident.NotePrefix) },
		now:   time.Now,
	}
}

// SetParentChecker enables the encounter existence check on Create.
func (s *Service) SetParentChecker(pc ParentChecker) {
	s.parents = pc
}

// ListForEncounter returns the notes whose encounter_id equals encounterID
// exactly, in collection order.
func (s *Service) ListForEncounter(ctx context.Context, encounterID string) ([]Note, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	subset := make([]Note, 0)
	for _, n := range all {
		if n.EncounterID == encounterID {
			subset = append(subset, n)
		}
	}
	return subset, nil
}

// Create prepends a note to the encounter. A blank author is stored as
// UnknownAuthor; blank text is rejected. encounterID is stored as given.
func (s *Service) Create(ctx context.Context, encounterID, author, text string) (*Note, error) {
	if strings.TrimSpace(encounterID) == "" {
		return nil, apperr.Validation("encounter id is required")
	}
	author = strings.TrimSpace(author)
	if author == "" {
		author = UnknownAuthor
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, apperr.Validation("text is required")
	}
	if s.parents != nil {
		ok, err := s.parents.Exists(ctx, encounterID)
		if err != nil {
			return nil, fmt.Errorf("create note: %w", err)
		}
		if !ok {
			return nil, apperr.NotFound("encounter %s not found", encounterID)
		}
	}

	n := Note{
		ID:          s.newID(),
		EncounterID: encounterID,
		Author:      author,
		TS:          markup.Timestamp(s.now()),
		Text:        text,
	}
	err := s.repo.Update(ctx, func(list []Note) ([]Note, error) {
		return append([]Note{n}, list...), nil
	})
	if err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	return &n, nil
}
