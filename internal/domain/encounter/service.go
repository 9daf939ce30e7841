package encounter

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
		newID: func() string { return ident.New(ident.EncounterPrefix) },
		now:   time.Now,
	}
}

// SetParentChecker enables the patient existence check on Create. With no
// checker, patient_id is stored as given.
func (s *Service) SetParentChecker(pc ParentChecker) {
	s.parents = pc
}

// ListForPatient returns the encounters whose patient_id equals patientID
// exactly, in collection order.
func (s *Service) ListForPatient(ctx context.Context, patientID string) ([]Encounter, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list encounters: %w", err)
	}
	subset := make([]Encounter, 0)
	for _, e := range all {
		if e.PatientID == patientID {
			subset = append(subset, e)
		}
	}
	return subset, nil
}

// Create starts a new encounter for patientID now and prepends it.
// patientID is stored exactly as given so ListForPatient finds it again.
func (s *Service) Create(ctx context.Context, patientID string) (*Encounter, error) {
	if strings.TrimSpace(patientID) == "" {
		return nil, apperr.Validation("patient id is required")
	}
	if s.parents != nil {
		ok, err := s.parents.Exists(ctx, patientID)
		if err != nil {
			return nil, fmt.Errorf("create encounter: %w", err)
		}
		if !ok {
			return nil, apperr.NotFound("patient %s not found", patientID)
		}
	}

	enc := Encounter{
		ID:        s.newID(),
		PatientID: patientID,
		Start:     markup.Timestamp(s.now()),
	}
	err := s.repo.Update(ctx, func(list []Encounter) ([]Encounter, error) {
		return append([]Encounter{enc}, list...), nil
	})
	if err != nil {
		return nil, fmt.Errorf("create encounter: %w", err)
	}
	return &enc, nil
}

// Exists reports whether an encounter with the given id is stored.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	all, err := s.repo.List(ctx)
	if err != nil {
		return false, fmt.Errorf("lookup encounter: %w", err)
	}
	for _, e := range all {
		if e.ID == id {
			return true, nil
		}
	}
	return false, nil
}
