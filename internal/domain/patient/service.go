package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/ehr/journal/internal/platform/apperr"
	"github.com/ehr/journal/internal/platform/ident"
)

type Service struct {
	repo  Repository
	newID func() string
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:  repo,
		newID: func() string { return ident.New(ident.PatientPrefix) },
	}
}

// List returns all patients, most recently created first.
func (s *Service) List(ctx context.Context) ([]Patient, error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	return patients, nil
}

// Create validates and prepends a new patient. cpr, name and dob are
// required, and cpr must not already be registered.
func (s *Service) Create(ctx context.Context, cpr, name, dob string) (*Patient, error) {
	p := Patient{
		ID:   s.newID(),
		CPR:  strings.TrimSpace(cpr),
		Name: strings.TrimSpace(name),
		DOB:  strings.TrimSpace(dob),
	}
	if p.CPR == "" || p.Name == "" || p.DOB == "" {
		return nil, apperr.Validation("cpr, name and dob are required")
	}

	err := s.repo.Update(ctx, func(patients []Patient) ([]Patient, error) {
		for _, existing := range patients {
			if existing.CPR == p.CPR {
				return nil, apperr.Conflict("CPR already exists")
			}
		}
		return append([]Patient{p}, patients...), nil
	})
	if err != nil {
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return &p, nil
}

// Exists reports whether a patient with the given id is stored.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return false, fmt.Errorf("lookup patient: %w", err)
	}
	for _, p := range patients {
		if p.ID == id {
			return true, nil
		}
	}
	return false, nil
}
