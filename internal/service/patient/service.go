package patient

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-console/internal/apiclient"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/pkg/logger"
)

// Service exposes the patient-report endpoints. Search and date filters are
// serialized as query parameters, so a filter change always re-queries.
type Service struct {
	api    *apiclient.Client
	logger *logger.Logger
}

func NewService(api *apiclient.Client, log *logger.Logger) *Service {
	return &Service{api: api, logger: log}
}

func (s *Service) List(ctx context.Context, f model.PatientFilters) ([]model.PatientReport, error) {
	query := map[string]string{}
	if f.Search != "" {
		query["search"] = f.Search
	}
	if f.SpecificDate != "" {
		query["specific_date"] = f.SpecificDate
	}

	var reports []model.PatientReport
	if err := s.api.Get(ctx, "/patients", &reports, query); err != nil {
		return nil, fmt.Errorf("failed to fetch patients: %w", err)
	}
	return reports, nil
}

func (s *Service) Get(ctx context.Context, patientID string) (*model.PatientReport, error) {
	var report model.PatientReport
	if err := s.api.Get(ctx, "/patients/"+patientID, &report, nil); err != nil {
		return nil, fmt.Errorf("failed to fetch patient: %w", err)
	}
	return &report, nil
}

func (s *Service) Delete(ctx context.Context, patientID string) error {
	if err := s.api.Delete(ctx, "/patients/"+patientID); err != nil {
		return fmt.Errorf("failed to delete patient report: %w", err)
	}
	return nil
}
