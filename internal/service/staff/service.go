package staff

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jwalitptl/clinic-console/internal/apiclient"
	"github.com/jwalitptl/clinic-console/internal/model"
	"github.com/jwalitptl/clinic-console/internal/session"
	"github.com/jwalitptl/clinic-console/pkg/errors"
	"github.com/jwalitptl/clinic-console/pkg/logger"
)

// Service exposes the staff endpoints. The staff list has no server-side
// query parameters; Filter narrows the cached list instead.
type Service struct {
	api      *apiclient.Client
	session  *session.Session
	validate *validator.Validate
	logger   *logger.Logger
}

func NewService(api *apiclient.Client, sess *session.Session, validate *validator.Validate, log *logger.Logger) *Service {
	return &Service{api: api, session: sess, validate: validate, logger: log}
}

func (s *Service) List(ctx context.Context) ([]model.Staff, error) {
	var staff []model.Staff
	if err := s.api.Get(ctx, "/staff/", &staff, nil); err != nil {
		return nil, fmt.Errorf("failed to fetch staff: %w", err)
	}
	return staff, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*model.Staff, error) {
	var staff model.Staff
	if err := s.api.Get(ctx, fmt.Sprintf("/staff/%d", id), &staff, nil); err != nil {
		return nil, fmt.Errorf("failed to fetch staff member: %w", err)
	}
	return &staff, nil
}

func (s *Service) Create(ctx context.Context, req *model.CreateStaffRequest) (*model.Staff, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.NewValidation(fmt.Sprintf("Dati staff non validi: %v", err))
	}
	var created model.Staff
	if err := s.api.Post(ctx, "/staff/", req, &created); err != nil {
		return nil, fmt.Errorf("failed to create staff member: %w", err)
	}
	return &created, nil
}

func (s *Service) Update(ctx context.Context, id int64, req *model.UpdateStaffRequest) (*model.Staff, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.NewValidation(fmt.Sprintf("Dati staff non validi: %v", err))
	}
	var updated model.Staff
	if err := s.api.Put(ctx, fmt.Sprintf("/staff/%d", id), req, &updated); err != nil {
		return nil, fmt.Errorf("failed to update staff member: %w", err)
	}
	return &updated, nil
}

// Delete removes a staff member. Deleting the authenticated principal's own
// account is blocked before any network call.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if principal := s.session.Principal(); principal != nil && principal.ID == id {
		return errors.NewValidation("Non puoi eliminare il tuo account")
	}
	if err := s.api.Delete(ctx, fmt.Sprintf("/staff/%d", id)); err != nil {
		return fmt.Errorf("failed to delete staff member: %w", err)
	}
	return nil
}

// ChangePassword verifies confirmation before the network call.
func (s *Service) ChangePassword(ctx context.Context, id int64, newPassword, confirmPassword string) error {
	if newPassword != confirmPassword {
		return errors.NewValidation("Le password non corrispondono")
	}
	if newPassword == "" {
		return errors.NewValidation("La nuova password non può essere vuota")
	}
	req := &model.ChangePasswordRequest{NewPassword: newPassword}
	if err := s.validate.Struct(req); err != nil {
		return errors.NewValidation(fmt.Sprintf("Password non valida: %v", err))
	}
	if err := s.api.Put(ctx, fmt.Sprintf("/staff/%d/change-password", id), req, nil); err != nil {
		return fmt.Errorf("failed to change password: %w", err)
	}
	return nil
}

// UpdateProfile updates the principal's own record and merges the change into
// the stored principal so identity fields stay current.
func (s *Service) UpdateProfile(ctx context.Context, req *model.UpdateProfileRequest) (*model.Staff, error) {
	principal := s.session.Principal()
	if principal == nil {
		return nil, errors.NewAuth("not authenticated", nil)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, errors.NewValidation(fmt.Sprintf("Profilo non valido: %v", err))
	}

	var updated model.Staff
	if err := s.api.Put(ctx, fmt.Sprintf("/staff/%d", principal.ID), req, &updated); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	merged := *principal
	applyProfile(&merged, req)
	if err := s.session.UpdatePrincipal(&merged); err != nil {
		return nil, err
	}
	return &merged, nil
}

func applyProfile(staff *model.Staff, req *model.UpdateProfileRequest) {
	if req.FirstName != "" {
		staff.FirstName = req.FirstName
	}
	if req.LastName != "" {
		staff.LastName = req.LastName
	}
	if req.Email != "" {
		staff.Email = req.Email
	}
	if req.PhoneNumber != "" {
		staff.PhoneNumber = req.PhoneNumber
	}
	if req.Specialization != "" {
		staff.Specialization = req.Specialization
	}
	if req.LicenseNumber != "" {
		staff.LicenseNumber = req.LicenseNumber
	}
}

// Filter narrows a cached staff list by search text, role and status.
func Filter(list []model.Staff, f model.StaffFilters) []model.Staff {
	search := strings.ToLower(f.Search)
	out := make([]model.Staff, 0, len(list))
	for _, member := range list {
		if search != "" {
			haystack := strings.ToLower(member.Username + " " + member.Email + " " + member.FullName())
			if !strings.Contains(haystack, search) {
				continue
			}
		}
		if f.Role != "" && member.Role != f.Role {
			continue
		}
		if f.Status != "" && member.Status != f.Status {
			continue
		}
		out = append(out, member)
	}
	return out
}
