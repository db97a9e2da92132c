package model

import "fmt"

type Role string

const (
	RoleAdmin  Role = "admin"
	RoleDoctor Role = "doctor"
	RoleStaff  Role = "staff"
)

type StaffStatus string

const (
	StaffStatusActive   StaffStatus = "active"
	StaffStatusInactive StaffStatus = "inactive"
)

// Staff is a clinic staff member as returned by the backend. The same shape
// doubles as the authenticated principal stored after login.
type Staff struct {
	ID             int64  `json:"id"`
	Username       string `json:"username"`
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Email          string `json:"email"`
	PhoneNumber    string `json:"phone_number"`
	Role           Role   `json:"role"`
	Status         string `json:"status"`
	Specialization string `json:"specialization"`
	LicenseNumber  string `json:"license_number"`
}

func (s *Staff) FullName() string {
	return fmt.Sprintf("%s %s", s.FirstName, s.LastName)
}

// StaffFilters narrows the cached staff list. Filtering happens client-side
// against the cache, the backend has no staff query parameters.
type StaffFilters struct {
	Search string
	Role   Role
	Status string
}

type CreateStaffRequest struct {
	Username       string `json:"username" validate:"required"`
	Password       string `json:"password" validate:"required,min=8"`
	FirstName      string `json:"first_name" validate:"required"`
	LastName       string `json:"last_name" validate:"required"`
	Email          string `json:"email" validate:"omitempty,email"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	Role           Role   `json:"role" validate:"required,oneof=admin doctor staff"`
	Status         string `json:"status" validate:"required,oneof=active inactive"`
	Specialization string `json:"specialization,omitempty"`
	LicenseNumber  string `json:"license_number,omitempty"`
}

type UpdateStaffRequest struct {
	Username       string `json:"username,omitempty"`
	Password       string `json:"password,omitempty" validate:"omitempty,min=8"`
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	Role           Role   `json:"role,omitempty" validate:"omitempty,oneof=admin doctor staff"`
	Status         string `json:"status,omitempty" validate:"omitempty,oneof=active inactive"`
	Specialization string `json:"specialization,omitempty"`
	LicenseNumber  string `json:"license_number,omitempty"`
}

type ChangePasswordRequest struct {
	NewPassword string `json:"new_password" validate:"required,min=8"`
}

// UpdateProfileRequest carries the editable fields of the profile form.
type UpdateProfileRequest struct {
	FirstName      string `json:"first_name,omitempty"`
	LastName       string `json:"last_name,omitempty"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	Specialization string `json:"specialization,omitempty"`
	LicenseNumber  string `json:"license_number,omitempty"`
}
