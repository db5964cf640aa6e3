package domain

import (
	"strings"
	"time"
)

type Status string

const (
	StatusNewSubmission   Status = "new_submission"
	StatusUnderReview     Status = "under_review"
	StatusManagerReview   Status = "manager_review"
	StatusPendingApproval Status = "pending_approval"
	StatusExecutiveReview Status = "executive_review"
	StatusFounderReview   Status = "founder_review"
	// StatusPending is the editable state an application returns to when a
	// reviewer asks the applicant for changes.
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

var allStatuses = []Status{
	StatusNewSubmission,
	StatusUnderReview,
	StatusManagerReview,
	StatusPendingApproval,
	StatusExecutiveReview,
	StatusFounderReview,
	StatusPending,
	StatusApproved,
	StatusRejected,
}

func AllStatuses() []Status {
	return append([]Status(nil), allStatuses...)
}

func (s Status) Valid() bool {
	for _, known := range allStatuses {
		if s == known {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidInput
	}
	return s, nil
}

type Role string

const (
	RoleApplicant        Role = "applicant"
	RoleProjectOfficer   Role = "project_officer"
	RoleProgramManager   Role = "program_manager"
	RoleFinanceDirector  Role = "finance_director"
	RoleHospitalDirector Role = "hospital_director"
	RoleExecutive        Role = "executive"
	RoleFounder          Role = "founder"
)

var allRoles = []Role{
	RoleApplicant,
	RoleProjectOfficer,
	RoleProgramManager,
	RoleFinanceDirector,
	RoleHospitalDirector,
	RoleExecutive,
	RoleFounder,
}

func (r Role) Valid() bool {
	for _, known := range allRoles {
		if r == known {
			return true
		}
	}
	return false
}

func ParseRole(raw string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(raw)))
	if !r.Valid() {
		return "", ErrInvalidInput
	}
	return r, nil
}

type Action string

const (
	ActionApprove     Action = "approve"
	ActionReject      Action = "reject"
	ActionRequestEdit Action = "request_edit"
	ActionResubmit    Action = "resubmit"
)

func (a Action) Valid() bool {
	switch a {
	case ActionApprove, ActionReject, ActionRequestEdit, ActionResubmit:
		return true
	default:
		return false
	}
}

func ParseAction(raw string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(raw)))
	if !a.Valid() {
		return "", ErrInvalidInput
	}
	return a, nil
}

type HistoryEntry struct {
	ActorEmail string    `json:"actor_email"`
	ActorName  string    `json:"actor_name"`
	Action     Action    `json:"action"`
	Comment    string    `json:"comment,omitempty"`
	FromStatus Status    `json:"from_status"`
	ToStatus   Status    `json:"to_status"`
	CreatedAt  time.Time `json:"created_at"`
}

type Application struct {
	ID              string         `json:"id"`
	ApplicantName   string         `json:"applicant_name"`
	Email           string         `json:"email"`
	Phone           string         `json:"phone,omitempty"`
	ProjectTitle    string         `json:"project_title"`
	Description     string         `json:"description"`
	AmountRequested float64        `json:"amount_requested"`
	Beneficiaries   *int           `json:"beneficiaries,omitempty"`
	Status          Status         `json:"status"`
	CurrentReviewer Role           `json:"current_reviewer"`
	History         []HistoryEntry `json:"history"`
	Version         int            `json:"version"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Clone returns a copy that shares no slices or pointers with a.
func (a Application) Clone() Application {
	out := a
	if a.History != nil {
		out.History = append([]HistoryEntry(nil), a.History...)
	}
	if a.Beneficiaries != nil {
		n := *a.Beneficiaries
		out.Beneficiaries = &n
	}
	return out
}

type Submission struct {
	ApplicantName   string  `json:"applicant_name"`
	Email           string  `json:"email"`
	Phone           string  `json:"phone"`
	ProjectTitle    string  `json:"project_title"`
	Description     string  `json:"description"`
	AmountRequested float64 `json:"amount_requested"`
	Beneficiaries   *int    `json:"beneficiaries,omitempty"`
}

type Actor struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role,omitempty"`
}
