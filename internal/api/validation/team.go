package validation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// RosterRef mirrors one {id, name} candidate in a create team request.
type RosterRef struct {
	ID   string
	Name string
}

// CreateTeamRequest mirrors the fields needed for create team validation.
type CreateTeamRequest struct {
	TeamName string
	Managers []RosterRef
	Members  []RosterRef
}

// ValidateCreateTeamRequest validates the fields of a create team request.
// Returns a slice of field errors; empty slice means valid.
func ValidateCreateTeamRequest(req CreateTeamRequest) []FieldError {
	var errs []FieldError

	if strings.TrimSpace(req.TeamName) == "" {
		errs = append(errs, FieldError{Field: "teamName", Message: "teamName is required"})
	}

	errs = append(errs, validateRefs("managers", "managerId", "managerName", req.Managers)...)
	errs = append(errs, validateRefs("members", "memberId", "memberName", req.Members)...)

	return errs
}

func validateRefs(list, idField, nameField string, refs []RosterRef) []FieldError {
	var errs []FieldError
	for i, ref := range refs {
		if _, err := uuid.Parse(ref.ID); err != nil {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("%s[%d].%s", list, i, idField),
				Message: idField + " must be a valid UUID",
			})
		}
		if ref.Name == "" {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("%s[%d].%s", list, i, nameField),
				Message: nameField + " is required",
			})
		}
	}
	return errs
}

// ValidateRosterRequest validates a single add-member or add-manager body.
// idField and nameField name the JSON keys for error reporting.
func ValidateRosterRequest(idField, nameField, id, name string) []FieldError {
	var errs []FieldError

	if id == "" {
		errs = append(errs, FieldError{Field: idField, Message: idField + " is required"})
	} else if _, err := uuid.Parse(id); err != nil {
		errs = append(errs, FieldError{Field: idField, Message: idField + " must be a valid UUID"})
	}

	if name == "" {
		errs = append(errs, FieldError{Field: nameField, Message: nameField + " is required"})
	}

	return errs
}
