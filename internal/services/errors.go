package services

import (
	"errors"
	"fmt"

	apierrors "github.com/yukikurage/team-task-api/internal/errors"
	"github.com/yukikurage/team-task-api/internal/repository"
)

// Service errors carry their HTTP mapping so handlers can pass them straight
// to apierrors.Respond.
var (
	ErrInvalidCredentials = apierrors.Unauthenticated(apierrors.ErrCodeInvalidCredentials, "Invalid email or password")
	ErrForbidden          = apierrors.Denied(apierrors.ErrCodeForbidden, "You do not have permission to perform this action")
	ErrAdminRequired      = apierrors.Denied(apierrors.ErrCodeForbidden, "Only admins can assign the admin role")

	ErrUsernameRequired = apierrors.Validation(apierrors.ErrCodeMissingField, "username is required")
	ErrEmailRequired    = apierrors.Validation(apierrors.ErrCodeMissingField, "email is required")
	ErrPasswordTooShort = apierrors.Validation(apierrors.ErrCodeInvalidInput, "password is too short")
	ErrPasswordTooLong  = apierrors.Validation(apierrors.ErrCodeInvalidInput, "password is too long")
	ErrNameRequired     = apierrors.Validation(apierrors.ErrCodeMissingField, "name is required")
	ErrTitleRequired    = apierrors.Validation(apierrors.ErrCodeMissingField, "title is required")
	ErrInvalidRole      = apierrors.Validation(apierrors.ErrCodeInvalidInput, "role is not one of the allowed values")
	ErrInvalidStatus    = apierrors.Validation(apierrors.ErrCodeInvalidInput, "status is not one of the allowed values")
	ErrInvalidPriority  = apierrors.Validation(apierrors.ErrCodeInvalidInput, "priority is out of range")
	ErrInvalidColor     = apierrors.Validation(apierrors.ErrCodeInvalidFormat, "color must be a 7-character hex code")

	ErrUserNotFound     = apierrors.Missing("USER_NOT_FOUND", "User not found")
	ErrTeamNotFound     = apierrors.Missing("TEAM_NOT_FOUND", "Team not found")
	ErrMemberNotFound   = apierrors.Missing("MEMBER_NOT_FOUND", "User is not a member of this team")
	ErrCategoryNotFound = apierrors.Missing("CATEGORY_NOT_FOUND", "Category not found")
	ErrProjectNotFound  = apierrors.Missing("PROJECT_NOT_FOUND", "Project not found")
	ErrTaskNotFound     = apierrors.Missing("TASK_NOT_FOUND", "Task not found")

	ErrUsernameTaken = apierrors.Conflicting(apierrors.ErrCodeAlreadyExists, "username already exists")
	ErrEmailTaken    = apierrors.Conflicting(apierrors.ErrCodeAlreadyExists, "email already exists")
	ErrUserExists    = apierrors.Conflicting(apierrors.ErrCodeAlreadyExists, "username or email already exists")
	ErrCategoryTaken = apierrors.Conflicting(apierrors.ErrCodeAlreadyExists, "category name already exists")
	ErrAlreadyMember = apierrors.Conflicting(apierrors.ErrCodeAlreadyExists, "user is already a member of this team")
	ErrInUse         = apierrors.Conflicting(apierrors.ErrCodeInUse, "resource is still referenced")
)

// referenceNotFound maps a dangling reference on create to the NotFound kind.
var referenceNotFound = map[string]*apierrors.APIError{
	"lead_id":     ErrUserNotFound,
	"user_id":     ErrUserNotFound,
	"assignee_id": ErrUserNotFound,
	"created_by":  ErrUserNotFound,
	"updated_by":  ErrUserNotFound,
	"team_id":     ErrTeamNotFound,
	"category_id": ErrCategoryNotFound,
	"project_id":  ErrProjectNotFound,
}

// onCreate translates repository errors from a create. A dangling reference
// is reported as the missing entity.
func onCreate(err error, duplicate *apierrors.APIError) error {
	var ref *repository.ReferenceError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &ref):
		if notFound, ok := referenceNotFound[ref.Field]; ok {
			return notFound.WithMessage("%s does not reference an existing row", ref.Field)
		}
		return apierrors.ErrNotFound
	case errors.Is(err, repository.ErrDuplicate) && duplicate != nil:
		return duplicate
	case errors.Is(err, repository.ErrForeignKey):
		return apierrors.ErrNotFound.WithMessage("a referenced row does not exist")
	default:
		return err
	}
}

// onUpdate translates repository errors from an update. A dangling reference
// is a validation failure of the changed field.
func onUpdate(err error, notFound, duplicate *apierrors.APIError) error {
	var ref *repository.ReferenceError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.As(err, &ref):
		return apierrors.Validation(apierrors.ErrCodeInvalidReference,
			fmt.Sprintf("%s does not reference an existing row", ref.Field))
	case errors.Is(err, repository.ErrForeignKey):
		return apierrors.Validation(apierrors.ErrCodeInvalidReference, "a referenced row does not exist")
	case errors.Is(err, repository.ErrDuplicate) && duplicate != nil:
		return duplicate
	default:
		return err
	}
}

// onDelete translates repository errors from a delete.
func onDelete(err error, notFound *apierrors.APIError) error {
	var inUse *repository.InUseError
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return notFound
	case errors.As(err, &inUse):
		return ErrInUse.WithMessage("still referenced by %s", inUse.By)
	case errors.Is(err, repository.ErrInUse), errors.Is(err, repository.ErrForeignKey):
		return ErrInUse
	default:
		return err
	}
}

// onFind translates a lookup failure.
func onFind(err error, notFound *apierrors.APIError) error {
	if errors.Is(err, repository.ErrNotFound) {
		return notFound
	}
	return err
}
