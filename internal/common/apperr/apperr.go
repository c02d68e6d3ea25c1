package apperr

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
)

// Error type constants returned in the "type" field of error responses.
const (
	TypeFieldNotFound         = "FIELD_NOT_FOUND"
	TypeInvalidFieldReference = "INVALID_FIELD_REFERENCE"
	TypeUnsupportedOperator   = "UNSUPPORTED_OPERATOR"
	TypeUnsupportedConfig     = "UNSUPPORTED_CONFIGURATION"
	TypeSectionNotFound       = "SECTION_NOT_FOUND"
	TypeReportNotFound        = "REPORT_NOT_FOUND"
	TypeFolderNotFound        = "FOLDER_NOT_FOUND"
	TypeConnectionNotFound    = "CONNECTION_NOT_FOUND"
	TypeRoleNotFound          = "ROLE_NOT_FOUND"
	TypeUserNotFound          = "USER_NOT_FOUND"
	TypeOrganizationNotFound  = "ORGANIZATION_NOT_FOUND"
	TypeDraftConflict         = "DRAFT_CONFLICT"
	TypeValidation            = "VALIDATION_ERROR"
)

// Error carries a machine-readable type alongside the message so
// controllers can map service failures onto status codes without
// string matching.
type Error struct {
	Type    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func New(errType, message string) *Error {
	return &Error{Type: errType, Message: message}
}

func Newf(errType, format string, args ...interface{}) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...)}
}

// TypeOf returns the error type, or empty string for plain errors.
func TypeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Type
	}
	return ""
}

func IsType(err error, errType string) bool {
	return TypeOf(err) == errType
}

// StatusOf maps a service error onto an HTTP status code.
func StatusOf(err error) int {
	switch TypeOf(err) {
	case TypeFieldNotFound, TypeInvalidFieldReference, TypeUnsupportedOperator,
		TypeUnsupportedConfig, TypeValidation:
		return fiber.StatusBadRequest
	case TypeSectionNotFound, TypeReportNotFound, TypeFolderNotFound, TypeConnectionNotFound,
		TypeRoleNotFound, TypeUserNotFound, TypeOrganizationNotFound:
		return fiber.StatusNotFound
	case TypeDraftConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorResponse is the JSON body controllers send for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
}

// JSON writes the standard error envelope for err.
func JSON(c *fiber.Ctx, err error) error {
	return c.Status(StatusOf(err)).JSON(ErrorResponse{
		Error: err.Error(),
		Type:  TypeOf(err),
	})
}
