package member

import (
	"net/http"

	sharedError "github.com/darregistry/member-registry/go-api-server/internal/shared/error"
)

const (
	memberNotFound = "MEMBER_NOT_FOUND" // errInfo
	memberInvalid  = "MEMBER_INVALID"   // errInfo

	patriotNotFound            = "PATRIOT_NOT_FOUND"
	patriotInvalid             = "PATRIOT_INVALID"
	patriotAlreadyExists       = "PATRIOT_ALREADY_EXISTS"
	patriotNotLinked           = "PATRIOT_NOT_LINKED"
	patriotNotAssignedToMember = "PATRIOT_NOT_ASSIGNED_TO_MEMBER"
	patriotStillAssigned       = "PATRIOT_STILL_ASSIGNED"
	patriotBulkDelete          = "PATRIOT_BULK_DELETE_UNSUPPORTED"

	chapterNotFound               = "CHAPTER_NOT_FOUND"
	chapterInvalid                = "CHAPTER_INVALID"
	chapterMemberAlreadyAssigned  = "CHAPTER_MEMBER_ALREADY_ASSIGNED"
	chapterAssignedToOtherMembers = "CHAPTER_ASSIGNED_TO_OTHER_MEMBERS"
	chapterNotLinked              = "CHAPTER_NOT_LINKED"
	chapterNotAssignedToMember    = "CHAPTER_NOT_ASSIGNED_TO_MEMBER"
	chapterAlreadyExists          = "CHAPTER_ALREADY_EXISTS"
	chapterBulkDelete             = "CHAPTER_BULK_DELETE_UNSUPPORTED"
)

var (
	ErrMemberNotFound = sharedError.NewNotFoundError(memberNotFound)
	ErrInvalidMember  = sharedError.NewValidationError(memberInvalid)

	ErrPatriotNotFound = sharedError.NewNotFoundError(patriotNotFound)
	ErrInvalidPatriot  = sharedError.NewValidationError(patriotInvalid)
	// ErrPatriotAlreadyExists is returned by the reject-on-match paths
	ErrPatriotAlreadyExists = sharedError.NewConflictError(patriotAlreadyExists)
	// ErrPatriotNotLinked means the patriot exists but belongs to other members
	ErrPatriotNotLinked = sharedError.NewForbiddenError(patriotNotLinked)
	// ErrPatriotNotAssignedToMember is the read-side counterpart of ErrPatriotNotLinked
	ErrPatriotNotAssignedToMember = sharedError.NewNotFoundError(patriotNotAssignedToMember)
	ErrPatriotStillAssigned       = sharedError.NewConflictError(patriotStillAssigned)
	ErrPatriotBulkDelete          = sharedError.NewUnsupportedError(patriotBulkDelete)

	ErrChapterNotFound              = sharedError.NewNotFoundError(chapterNotFound)
	ErrInvalidChapter               = sharedError.NewValidationError(chapterInvalid)
	ErrMemberAlreadyHasChapter      = sharedError.NewConflictError(chapterMemberAlreadyAssigned)
	ErrChapterAssignedToOtherMember = sharedError.NewConflictError(chapterAssignedToOtherMembers)
	ErrChapterNotLinked             = sharedError.NewForbiddenError(chapterNotLinked)
	ErrChapterNotAssignedToMember   = sharedError.NewNotFoundError(chapterNotAssignedToMember)
	ErrChapterAlreadyExists         = sharedError.NewConflictError(chapterAlreadyExists)
	ErrChapterBulkDelete            = sharedError.NewUnsupportedError(chapterBulkDelete)
)

func init() {
	sharedError.RegisterDomainErrorResponse(memberNotFound, sharedError.ErrorResponse{
		Status:  http.StatusNotFound,
		Code:    "MEMBER-001",
		Message: "Member not found.",
	})

	sharedError.RegisterDomainErrorResponse(memberInvalid, sharedError.ErrorResponse{
		Status:  http.StatusBadRequest,
		Code:    "MEMBER-002",
		Message: "First name, last name and phone are required.",
	})

	sharedError.RegisterDomainErrorResponse(patriotNotFound, sharedError.ErrorResponse{
		Status:  http.StatusNotFound,
		Code:    "PATRIOT-001",
		Message: "Patriot not found.",
	})

	sharedError.RegisterDomainErrorResponse(patriotInvalid, sharedError.ErrorResponse{
		Status:  http.StatusBadRequest,
		Code:    "PATRIOT-002",
		Message: "Patriot first name and last name are required.",
	})

	sharedError.RegisterDomainErrorResponse(patriotAlreadyExists, sharedError.ErrorResponse{
		Status:  http.StatusConflict,
		Code:    "PATRIOT-003",
		Message: "A patriot with the same name, state and rank/service already exists.",
	})

	sharedError.RegisterDomainErrorResponse(patriotNotLinked, sharedError.ErrorResponse{
		Status:  http.StatusForbidden,
		Code:    "PATRIOT-004",
		Message: "Patriot is not associated with this member.",
	})

	sharedError.RegisterDomainErrorResponse(patriotNotAssignedToMember, sharedError.ErrorResponse{
		Status:  http.StatusNotFound,
		Code:    "PATRIOT-005",
		Message: "Patriot not found for this member.",
	})

	sharedError.RegisterDomainErrorResponse(patriotStillAssigned, sharedError.ErrorResponse{
		Status:  http.StatusConflict,
		Code:    "PATRIOT-006",
		Message: "Patriot is still assigned to one or more members.",
	})

	sharedError.RegisterDomainErrorResponse(patriotBulkDelete, sharedError.ErrorResponse{
		Status:  http.StatusMethodNotAllowed,
		Code:    "PATRIOT-007",
		Message: "Deleting all patriots is not supported.",
	})

	sharedError.RegisterDomainErrorResponse(chapterNotFound, sharedError.ErrorResponse{
		Status:  http.StatusNotFound,
		Code:    "CHAPTER-001",
		Message: "Chapter not found.",
	})

	sharedError.RegisterDomainErrorResponse(chapterInvalid, sharedError.ErrorResponse{
		Status:  http.StatusBadRequest,
		Code:    "CHAPTER-002",
		Message: "Chapter name and number are required.",
	})

	sharedError.RegisterDomainErrorResponse(chapterMemberAlreadyAssigned, sharedError.ErrorResponse{
		Status:  http.StatusConflict,
		Code:    "CHAPTER-003",
		Message: "Member is already assigned to a chapter.",
	})

	sharedError.RegisterDomainErrorResponse(chapterAssignedToOtherMembers, sharedError.ErrorResponse{
		Status:  http.StatusConflict,
		Code:    "CHAPTER-004",
		Message: "Chapter is assigned to other members.",
	})

	sharedError.RegisterDomainErrorResponse(chapterNotLinked, sharedError.ErrorResponse{
		Status:  http.StatusForbidden,
		Code:    "CHAPTER-005",
		Message: "Chapter is not associated with this member.",
	})

	sharedError.RegisterDomainErrorResponse(chapterNotAssignedToMember, sharedError.ErrorResponse{
		Status:  http.StatusNotFound,
		Code:    "CHAPTER-006",
		Message: "Chapter not found for this member.",
	})

	sharedError.RegisterDomainErrorResponse(chapterAlreadyExists, sharedError.ErrorResponse{
		Status:  http.StatusConflict,
		Code:    "CHAPTER-007",
		Message: "A chapter with the same name and number already exists.",
	})

	sharedError.RegisterDomainErrorResponse(chapterBulkDelete, sharedError.ErrorResponse{
		Status:  http.StatusMethodNotAllowed,
		Code:    "CHAPTER-008",
		Message: "Deleting all chapters is not supported.",
	})
}
