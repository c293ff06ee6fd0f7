package api

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/rpupo63/inkwell-blog-backend/errs"
	"github.com/rpupo63/inkwell-blog-backend/models"
)

// Fixed page sizes per view, mirrored from the reader-facing site.
const (
	listPageSize      = 6
	discoveryPageSize = 9
	dashboardPageSize = 8
	relatedPostLimit  = 3
)

// validate is the shared validator instance for request payloads.
var validate = validator.New()

// routeHandlers contains all the handlers for different route types
type routeHandlers struct {
	authHandler       authHandler
	postHandler       postHandler
	commentHandler    commentHandler
	likeHandler       likeHandler
	profileHandler    profileHandler
	newsletterHandler newsletterHandler
	discoveryHandler  discoveryHandler
	systemHandler     systemHandler
}

// ErrorResponse represents an error response from the API
// @Description Error response structure
type ErrorResponse struct {
	Error   string `json:"error" example:"Internal Server Error"`
	Status  string `json:"status" example:"error"`
	Field   string `json:"field,omitempty" example:"title"`
	Details string `json:"details,omitempty" example:"Additional error details"`
	Cause   string `json:"cause,omitempty" example:"Underlying error cause"`
}

// Request payloads. Length and format rules live in the validate tags so
// every rejection happens before a write is attempted.

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createPostRequest struct {
	Title      string   `json:"title" validate:"required,min=5,max=200"`
	Content    string   `json:"content" validate:"required,min=50"`
	Excerpt    string   `json:"excerpt" validate:"omitempty,max=300"`
	Status     string   `json:"status" validate:"omitempty,oneof=draft published"`
	Tags       []string `json:"tags" validate:"omitempty,dive,min=1,max=100"`
	IsFeatured bool     `json:"isFeatured"`
}

type updatePostRequest struct {
	Title      string   `json:"title" validate:"required,min=5,max=200"`
	Content    string   `json:"content" validate:"required,min=50"`
	Excerpt    string   `json:"excerpt" validate:"omitempty,max=300"`
	Status     string   `json:"status" validate:"omitempty,oneof=draft published"`
	Tags       []string `json:"tags" validate:"omitempty,dive,min=1,max=100"`
	IsFeatured bool     `json:"isFeatured"`
}

type addCommentRequest struct {
	Content  string     `json:"content" validate:"required,min=10"`
	ParentID *uuid.UUID `json:"parentId,omitempty"`
}

type updateProfileRequest struct {
	Bio         string     `json:"bio" validate:"omitempty,max=500"`
	Website     string     `json:"website" validate:"omitempty,url"`
	Location    string     `json:"location" validate:"omitempty,max=100"`
	DateOfBirth *time.Time `json:"dateOfBirth,omitempty"`
}

type subscribeRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// Response shapes shared by more than one handler.

// Page wraps one page of results with the pre-pagination total.
type Page[T any] struct {
	Items    []T   `json:"items"`
	Total    int64 `json:"total"`
	Page     int   `json:"page"`
	PageSize int   `json:"pageSize"`
}

// LikeState is returned by the like toggle for immediate display.
type LikeState struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"likeCount"`
}

// CommentThread is one top-level comment with its approved replies.
type CommentThread struct {
	Comment models.Comment   `json:"comment"`
	Replies []models.Comment `json:"replies"`
}

// validationError maps a validator failure onto the errs taxonomy, keeping
// the first failing field so clients know what to correct.
func validationError(err error) *errs.ApiErr {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return errs.NewValidationError(field, fmt.Sprintf("%s is required", field))
		case "min":
			return errs.NewValidationError(field, fmt.Sprintf("%s must be at least %s characters", field, fe.Param()))
		case "max":
			return errs.NewValidationError(field, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		case "email":
			return errs.NewValidationError(field, "must be a valid email address")
		case "url":
			return errs.NewValidationError(field, "must be a valid URL")
		case "oneof":
			return errs.NewValidationError(field, fmt.Sprintf("%s must be one of: %s", field, fe.Param()))
		default:
			return errs.NewValidationError(field, fmt.Sprintf("%s is invalid", field))
		}
	}
	return errs.NewValidationError("", err.Error())
}
