package handlers

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "collegebank/internal/errors"
	"collegebank/internal/middleware"
	"collegebank/internal/pagination"
	"collegebank/internal/services"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error" example:"Bank account not found"`
	Code  string `json:"code" example:"ACCOUNT_NOT_FOUND"`
}

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		return "", apperrors.ErrUnauthorized
	}
	return userID, nil
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.RespondWithError(c, err)
}

func invalidInput(err error) *apperrors.AppError {
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

// bindListParams reads search, ordering and pagination query parameters.
func bindListParams(c *gin.Context) (services.ListParams, error) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		return services.ListParams{}, invalidInput(err)
	}
	return services.ListParams{
		Search:   strings.TrimSpace(c.Query("search")),
		Ordering: strings.TrimSpace(c.Query("ordering")),
		Page:     page,
	}, nil
}

// parseOptionalDate parses a YYYY-MM-DD or RFC3339 value. A nil or blank
// value yields the zero time, which services treat as today.
func parseOptionalDate(raw *string, field string) (time.Time, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return time.Time{}, nil
	}
	t, err := services.ParseDate(strings.TrimSpace(*raw))
	if err != nil {
		return time.Time{}, apperrors.WithMessage(apperrors.ErrInvalidInput,
			"invalid "+field+" format, expected YYYY-MM-DD")
	}
	return t, nil
}

// parseOptionalDatePtr is parseOptionalDate for partial updates: nil stays nil.
func parseOptionalDatePtr(raw *string, field string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	t, err := parseOptionalDate(raw, field)
	if err != nil {
		return nil, err
	}
	if t.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, field+" must not be blank")
	}
	return &t, nil
}
