package http

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sainath9392/tinylink/internal/models"
)

type createLinkRequest struct {
	URL       string `json:"url" validate:"required"`
	ShortCode string `json:"shortCode" validate:"omitempty,alphanum,min=6,max=8"`
}

type linkResponse struct {
	ID            int64      `json:"id"`
	ShortCode     string     `json:"shortCode"`
	OriginalURL   string     `json:"originalUrl"`
	OwnerID       string     `json:"ownerId"`
	Clicks        int64      `json:"clicks"`
	LastClickedAt *time.Time `json:"lastClickedAt"`
	CreatedAt     time.Time  `json:"createdAt"`
}

func toLinkResponse(link *models.Link) linkResponse {
	return linkResponse{
		ID:            link.ID,
		ShortCode:     link.ShortCode,
		OriginalURL:   link.OriginalURL,
		OwnerID:       link.OwnerID,
		Clicks:        link.Clicks,
		LastClickedAt: link.LastClickedAt,
		CreatedAt:     link.CreatedAt,
	}
}

func toLinkResponses(links []*models.Link) []linkResponse {
	resp := make([]linkResponse, 0, len(links))
	for _, link := range links {
		resp = append(resp, toLinkResponse(link))
	}
	return resp
}

type messageResponse struct {
	Message string `json:"message"`
}

var deletedResponse = messageResponse{Message: "Deleted"}

type validationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error   string            `json:"error"`
	Details []validationError `json:"details,omitempty"`
}

var (
	emptyRequestBodyResponse = errorResponse{
		Error: "empty request body",
	}

	invalidRequestBodyResponse = errorResponse{
		Error: "invalid request body",
	}

	urlRequiredResponse = errorResponse{
		Error: "URL is required",
	}

	invalidShortCodeResponse = errorResponse{
		Error: "Invalid code. Must be 6-8 alphanumeric characters.",
	}

	shortCodeTakenResponse = errorResponse{
		Error: "Code already in use",
	}

	linkNotFoundResponse = errorResponse{
		Error: "Link not found",
	}

	serverErrorResponse = errorResponse{
		Error: "Internal Server Error",
	}
)

func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "this field is required"
	case "alphanum":
		return "must contain only letters and digits"
	case "min", "max":
		return "must be 6-8 characters long"
	default:
		return "invalid value"
	}
}

func getValidationErrors(err error) []validationError {
	var validationErrs []validationError

	errs, ok := err.(validator.ValidationErrors)
	if ok {
		for _, e := range errs {
			validationErrs = append(validationErrs, validationError{
				Field:   e.Field(),
				Message: messageForTag(e.Tag()),
			})
		}
	}

	return validationErrs
}

// validationErrorResponse keeps the top-level error of the matching domain
// error so clients see the same message whichever layer rejected the input.
func validationErrorResponse(err error) errorResponse {
	details := getValidationErrors(err)

	resp := errorResponse{
		Error:   "validation error",
		Details: details,
	}

	for _, d := range details {
		switch d.Field {
		case "url":
			resp.Error = urlRequiredResponse.Error
		case "shortCode":
			resp.Error = invalidShortCodeResponse.Error
		}
	}

	return resp
}
