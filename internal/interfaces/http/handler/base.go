package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/invoicer/backend/internal/domain/invoice"
	"github.com/invoicer/backend/internal/domain/shared"
	"github.com/invoicer/backend/internal/infrastructure/logger"
	"github.com/invoicer/backend/internal/interfaces/http/dto"
	"github.com/invoicer/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getRequestID extracts the request ID from the context
func getRequestID(c *gin.Context) string {
	if id := c.GetString(logger.GinRequestIDKey); id != "" {
		return id
	}
	return c.GetHeader(middleware.RequestIDHeader)
}

// getOwnerID extracts the owner set by the owner middleware
func getOwnerID(c *gin.Context) (string, error) {
	ownerID := middleware.GetOwnerID(c)
	if ownerID == "" {
		return "", shared.ErrUnauthorized
	}
	return ownerID, nil
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// Error sends an error response with the appropriate status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, getRequestID(c)))
}

// ErrorWithCode sends an error response, deriving status code from error code
func (h *BaseHandler) ErrorWithCode(c *gin.Context, code, message string) {
	h.Error(c, dto.GetHTTPStatus(code), code, message)
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// BindError answers a request whose body or parameters failed to bind.
// Validator failures are listed per field.
func (h *BaseHandler) BindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body is not valid JSON")
		return
	}

	details := make([]dto.ValidationDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, dto.ValidationDetail{
			Field:   fe.Field(),
			Message: "failed on the '" + fe.Tag() + "' rule",
		})
	}
	resp := dto.NewErrorResponseWithRequestID(dto.ErrCodeValidation, "Request validation failed", getRequestID(c))
	c.JSON(http.StatusBadRequest, resp.WithDetails(details...))
}

// HandleError converts domain errors to HTTP responses.
// Client errors carry the full error text; server errors only the domain
// message, so store and browser failures are not leaked.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)

	var domainErr *shared.DomainError
	if !errors.As(err, &domainErr) {
		h.InternalError(c, "An unexpected error occurred")
		return
	}

	code := dto.NormalizeErrorCode(domainErr.Code)
	statusCode := dto.GetHTTPStatus(code)
	message := domainErr.Message
	if statusCode < http.StatusInternalServerError {
		message = err.Error()
	}

	resp := dto.NewErrorResponseWithRequestID(code, message, getRequestID(c))
	if errors.Is(err, invoice.ErrUnknownField) {
		resp = resp.WithDetails(unknownFieldDetails(err)...)
	}
	c.JSON(statusCode, resp)
}

// unknownFieldDetails lists every unknown field of a joined SetFields error,
// followed by the paths that are accepted.
func unknownFieldDetails(err error) []dto.ValidationDetail {
	var details []dto.ValidationDetail
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			if errors.Is(e, invoice.ErrUnknownField) {
				details = append(details, dto.ValidationDetail{Field: "fields", Message: e.Error()})
			}
		}
	} else {
		details = append(details, dto.ValidationDetail{Field: "fields", Message: err.Error()})
	}
	return append(details, dto.ValidationDetail{
		Field:   "fields",
		Message: "valid paths: " + strings.Join(invoice.FieldPaths(), ", "),
	})
}
