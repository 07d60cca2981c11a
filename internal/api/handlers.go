package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/heartguard-server/internal/domain"
	"github.com/heartguard-server/internal/service"
	"github.com/heartguard-server/pkg/model"
)

const healthCheckTimeout = 5 * time.Second

// handleHealth reports component readiness. The endpoint stays 200 while
// the classifier artifact is unresolved so orchestrators do not restart a
// server that can still serve validation requests.
func (s *Server) handleHealth(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	components := gin.H{}
	status := "healthy"
	for name, check := range s.checks {
		if err := check.Health(ctx); err != nil {
			components[name] = gin.H{"status": "unhealthy", "error": err.Error()}
			status = "degraded"
		} else {
			components[name] = gin.H{"status": "healthy"}
		}
	}

	modelState := gin.H{"ready": false}
	if s.model != nil {
		modelState = gin.H{"ready": s.model.Ready(), "version": s.model.Version()}
		if !s.model.Ready() {
			status = "degraded"
		}
	}

	httpStatus := http.StatusOK
	if status != "healthy" {
		httpStatus = http.StatusServiceUnavailable
	}

	c.JSON(httpStatus, gin.H{
		"status":     status,
		"components": components,
		"model":      modelState,
		"timestamp":  time.Now().UTC(),
	})
}

// handleAssess runs the full assessment workflow for one parameter record.
func (s *Server) handleAssess(c *gin.Context) {
	var req service.AssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, domain.NewValidationError("body", err.Error(), nil))
		return
	}

	result, err := s.assessments.Assess(c.Request.Context(), &req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleValidate runs the validation engine without touching the classifier.
func (s *Server) handleValidate(c *gin.Context) {
	var req service.AssessmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, domain.NewValidationError("body", err.Error(), nil))
		return
	}

	result, err := s.assessments.Validate(&req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleGetAssessment returns one stored assessment by ID.
func (s *Server) handleGetAssessment(c *gin.Context) {
	id := c.Param("id")

	result, err := s.assessments.GetAssessment(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"error": domain.NewAssessmentError(domain.ErrNotFound,
				"Assessment not found", id, c.GetString("correlation_id")),
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleListAssessments returns stored assessments, newest first.
func (s *Server) handleListAssessments(c *gin.Context) {
	limit := queryInt(c, "limit", 20)
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := queryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	results, total, err := s.assessments.ListAssessments(c.Request.Context(), limit, offset)
	if err != nil {
		s.respondError(c, err)
		return
	}
	if results == nil {
		results = []*domain.AssessmentResult{}
	}

	c.JSON(http.StatusOK, gin.H{
		"assessments": results,
		"total":       total,
		"limit":       limit,
		"offset":      offset,
	})
}

// handleGuidelines returns the static clinical input guidelines.
func (s *Server) handleGuidelines(c *gin.Context) {
	c.JSON(http.StatusOK, service.Guidelines())
}

func queryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// respondError maps workflow errors onto HTTP statuses and the standard
// error envelope.
func (s *Server) respondError(c *gin.Context, err error) {
	requestID := c.GetString("correlation_id")

	var incompleteErr *domain.IncompleteInputError
	if errors.As(err, &incompleteErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error": domain.NewAssessmentError(domain.ErrIncompleteInput,
				"Please provide all required fields before assessment", "", requestID),
			"missing_fields": incompleteErr.MissingFields,
		})
		return
	}

	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": domain.NewAssessmentError(domain.ErrInvalidInput,
				validationErr.Message, validationErr.Field, requestID),
		})
		return
	}

	if errors.Is(err, model.ErrUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": domain.NewAssessmentError(domain.ErrModelUnavailable,
				"Classifier model is not available, please retry later", "", requestID),
		})
		return
	}

	if errors.Is(err, model.ErrPrediction) {
		s.logger.WithError(err).Error("Prediction failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": domain.NewAssessmentError(domain.ErrPrediction,
				"Prediction failed", "", requestID),
		})
		return
	}

	s.logger.WithError(err).Error("Request failed")
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": domain.NewAssessmentError(domain.ErrInternalServer,
			"Internal server error", "", requestID),
	})
}
