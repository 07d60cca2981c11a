package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/heartguard-server/internal/domain"
	"github.com/heartguard-server/internal/service"
)

const (
	socketWriteTimeout = 10 * time.Second
	socketReadLimit    = 8 << 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// The browser form posts from arbitrary origins in development.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// validationFrame is one message on the live validation socket.
type validationFrame struct {
	Type          string                   `json:"type"`
	Result        *domain.ValidationResult `json:"result,omitempty"`
	MissingFields []string                 `json:"missing_fields,omitempty"`
	Error         string                   `json:"error,omitempty"`
}

// handleValidateSocket streams validation results as the client edits the
// parameter record. Each inbound frame is a (possibly partial) record; each
// outbound frame carries the advisories for it. The classifier is never
// consulted here.
func (s *Server) handleValidateSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	conn.SetReadLimit(socketReadLimit)

	for {
		var req service.AssessmentRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.WithError(err).Debug("Validation socket closed unexpectedly")
			}
			return
		}

		frame := validateFrame(s.assessments, &req)

		conn.SetWriteDeadline(time.Now().Add(socketWriteTimeout))
		if err := conn.WriteJSON(frame); err != nil {
			s.logger.WithError(err).Debug("Validation socket write failed")
			return
		}
	}
}

func validateFrame(assessments *service.AssessmentService, req *service.AssessmentRequest) validationFrame {
	result, err := assessments.Validate(req)
	if err == nil {
		return validationFrame{Type: "validation", Result: result}
	}

	var incompleteErr *domain.IncompleteInputError
	if errors.As(err, &incompleteErr) {
		return validationFrame{Type: "incomplete", MissingFields: incompleteErr.MissingFields}
	}

	return validationFrame{Type: "error", Error: err.Error()}
}
