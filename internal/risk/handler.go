package risk

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/vigia/vigia/internal/platform/auth"
	"github.com/vigia/vigia/internal/platform/middleware"
	"github.com/vigia/vigia/pkg/pagination"
)

// NoticeDispatcher delivers escalation decisions to the care team. It is an
// interface here so the handler does not depend on a concrete channel.
type NoticeDispatcher interface {
	DispatchDecision(ctx context.Context, assessment *CompositeRiskAssessment, decision *EscalationDecision) error
}

type Handler struct {
	svc        *Service
	dispatcher NoticeDispatcher
	log        zerolog.Logger
}

// NewHandler creates the risk HTTP handler. dispatcher may be nil, in which
// case decisions are returned to the caller but no notice is sent.
func NewHandler(svc *Service, dispatcher NoticeDispatcher, log zerolog.Logger) *Handler {
	return &Handler{svc: svc, dispatcher: dispatcher, log: log}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	role := auth.RequireRole("admin", "physician", "nurse")

	write := api.Group("", role)
	write.POST("/assess", h.Assess)
	write.POST("/emergency", h.EmergencyCheck)

	read := api.Group("", role)
	read.GET("/temporal/:userId", h.Temporal)
	read.GET("/user/:userId/summary", h.Summary)
	read.GET("/user/:userId/assessments", h.ListAssessments)
}

// Assess runs the full pipeline and, when the decision escalates beyond
// routine, hands it to the dispatcher.
func (h *Handler) Assess(c echo.Context) error {
	var input NormalizedAssessmentInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if input.UserID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	if input.Timestamp.IsZero() {
		input.Timestamp = time.Now().UTC()
	}

	result, err := h.svc.Assess(c.Request().Context(), input)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Set(middleware.AssessmentIDKey, result.Assessment.ID.String())
	c.Set(middleware.EscalationLevelKey, string(result.Decision.Level))

	if h.dispatcher != nil && result.Decision.Level != EscalationRoutine {
		if err := h.dispatcher.DispatchDecision(c.Request().Context(), &result.Assessment, &result.Decision); err != nil {
			// Delivery failure must not hide the decision from the caller.
			h.log.Error().Err(err).
				Str("user_id", input.UserID.String()).
				Str("escalation_level", string(result.Decision.Level)).
				Msg("escalation notice delivery failed")
		}
	}

	return c.JSON(http.StatusOK, result)
}

// EmergencyCheck runs scorers and the emergency detector only. Nothing is
// persisted, so clients can re-check freely while a user is completing a
// questionnaire.
func (h *Handler) EmergencyCheck(c echo.Context) error {
	var input NormalizedAssessmentInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if input.UserID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "user_id is required")
	}
	if input.Timestamp.IsZero() {
		input.Timestamp = time.Now().UTC()
	}

	alerts, decision, err := h.svc.EmergencyCheck(c.Request().Context(), input)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	c.Set(middleware.EscalationLevelKey, string(decision.Level))
	return c.JSON(http.StatusOK, map[string]interface{}{
		"alerts":   alerts,
		"decision": decision,
	})
}

func (h *Handler) Temporal(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid userId")
	}
	progression, err := h.svc.Temporal(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, progression)
}

func (h *Handler) Summary(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid userId")
	}
	summary, err := h.svc.Summary(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) ListAssessments(c echo.Context) error {
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid userId")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListAssessments(c.Request().Context(), userID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
