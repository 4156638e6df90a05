package schedule

import (
	"errors"
	"net/http"
	"strconv"

	"studiobook/internal/domain"
	"studiobook/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings/start-times", h.GetStartTimes)
	rg.GET("/bookings/end-times", h.GetEndTimes)
}

func (h *Handler) RegisterOwnerRoutes(rg *gin.RouterGroup) {
	rg.PUT("/addresses/:id/hours", h.SetHours)
}

func (h *Handler) GetStartTimes(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Query("room_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "room_id is required")
		return
	}

	slots, err := h.service.StartTimes(c.Request.Context(), roomID, c.Query("date"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, AvailableTimesResponse{AvailableTimes: slots})
}

func (h *Handler) GetEndTimes(c *gin.Context) {
	roomID, err := strconv.ParseInt(c.Query("room_id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "room_id is required")
		return
	}

	slots, err := h.service.EndTimes(c.Request.Context(), roomID, c.Query("date"), c.Query("start_time"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, AvailableTimesResponse{AvailableTimes: slots})
}

func (h *Handler) SetHours(c *gin.Context) {
	addressID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid address id")
		return
	}

	var req SetHoursRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body")
		return
	}

	entries := make([]domain.OperatingEntry, 0, len(req.Entries))
	for _, e := range req.Entries {
		entries = append(entries, domain.OperatingEntry{
			Mode:      domain.OperatingMode(e.Mode),
			DayOfWeek: e.DayOfWeek,
			OpenTime:  e.OpenTime,
			CloseTime: e.CloseTime,
			IsClosed:  e.IsClosed,
		})
	}

	if err := h.service.ReplaceHours(c.Request.Context(), addressID, c.GetInt64("user_id"), entries); err != nil {
		h.writeError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"address_id": addressID, "entries": len(entries)})
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrInvalidTime):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrOutsideOperatingHours):
		response.Error(c, http.StatusBadRequest, "OUTSIDE_OPERATING_HOURS", "Start time is outside operating hours")
	case errors.Is(err, ErrInvalidHoursConfig):
		response.Error(c, http.StatusBadRequest, "INVALID_HOURS", "Invalid operating hours configuration")
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Room or address not found")
	case errors.Is(err, ErrForbidden):
		response.Error(c, http.StatusForbidden, "FORBIDDEN", "Not the studio owner")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to compute availability")
	}
}
