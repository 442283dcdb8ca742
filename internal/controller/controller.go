package controller

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/quizgrader/internal/database"
	"github.com/lshigami/quizgrader/internal/dto"
	"github.com/lshigami/quizgrader/internal/service"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// SubmissionFailedMessage is the only failure text shown for submissions.
const SubmissionFailedMessage = "submission failed, try again"

// ParseIDParam reads a positive numeric path parameter. It writes a 400 and
// returns false when the value is malformed.
func ParseIDParam(ctx *gin.Context, name, label string) (uint, bool) {
	val, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || val == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: fmt.Sprintf("Invalid %s format", label)})
		return 0, false
	}
	return uint(val), true
}

// ParseOptionalIDQuery is ParseIDParam for an optional query parameter.
func ParseOptionalIDQuery(ctx *gin.Context, name, label string) (*uint, bool) {
	raw := ctx.Query(name)
	if raw == "" {
		return nil, true
	}
	val, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || val == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: fmt.Sprintf("Invalid %s format in query", label)})
		return nil, false
	}
	id := uint(val)
	return &id, true
}

// SubmissionStatus maps a submission failure kind to its HTTP status.
func SubmissionStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidSubmission):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrReferenceUnavailable):
		return http.StatusNotFound
	case errors.Is(err, service.ErrResourceTimeout):
		return http.StatusServiceUnavailable
	case errors.Is(err, service.ErrGradingFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type HealthController struct {
	db        *gorm.DB
	txManager *database.TxManager
}

func NewHealthController(db *gorm.DB, txManager *database.TxManager) *HealthController {
	return &HealthController{db: db, txManager: txManager}
}

// Health godoc
// @Summary Service health
// @Description Pings the database and reports write slot usage.
// @Tags Ops
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /healthz [get]
func (c *HealthController) Health(ctx *gin.Context) {
	resp := dto.HealthResponse{
		Status:         "ok",
		WriteSlotsUsed: c.txManager.InUse(),
		WriteSlots:     c.txManager.Capacity(),
	}

	pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()
	sqlDB, err := c.db.DB()
	if err == nil {
		err = sqlDB.PingContext(pingCtx)
	}
	if err != nil {
		log.Warn().Err(err).Msg("Health: database ping failed")
		resp.Status = "degraded"
		ctx.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
