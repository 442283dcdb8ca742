package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/quizgrader/internal/dto"
	"github.com/lshigami/quizgrader/internal/service"
	"github.com/rs/zerolog/log"
)

type AdminQuizController struct {
	adminQuizService service.AdminQuizService
}

func NewAdminQuizController(adminQuizService service.AdminQuizService) *AdminQuizController {
	return &AdminQuizController{adminQuizService: adminQuizService}
}

// CreateQuiz godoc
// @Summary (Admin) Create a new quiz
// @Description Admin creates a quiz with its questions and answer key. multiple_choice questions need options and correct_option_id, fill_blank questions need correct_text.
// @Tags Admin - Quizzes
// @Accept json
// @Produce json
// @Param quiz_data body dto.QuizCreateDTO true "Quiz creation data including all questions"
// @Success 201 {object} dto.AdminQuizResponseDTO "Quiz created successfully"
// @Failure 400 {object} dto.ErrorResponse "Invalid input data"
// @Failure 409 {object} dto.ErrorResponse "Quiz title already exists"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /admin/quizzes [post]
func (c *AdminQuizController) CreateQuiz(ctx *gin.Context) {
	var req dto.QuizCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateQuiz: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	quizResp, err := c.adminQuizService.CreateQuiz(ctx.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuiz):
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to create quiz", Details: []string{err.Error()}})
		case errors.Is(err, service.ErrQuizTitleTaken):
			ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: "Failed to create quiz", Details: []string{err.Error()}})
		default:
			log.Error().Err(err).Str("title", req.Title).Msg("Admin CreateQuiz: Service error")
			ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create quiz"})
		}
		return
	}
	ctx.JSON(http.StatusCreated, quizResp)
}
