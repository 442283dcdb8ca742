package user

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/quizgrader/internal/controller"
	"github.com/lshigami/quizgrader/internal/dto"
	"github.com/lshigami/quizgrader/internal/model"
	"github.com/lshigami/quizgrader/internal/service"
	"github.com/rs/zerolog/log"
)

type UserQuizController struct {
	userQuizService   service.UserQuizService
	submissionService service.AttemptSubmissionService
	attemptQuery      service.AttemptQueryService
}

func NewUserQuizController(uqs service.UserQuizService, ass service.AttemptSubmissionService, aqs service.AttemptQueryService) *UserQuizController {
	return &UserQuizController{
		userQuizService:   uqs,
		submissionService: ass,
		attemptQuery:      aqs,
	}
}

// GetAllQuizzes godoc
// @Summary (User) List all available quizzes
// @Tags User - Quizzes & Attempts
// @Produce json
// @Success 200 {array} dto.QuizSummaryDTO
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /quizzes [get]
func (c *UserQuizController) GetAllQuizzes(ctx *gin.Context) {
	quizzes, err := c.userQuizService.GetAllQuizzes(ctx.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("User GetAllQuizzes: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve quizzes"})
		return
	}
	ctx.JSON(http.StatusOK, quizzes)
}

// GetQuizDetails godoc
// @Summary (User) Get details of a specific quiz
// @Description Get a quiz with all its questions for a user to start an attempt. The answer key is never included.
// @Tags User - Quizzes & Attempts
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Success 200 {object} dto.QuizResponseDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid Quiz ID format"
// @Failure 404 {object} dto.ErrorResponse "Quiz not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /quizzes/{quiz_id} [get]
func (c *UserQuizController) GetQuizDetails(ctx *gin.Context) {
	quizID, ok := controller.ParseIDParam(ctx, "quiz_id", "Quiz ID")
	if !ok {
		return
	}
	quiz, err := c.userQuizService.GetQuizDetails(ctx.Request.Context(), quizID)
	if err != nil {
		if errors.Is(err, service.ErrQuizNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Quiz not found"})
			return
		}
		log.Error().Err(err).Uint("quizID", quizID).Msg("User GetQuizDetails: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve quiz"})
		return
	}
	ctx.JSON(http.StatusOK, quiz)
}

// SubmitAttempt godoc
// @Summary (User) Submit answers for an entire quiz
// @Description Grades every answer and stores the attempt in one step. On any failure nothing is stored and the submission can be retried.
// @Tags User - Quizzes & Attempts
// @Accept json
// @Produce json
// @Param quiz_id path int true "ID of the Quiz being attempted"
// @Param submission_data body dto.AttemptSubmitDTO true "User ID and list of answers"
// @Success 201 {object} dto.AttemptResultDTO "Attempt graded and stored"
// @Failure 400 {object} dto.ErrorResponse "Invalid submission"
// @Failure 404 {object} dto.ErrorResponse "Quiz has no gradable questions"
// @Failure 502 {object} dto.ErrorResponse "Grading failed"
// @Failure 503 {object} dto.ErrorResponse "Service busy"
// @Failure 500 {object} dto.ErrorResponse "Error processing submission"
// @Router /quizzes/{quiz_id}/attempts [post]
func (c *UserQuizController) SubmitAttempt(ctx *gin.Context) {
	quizID, ok := controller.ParseIDParam(ctx, "quiz_id", "Quiz ID")
	if !ok {
		return
	}

	var req dto.AttemptSubmitDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("User SubmitAttempt: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: controller.SubmissionFailedMessage, Details: []string{err.Error()}})
		return
	}

	in := service.SubmitAttemptInput{
		UserID:      req.UserID,
		QuizID:      quizID,
		Submissions: make([]model.AnswerSubmission, len(req.Answers)),
	}
	for i, a := range req.Answers {
		in.Submissions[i] = model.AnswerSubmission{
			QuestionID:     a.QuestionID,
			OptionID:       a.OptionID,
			AnswerText:     a.AnswerText,
			AnswerMediaRef: a.AnswerMediaRef,
		}
	}

	log.Info().Uint("quizID", quizID).Uint("userID", req.UserID).Int("answerCount", len(req.Answers)).Msg("Received request to submit attempt")

	result, err := c.submissionService.SubmitAttempt(ctx.Request.Context(), in)
	if err != nil {
		resp := dto.ErrorResponse{Message: controller.SubmissionFailedMessage}
		if errors.Is(err, service.ErrInvalidSubmission) {
			resp.Details = []string{err.Error()}
		}
		ctx.JSON(controller.SubmissionStatus(err), resp)
		return
	}
	ctx.JSON(http.StatusCreated, dto.AttemptResultDTO{
		AttemptID:   result.AttemptID,
		FinalScore:  result.FinalScore,
		GradedCount: result.GradedCount,
	})
}

// GetUserAttempts godoc
// @Summary (User) Get all attempts by a user for a specific quiz
// @Tags User - Quizzes & Attempts
// @Produce json
// @Param quiz_id path int true "Quiz ID"
// @Param user_id query int false "User ID to filter attempts. (Temporary - will be from auth token)"
// @Success 200 {array} dto.AttemptSummaryDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid ID format for Quiz ID or User ID"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /quizzes/{quiz_id}/my-attempts [get]
func (c *UserQuizController) GetUserAttempts(ctx *gin.Context) {
	quizID, ok := controller.ParseIDParam(ctx, "quiz_id", "Quiz ID")
	if !ok {
		return
	}
	userID, ok := controller.ParseOptionalIDQuery(ctx, "user_id", "User ID")
	if !ok {
		return
	}

	attempts, err := c.attemptQuery.GetUserAttemptsForQuiz(ctx.Request.Context(), quizID, userID)
	if err != nil {
		log.Error().Err(err).Uint("quizID", quizID).Interface("userID", userID).Msg("User GetUserAttempts: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve user attempts for quiz"})
		return
	}
	ctx.JSON(http.StatusOK, attempts)
}

// GetAttemptDetails godoc
// @Summary (User) Get details of a specific attempt
// @Description Retrieve a single attempt with all graded answers, scores, and feedback.
// @Tags User - Quizzes & Attempts
// @Produce json
// @Param attempt_id path int true "Attempt ID"
// @Success 200 {object} dto.AttemptDetailDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid Attempt ID format"
// @Failure 404 {object} dto.ErrorResponse "Attempt not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /attempts/{attempt_id} [get]
func (c *UserQuizController) GetAttemptDetails(ctx *gin.Context) {
	attemptID, ok := controller.ParseIDParam(ctx, "attempt_id", "Attempt ID")
	if !ok {
		return
	}

	detail, err := c.attemptQuery.GetAttemptDetails(ctx.Request.Context(), attemptID)
	if err != nil {
		if errors.Is(err, service.ErrAttemptNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Attempt not found"})
			return
		}
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("User GetAttemptDetails: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to retrieve attempt"})
		return
	}
	ctx.JSON(http.StatusOK, detail)
}
