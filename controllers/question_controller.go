package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/cppla/gamehouse/services"
	"github.com/cppla/gamehouse/utils"
)

// QuestionController exposes the quiz question store.
type QuestionController struct {
	questions *services.QuestionService
}

// NewQuestionController creates a new QuestionController instance.
func NewQuestionController(questions *services.QuestionService) *QuestionController {
	return &QuestionController{questions: questions}
}

// List returns all questions.
func (q *QuestionController) List(ctx *gin.Context) {
	list, err := q.questions.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, list)
}

// Create stores a question with its options.
func (q *QuestionController) Create(ctx *gin.Context) {
	var req struct {
		Text    string                         `json:"text"`
		Options []services.QuestionOptionInput `json:"options"`
	}
	if !bindJSON(ctx, &req) {
		return
	}
	question, err := q.questions.Create(ctx.Request.Context(), req.Text, req.Options)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, question)
}
