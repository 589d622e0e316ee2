package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/cppla/gamehouse/models"
)

// QuestionOptionInput is one answer supplied when creating a question.
type QuestionOptionInput struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"isCorrect"`
}

// QuestionService stores quiz questions.
type QuestionService struct {
	db *gorm.DB
}

// NewQuestionService creates a QuestionService.
func NewQuestionService(db *gorm.DB) *QuestionService {
	return &QuestionService{db: db}
}

// List returns all questions with their options.
func (s *QuestionService) List(ctx context.Context) ([]models.Question, error) {
	questions := []models.Question{}
	err := s.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("id ASC").
		Find(&questions).Error
	return questions, err
}

// Create stores a question and its options.
func (s *QuestionService) Create(ctx context.Context, text string, options []QuestionOptionInput) (*models.Question, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, Validation("question text is required")
	}
	q := models.Question{Text: text, Options: make([]models.QuestionOption, 0, len(options))}
	for _, o := range options {
		o.Text = strings.TrimSpace(o.Text)
		if o.Text == "" {
			return nil, Validation("option text is required")
		}
		q.Options = append(q.Options, models.QuestionOption{Text: o.Text, IsCorrect: o.IsCorrect})
	}
	if err := s.db.WithContext(ctx).Create(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}
