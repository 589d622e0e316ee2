package models

// Question is a quiz question with its answer options.
type Question struct {
	ID      uint             `gorm:"primaryKey" json:"id"`
	Text    string           `gorm:"type:text;not null" json:"text"`
	Options []QuestionOption `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"options"`
}

// QuestionOption is one answer of a quiz question.
type QuestionOption struct {
	ID         uint   `gorm:"primaryKey" json:"-"`
	QuestionID uint   `gorm:"index;not null" json:"-"`
	Text       string `gorm:"size:512" json:"text"`
	IsCorrect  bool   `json:"isCorrect"`
}
