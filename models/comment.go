package models

import "time"

// Comment is a reply on an article. ParentID points at a root comment when the
// comment is itself a reply; threads are at most two levels deep.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArticleID uint      `gorm:"index;not null" json:"article_id"`
	AuthorID  uint      `gorm:"index;not null" json:"author_id"`
	ParentID  *uint     `gorm:"index" json:"parentComment"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	IsEdited  bool      `gorm:"not null;default:false" json:"isEdited"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author"`
	Article   *Article  `gorm:"foreignKey:ArticleID" json:"article,omitempty"`
	Replies   []Comment `gorm:"-" json:"replies"`
}
