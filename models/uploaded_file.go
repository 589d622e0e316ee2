package models

import "time"

// UploadedFile records an image written by the blob store. Digest is the
// BLAKE3 hash of the content, so identical uploads share one file.
type UploadedFile struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	OwnerID   uint      `gorm:"index;not null" json:"owner_id"`
	Digest    string    `gorm:"size:64;index;not null" json:"digest"`
	FilePath  string    `gorm:"size:1024;not null" json:"-"`
	URL       string    `gorm:"size:1024;not null" json:"url"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// All returns every model that InitDatabase migrates.
func All() []interface{} {
	return []interface{}{
		&User{}, &UserFavorite{}, &Article{}, &ArticleToggle{}, &Comment{},
		&Poll{}, &PollOption{}, &PollVote{}, &Question{}, &QuestionOption{}, &UploadedFile{},
	}
}
