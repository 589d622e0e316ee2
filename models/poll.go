package models

import "time"

// Poll is a one-vote-per-user ballot with a fixed, ordered list of options.
type Poll struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Question  string       `gorm:"size:512;not null" json:"question"`
	CreatedBy uint         `gorm:"index;not null" json:"createdBy"`
	IsActive  bool         `gorm:"not null;default:true;index" json:"isActive"`
	EndDate   time.Time    `gorm:"not null" json:"endDate"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
	Options   []PollOption `gorm:"foreignKey:PollID" json:"options"`
	Voters    []PollVote   `gorm:"foreignKey:PollID" json:"voters"`
	Creator   User         `gorm:"foreignKey:CreatedBy" json:"creator"`
}

// PollOption holds the running vote count of one option. Position is the
// option index callers vote with.
type PollOption struct {
	ID       uint   `gorm:"primaryKey" json:"-"`
	PollID   uint   `gorm:"uniqueIndex:idx_poll_position;not null" json:"-"`
	Position int    `gorm:"uniqueIndex:idx_poll_position;not null" json:"-"`
	Text     string `gorm:"size:255;not null" json:"text"`
	Votes    int    `gorm:"not null;default:0" json:"votes"`
}

// PollVote is a cast ballot. The unique (poll, user) key enforces one vote per user.
type PollVote struct {
	ID          uint      `gorm:"primaryKey" json:"-"`
	PollID      uint      `gorm:"uniqueIndex:idx_poll_voter;not null" json:"-"`
	UserID      uint      `gorm:"uniqueIndex:idx_poll_voter;not null" json:"user"`
	OptionIndex int       `gorm:"not null" json:"optionIndex"`
	CreatedAt   time.Time `json:"created_at"`
}
