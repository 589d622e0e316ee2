package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cppla/gamehouse/models"
)

// BallotBox manages polls and the votes cast on them.
type BallotBox struct {
	db  *gorm.DB
	log *zap.Logger
	now func() time.Time
}

// NewBallotBox creates a BallotBox using the wall clock.
func NewBallotBox(db *gorm.DB, log *zap.Logger) *BallotBox {
	return &BallotBox{db: db, log: log, now: time.Now}
}

// WithClock replaces the clock used for expiry checks.
func (b *BallotBox) WithClock(now func() time.Time) *BallotBox {
	b.now = now
	return b
}

// Create opens a new poll. Only admins may create polls.
func (b *BallotBox) Create(ctx context.Context, actor Identity, question string, options []string, endDate time.Time) (*models.Poll, error) {
	if err := Authorize(actor, 0, ActionCreatePoll); err != nil {
		return nil, err
	}
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, Validation("question is required")
	}
	if len(options) < 2 {
		return nil, Validation("a poll needs at least two options")
	}
	if endDate.IsZero() || !endDate.After(b.now()) {
		return nil, Validation("endDate must be in the future")
	}

	poll := models.Poll{Question: question, CreatedBy: actor.UserID, IsActive: true, EndDate: endDate}
	for i, text := range options {
		text = strings.TrimSpace(text)
		if text == "" {
			return nil, Validation("poll options cannot be empty")
		}
		poll.Options = append(poll.Options, models.PollOption{Position: i, Text: text})
	}

	if err := b.db.WithContext(ctx).Create(&poll).Error; err != nil {
		return nil, err
	}
	b.log.Info("poll created", zap.Uint("poll_id", poll.ID), zap.Uint("actor", actor.UserID))
	return b.Get(ctx, poll.ID)
}

// Vote records actor's choice of the option at optionIndex.
//
// A poll whose end date has passed is marked inactive the first time anyone
// tries to vote on it; that transition is committed even though the vote
// itself is refused.
func (b *BallotBox) Vote(ctx context.Context, actor Identity, pollID uint, optionIndex int) (*models.Poll, error) {
	if actor.UserID == 0 {
		return nil, ErrUnauthenticated
	}
	db := b.db.WithContext(ctx)

	var poll models.Poll
	if err := db.First(&poll, pollID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPollNotFound
		}
		return nil, err
	}
	if !poll.IsActive {
		return nil, ErrPollClosed
	}
	if b.now().After(poll.EndDate) {
		res := db.Model(&models.Poll{}).Where("id = ? AND is_active = ?", pollID, true).
			UpdateColumn("is_active", false)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			b.log.Info("poll expired", zap.Uint("poll_id", pollID))
		}
		return nil, ErrPollClosed
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		var voted int64
		if err := tx.Model(&models.PollVote{}).
			Where("poll_id = ? AND user_id = ?", pollID, actor.UserID).
			Count(&voted).Error; err != nil {
			return err
		}
		if voted > 0 {
			return ErrAlreadyVoted
		}

		var optionCount int64
		if err := tx.Model(&models.PollOption{}).Where("poll_id = ?", pollID).Count(&optionCount).Error; err != nil {
			return err
		}
		if optionIndex < 0 || int64(optionIndex) >= optionCount {
			return ErrInvalidOption
		}

		ballot := models.PollVote{PollID: pollID, UserID: actor.UserID, OptionIndex: optionIndex}
		ins := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&ballot)
		if ins.Error != nil {
			return ins.Error
		}
		if ins.RowsAffected == 0 {
			return ErrAlreadyVoted
		}

		upd := tx.Model(&models.PollOption{}).
			Where("poll_id = ? AND position = ?", pollID, optionIndex).
			UpdateColumn("votes", gorm.Expr("votes + ?", 1))
		if upd.Error != nil {
			return upd.Error
		}
		if upd.RowsAffected != 1 {
			return ErrInvalidOption
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return b.Get(ctx, pollID)
}

// Get loads a poll with its options in order, its ballots and its creator.
func (b *BallotBox) Get(ctx context.Context, id uint) (*models.Poll, error) {
	var poll models.Poll
	err := b.preloaded(b.db.WithContext(ctx)).First(&poll, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPollNotFound
		}
		return nil, err
	}
	return &poll, nil
}

// ListActive returns every active poll, newest first.
func (b *BallotBox) ListActive(ctx context.Context) ([]models.Poll, error) {
	polls := []models.Poll{}
	err := b.preloaded(b.db.WithContext(ctx)).
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		Find(&polls).Error
	if err != nil {
		return nil, err
	}
	return polls, nil
}

// Delete removes a poll with its options and ballots. Only admins may delete polls.
func (b *BallotBox) Delete(ctx context.Context, actor Identity, id uint) error {
	if err := Authorize(actor, 0, ActionDeletePoll); err != nil {
		return err
	}
	err := b.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&models.Poll{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrPollNotFound
		}
		if err := tx.Where("poll_id = ?", id).Delete(&models.PollOption{}).Error; err != nil {
			return err
		}
		return tx.Where("poll_id = ?", id).Delete(&models.PollVote{}).Error
	})
	if err != nil {
		return err
	}
	b.log.Info("poll deleted", zap.Uint("poll_id", id), zap.Uint("actor", actor.UserID))
	return nil
}

func (b *BallotBox) preloaded(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Options", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Voters", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Creator", authorColumns)
}
