package controllers

import (
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cppla/gamehouse/services"
	"github.com/cppla/gamehouse/utils"
)

// PollController exposes polls and voting.
type PollController struct {
	ballots *services.BallotBox
}

// NewPollController creates a new PollController instance.
func NewPollController(ballots *services.BallotBox) *PollController {
	return &PollController{ballots: ballots}
}

// optionText accepts either "text" or {"text": "..."} for a poll option.
type optionText string

func (o *optionText) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = optionText(s)
		return nil
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*o = optionText(obj.Text)
	return nil
}

// ListActive returns the active polls.
func (p *PollController) ListActive(ctx *gin.Context) {
	polls, err := p.ballots.ListActive(ctx.Request.Context())
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, polls)
}

// Get returns one poll.
func (p *PollController) Get(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	poll, err := p.ballots.Get(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, poll)
}

// Create opens a poll. Admin only.
func (p *PollController) Create(ctx *gin.Context) {
	var req struct {
		Question string       `json:"question"`
		Options  []optionText `json:"options"`
		EndDate  time.Time    `json:"endDate"`
	}
	if !bindJSON(ctx, &req) {
		return
	}
	options := make([]string, len(req.Options))
	for i, o := range req.Options {
		options[i] = string(o)
	}
	poll, err := p.ballots.Create(ctx.Request.Context(), identity(ctx), req.Question, options, req.EndDate)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, poll)
}

// Vote casts the caller's vote.
func (p *PollController) Vote(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	var req struct {
		OptionIndex *int `json:"optionIndex" binding:"required"`
	}
	if !bindJSON(ctx, &req) {
		return
	}
	poll, err := p.ballots.Vote(ctx.Request.Context(), identity(ctx), id, *req.OptionIndex)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, poll)
}

// Delete removes a poll. Admin only.
func (p *PollController) Delete(ctx *gin.Context) {
	id, ok := parseID(ctx, "id")
	if !ok {
		return
	}
	if err := p.ballots.Delete(ctx.Request.Context(), identity(ctx), id); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"id": id})
}
