package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cppla/gamehouse/middleware"
	"github.com/cppla/gamehouse/services"
	"github.com/cppla/gamehouse/utils"
)

// AuthController handles registration, login and the caller's own profile.
type AuthController struct {
	accounts *services.AccountService
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(accounts *services.AccountService) *AuthController {
	return &AuthController{accounts: accounts}
}

// profileFields lists the keys a profile update may carry.
var profileFields = map[string]bool{"username": true, "email": true, "password": true, "bio": true, "avatar": true}

// Register creates an account and returns a token for it.
func (a *AuthController) Register(ctx *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required,max=64"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(ctx, &req) {
		return
	}
	result, err := a.accounts.Register(ctx.Request.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Created(ctx, result)
}

// Login verifies credentials and issues a JWT.
func (a *AuthController) Login(ctx *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if !bindJSON(ctx, &req) {
		return
	}
	result, err := a.accounts.Login(ctx.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, result)
}

// Logout invalidates the bearer token until it expires.
func (a *AuthController) Logout(ctx *gin.Context) {
	if err := a.accounts.Logout(ctx.Request.Context(), ctx.GetString(middleware.ContextTokenKey)); err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "logged out"})
}

// Profile returns the caller with favorites, articles and comments.
func (a *AuthController) Profile(ctx *gin.Context) {
	profile, err := a.accounts.Profile(ctx.Request.Context(), identity(ctx).UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, profile)
}

// UpdateProfile changes the caller's own account. Unknown keys are rejected.
func (a *AuthController) UpdateProfile(ctx *gin.Context) {
	var raw map[string]json.RawMessage
	if !bindJSON(ctx, &raw) {
		return
	}
	for key := range raw {
		if !profileFields[key] {
			utils.Error(ctx, http.StatusBadRequest, 40021, "field cannot be updated: "+key)
			return
		}
	}

	var upd services.ProfileUpdate
	fields := map[string]**string{
		"username": &upd.Username,
		"email":    &upd.Email,
		"password": &upd.Password,
		"bio":      &upd.Bio,
		"avatar":   &upd.Avatar,
	}
	for key, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			utils.Error(ctx, http.StatusBadRequest, 40022, key+" must be a string")
			return
		}
		*fields[key] = &s
	}

	user, err := a.accounts.UpdateProfile(ctx.Request.Context(), identity(ctx).UserID, upd)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, user)
}

// MakeAdmin promotes a user when the shared bootstrap secret matches.
func (a *AuthController) MakeAdmin(ctx *gin.Context) {
	var req struct {
		Email  string `json:"email" binding:"required"`
		Secret string `json:"secret"`
	}
	if !bindJSON(ctx, &req) {
		return
	}
	user, err := a.accounts.MakeAdmin(ctx.Request.Context(), req.Email, req.Secret)
	if err != nil {
		respondError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "admin role granted", "user": user})
}
