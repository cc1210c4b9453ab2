package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/sentimenthq/pulse/internal/db"
	"github.com/sentimenthq/pulse/internal/errs"
	"github.com/sentimenthq/pulse/internal/models"
)

// AuthAPI serves login, registration and token refresh for the dashboard
type AuthAPI struct {
	users  *db.UserRepository
	issuer *TokenIssuer
}

// NewAuthAPI creates the auth handler group
func NewAuthAPI(users *db.UserRepository, issuer *TokenIssuer) *AuthAPI {
	return &AuthAPI{users: users, issuer: issuer}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type registerRequest struct {
	Email     string `json:"email" binding:"required"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
	Password  string `json:"password" binding:"required,min=8"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type authResponse struct {
	AccessToken  string       `json:"accessToken"`
	RefreshToken string       `json:"refreshToken"`
	ExpiresIn    int64        `json:"expiresIn"`
	TokenType    string       `json:"tokenType"`
	User         userResponse `json:"user"`
}

func toUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:        user.ID.String(),
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role.String(),
	}
}

// Login handles POST /auth/login
func (a *AuthAPI) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.Validation("email and password are required"))
		return
	}

	user, err := a.users.GetByEmail(c.Request.Context(), req.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil || !user.IsActive {
		respondError(c, errs.Unauthorized("invalid credentials"))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		respondError(c, errs.Unauthorized("invalid credentials"))
		return
	}

	access, refresh, expiresIn, err := a.issuer.Issue(user)
	if err != nil {
		respondError(c, err)
		return
	}

	user.LastLoginAt = sql.NullTime{Time: time.Now().UTC(), Valid: true}
	if err := a.users.Update(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, authResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
		TokenType:    "Bearer",
		User:         toUserResponse(user),
	})
}

// Register handles POST /auth/register. New accounts start as viewers.
func (a *AuthAPI) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.Validation("registration fields are invalid",
			errs.FieldDetail{Field: "password", Message: "must be at least 8 characters"}))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		respondError(c, err)
		return
	}

	user := &models.User{
		Email:         req.Email,
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		PasswordHash:  string(hash),
		Role:          models.RoleViewer,
		IsActive:      true,
		DailyAPILimit: 1000,
	}
	if err := a.users.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserResponse(user))
}

// Profile handles GET /auth/profile
func (a *AuthAPI) Profile(c *gin.Context) {
	userID, ok := AuthedUserID(c)
	if !ok {
		respondError(c, errs.Unauthorized("authentication required"))
		return
	}

	user, err := a.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil {
		respondError(c, errs.NotFound("user not found"))
		return
	}

	c.JSON(http.StatusOK, toUserResponse(user))
}

// Refresh handles POST /auth/refresh, exchanging a refresh token for a new
// token pair
func (a *AuthAPI) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, errs.Validation("refreshToken is required"))
		return
	}

	_, userID, err := a.issuer.Parse(req.RefreshToken, tokenTypeRefresh)
	if err != nil {
		respondError(c, err)
		return
	}

	user, err := a.users.GetByID(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	if user == nil || !user.IsActive {
		respondError(c, errs.Unauthorized("account no longer active"))
		return
	}

	access, refresh, expiresIn, err := a.issuer.Issue(user)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, authResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
		TokenType:    "Bearer",
		User:         toUserResponse(user),
	})
}
