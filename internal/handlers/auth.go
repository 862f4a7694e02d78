package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/emilythestrangee/sysdesign-arena/backend/internal/apperr"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/middleware"
	"github.com/emilythestrangee/sysdesign-arena/backend/internal/models"
)

// AccountStore holds local accounts for the dev login.
type AccountStore interface {
	Create(ctx context.Context, u *models.User) error
	ByEmail(ctx context.Context, email string) (*models.User, error)
	ByID(ctx context.Context, id string) (*models.User, error)
}

type TokenIssuer interface {
	IssueToken(userID, username string) (string, error)
}

type AuthHandler struct {
	responder
	accounts AccountStore
	tokens   TokenIssuer
}

// Register handles user registration
func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, apperr.InvalidArgument(err.Error()))
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		h.fail(c, apperr.Internal("failed to hash password", err))
		return
	}

	user := models.User{
		Username:  strings.TrimSpace(input.Username),
		Email:     strings.ToLower(strings.TrimSpace(input.Email)),
		Password:  string(hashedPassword),
		FirstName: input.FirstName,
		LastName:  input.LastName,
		ImageURL:  input.ImageURL,
	}
	if err := h.accounts.Create(c.Request.Context(), &user); err != nil {
		h.fail(c, err)
		return
	}

	h.respondWithToken(c, http.StatusCreated, user, "User registered successfully")
}

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, apperr.InvalidArgument(err.Error()))
		return
	}

	user, err := h.accounts.ByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(input.Email)))
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			err = apperr.Unauthorized("invalid credentials")
		}
		h.fail(c, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		h.fail(c, apperr.Unauthorized("invalid credentials"))
		return
	}

	h.respondWithToken(c, http.StatusOK, *user, "Login successful")
}

// GetMe returns the authenticated user
func (h *AuthHandler) GetMe(c *gin.Context) {
	user, err := h.accounts.ByID(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user models.User, msg string) {
	token, err := h.tokens.IssueToken(user.ID, user.Username)
	if err != nil {
		h.fail(c, apperr.Internal("failed to generate token", err))
		return
	}
	c.JSON(status, models.AuthResponse{Token: token, User: user, Message: msg})
}
