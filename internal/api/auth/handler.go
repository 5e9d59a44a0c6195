package auth

import (
	"errors"
	"net/http"
	"time"

	"signage-panel/internal/api/common"
	usersapi "signage-panel/internal/api/users"
	"signage-panel/internal/app/http/middleware"
	"signage-panel/internal/domain/users"
	"signage-panel/internal/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Store  *store.Store
	Secret string
	// Secure marks the session cookie HTTPS-only.
	Secure bool
	Now    func() time.Time
}

type GroupDTO struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

func (h *Handler) allowedGroups(c *gin.Context, u *users.User) ([]GroupDTO, error) {
	out := []GroupDTO{}
	if u == nil {
		return out, nil
	}
	all, err := h.Store.ListGroups(c.Request.Context())
	if err != nil {
		return nil, err
	}
	for _, g := range all {
		if u.CanAccessGroup(g.ID) {
			out = append(out, GroupDTO{ID: g.ID, Name: g.Name})
		}
	}
	return out, nil
}

func (h *Handler) setSession(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AuthCookie, token, maxAge, "/", "", h.Secure, true)
}

func (h *Handler) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	user, err := h.Store.FindUserByUsername(c.Request.Context(), input.Username)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		common.WriteError(c, err)
		return
	}
	if !user.Active {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	tokenString, err := middleware.IssueToken(h.Secret, user, h.now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}
	h.setSession(c, tokenString, int(middleware.TokenTTL.Seconds()))

	allowed, err := h.allowedGroups(c, &user)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": usersapi.ToDTO(user), "groups": allowed, "token": tokenString})
}

func (h *Handler) Logout(c *gin.Context) {
	h.setSession(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handler) Me(c *gin.Context) {
	u := middleware.CurrentUser(c)
	if u == nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}
	allowed, err := h.allowedGroups(c, u)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authenticated": true, "user": usersapi.ToDTO(*u), "groups": allowed})
}

func (h *Handler) Groups(c *gin.Context) {
	allowed, err := h.allowedGroups(c, middleware.CurrentUser(c))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, allowed)
}
