package users

import (
	"errors"
	"net/http"
	"strings"

	"signage-panel/internal/api/common"
	"signage-panel/internal/domain/groups"
	"signage-panel/internal/domain/users"
	"signage-panel/internal/store"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// Handler manages panel accounts. Routes are master-only.
type Handler struct {
	Store *store.Store
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.Store.ListUsers(c.Request.Context())
	if err != nil {
		common.WriteError(c, err)
		return
	}
	out := make([]UserDTO, 0, len(list))
	for _, u := range list {
		out = append(out, ToDTO(u))
	}
	c.JSON(http.StatusOK, out)
}

// Create adds a group user.
func (h *Handler) Create(c *gin.Context) {
	var input struct {
		Username string `json:"username"`
		Password string `json:"password"`
		GroupID  uint   `json:"groupId"`
		Active   *bool  `json:"active"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid body"})
		return
	}
	input.Username = strings.TrimSpace(input.Username)
	if input.Username == "" || input.Password == "" || input.GroupID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username, password and group are required"})
		return
	}
	if len(input.Password) < users.MinPasswordLength {
		common.WriteError(c, users.ErrPasswordTooShort)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not hash password"})
		return
	}

	gid := input.GroupID
	u := users.User{
		Username:     input.Username,
		PasswordHash: string(hash),
		Role:         users.RoleGroupUser,
		Active:       input.Active == nil || *input.Active,
		GroupID:      &gid,
	}
	if err := h.Store.CreateUser(c.Request.Context(), &u); err != nil {
		if errors.Is(err, groups.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Group not found"})
			return
		}
		common.WriteError(c, err)
		return
	}

	created, err := h.Store.GetUser(c.Request.Context(), u.ID)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, ToDTO(created))
}
