package common

import (
	"strconv"
	"strings"

	"signage-panel/internal/domain/access"

	"github.com/gin-gonic/gin"
)

// ParseID reads a positive id, returning 0 for anything else.
func ParseID(raw string) uint {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return 0
	}
	return uint(id)
}

// GroupRequest reads groupId and group from the query string, falling back
// to the given body values.
func GroupRequest(c *gin.Context, bodyID uint, bodyName string) access.Request {
	req := access.Request{
		GroupID: ParseID(c.Query("groupId")),
		Name:    strings.TrimSpace(c.Query("group")),
	}
	if req.GroupID == 0 {
		req.GroupID = bodyID
	}
	if req.Name == "" {
		req.Name = strings.TrimSpace(bodyName)
	}
	return req
}

// FormGroupRequest is GroupRequest for multipart forms.
func FormGroupRequest(c *gin.Context) access.Request {
	return GroupRequest(c, ParseID(c.PostForm("groupId")), c.PostForm("group"))
}
