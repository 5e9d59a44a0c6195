package users

import "signage-panel/internal/domain/users"

type UserDTO struct {
	ID        uint    `json:"id"`
	Username  string  `json:"username"`
	Role      string  `json:"role"`
	GroupID   *uint   `json:"groupId"`
	GroupName *string `json:"groupName"`
	Active    bool    `json:"active"`
}

func ToDTO(u users.User) UserDTO {
	dto := UserDTO{ID: u.ID, Username: u.Username, Role: u.Role, GroupID: u.GroupID, Active: u.Active}
	if u.Group != nil {
		name := u.Group.Name
		dto.GroupName = &name
	}
	return dto
}
