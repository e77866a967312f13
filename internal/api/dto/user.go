package dto

// UserDTO 用户信息
type UserDTO struct {
	ID           uint64 `json:"id"`
	Email        string `json:"email,omitempty"`
	Name         string `json:"name"`
	Image        string `json:"image"`
	Role         string `json:"role"`
	Passion      string `json:"passion"`
	Interest     string `json:"interest"`
	Organization string `json:"organization"`
	Theme        string `json:"theme,omitempty"`
	CreatedAt    int64  `json:"createdAt"`
}

// UpdateProfileDTO 修改个人资料
type UpdateProfileDTO struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=100"`
	Passion      *string `json:"passion" binding:"omitempty,max=255"`
	Interest     *string `json:"interest" binding:"omitempty,max=255"`
	Organization *string `json:"organization" binding:"omitempty,max=255"`
}

// UpdateThemeDTO 修改主题
type UpdateThemeDTO struct {
	Theme string `json:"theme" binding:"required"`
}

// UpdateRoleDTO 管理员修改角色
type UpdateRoleDTO struct {
	Role string `json:"role" binding:"required"`
}

// SuggestionsDTO 资料填写建议
type SuggestionsDTO struct {
	Passions      []string `json:"passions"`
	Organizations []string `json:"organizations"`
}

// IdentityWebhookDTO 身份提供方推送的用户事件
type IdentityWebhookDTO struct {
	Type string              `json:"type" validate:"required,oneof=user.created user.updated"`
	Data IdentityWebhookUser `json:"data" validate:"required"`
}

type IdentityWebhookUser struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	ImageURL  string `json:"image_url"`
}
