package dto

// ── 用户模块响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

// UserDetailResponse 用户详细信息（GET /auth/me）
type UserDetailResponse struct {
	UserResponse
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}


// GroupCount 通用分组计数
type GroupCount struct {
	Group string `json:"group"`
	Count int    `json:"count"`
}
