package dto

// ── 认证模块 DTO ──

// LoginRequest 登录请求
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	ExpiresIn   int          `json:"expires_in"` // Access Token 有效期（秒）
	User        UserResponse `json:"user"`
}

// ── 用户管理 ──

// CreateUserRequest 管理员创建账号
type CreateUserRequest struct {
	Name       string `json:"name"       binding:"required,max=100"`
	Email      string `json:"email"      binding:"required,email,max=255"`
	Password   string `json:"password"   binding:"required,min=8,max=72"`
	Role       string `json:"role"       binding:"required,oneof=admin faculty"`
	Department string `json:"department" binding:"max=100"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	Role string `form:"role" binding:"omitempty,oneof=admin faculty"`
}
