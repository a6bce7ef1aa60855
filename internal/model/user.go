package model

// 用户角色
const (
	RoleAdmin   = "admin"
	RoleFaculty = "faculty"
)

// User 用户表，对应 users（教师与管理员共用）
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'faculty'"    json:"role"` // admin | faculty
	Department   string `gorm:"type:varchar(100);not null;default:''"          json:"department"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
