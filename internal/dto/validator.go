package dto

import (
	"github.com/go-playground/validator/v10"

	"classgrid/backend/internal/scheduler"
)

// RegisterValidators 注册自定义校验标签
//   - academic_year: "2024-25" 形式的学年
func RegisterValidators(v *validator.Validate) error {
	return v.RegisterValidation("academic_year", func(fl validator.FieldLevel) bool {
		return scheduler.ValidAcademicYear(fl.Field().String())
	})
}
