package service

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateStruct 校验输入结构体，返回带字段名的可读错误
func validateStruct(input interface{}) error {
	if err := validate.Struct(input); err != nil {
		var fields []string
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s(%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
			return fmt.Errorf("%s", strings.Join(fields, ", "))
		}
		return err
	}
	return nil
}
