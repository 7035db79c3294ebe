package dto

import (
	"errors"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"bem-planning/backend/internal/planning"
)

const clockTag = "clock"

// RegisterValidators 在 gin 默认校验器上注册自定义规则，进程启动时调用一次
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin 校验引擎不是 validator/v10")
	}

	// 错误信息使用 json / form 字段名
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, key := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return v.RegisterValidation(clockTag, clockValidation)
}

// clockValidation 校验 "HH:MM" 格式
func clockValidation(fl validator.FieldLevel) bool {
	_, err := planning.ParseClock(fl.Field().String())
	return err == nil
}

// InvalidFields 提取校验失败的字段名，非校验错误返回 nil
func InvalidFields(err error) []string {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return nil
	}
	fields := make([]string, 0, len(ves))
	for _, fe := range ves {
		fields = append(fields, fe.Field())
	}
	return fields
}
