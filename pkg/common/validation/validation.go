// Package validation 基于 validator 的结构体校验，产出与前端一致的字段提示。
package validation

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	apperrors "car-catalog/pkg/common/errors"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// maxbytes 按字节计长度，max 对字符串按 rune 计
	_ = v.RegisterValidation("maxbytes", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= n
	})
	return v
}

// Messages 以 "字段.规则" 为键，例如 "Title.required"
type Messages map[string]string

// Struct 校验结构体，所有字段错误按声明顺序去重后合并为一个 ValidationFailed
func Struct(s any, messages Messages) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperrors.Validation("Invalid request.")
	}

	seen := make(map[string]bool, len(fieldErrs))
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msg := messageFor(fe, messages)
		if seen[msg] {
			continue
		}
		seen[msg] = true
		msgs = append(msgs, msg)
	}
	return apperrors.Validation(msgs...)
}

func messageFor(fe validator.FieldError, messages Messages) string {
	// Images[3] -> Images
	field, _, _ := strings.Cut(fe.StructField(), "[")
	if msg, ok := messages[field+"."+fe.Tag()]; ok {
		return msg
	}
	return field + " is invalid"
}
