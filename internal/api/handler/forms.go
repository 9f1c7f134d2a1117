package handler

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/linkboard/internal/service"
)

type loginForm struct {
	Username   string `form:"username" binding:"required"`
	Password   string `form:"password" binding:"required"`
	RememberMe bool   `form:"remember_me"`
}

type registerForm struct {
	FirstName string `form:"first_name" binding:"required,max=64"`
	LastName  string `form:"last_name" binding:"required,max=64"`
	Username  string `form:"username" binding:"required,max=64,username"`
	Email     string `form:"email" binding:"required,email,max=120"`
	Birthday  string `form:"birthday" binding:"required,datetime=2006-01-02"`
	Password  string `form:"password" binding:"required"`
	Password2 string `form:"password2" binding:"required,eqfield=Password"`
}

type postForm struct {
	URL   string `form:"url" binding:"required,weburl"`
	Title string `form:"title" binding:"required"`
}

type commentForm struct {
	Comment string `form:"comment" binding:"required"`
}

var registerOnce sync.Once

// RegisterValidators 给 gin 默认校验器注册 weburl/username 规则，并让错误字段名使用 form/json tag
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			for _, key := range []string{"form", "json"} {
				name := strings.SplitN(f.Tag.Get(key), ",", 2)[0]
				if name == "-" {
					return ""
				}
				if name != "" {
					return name
				}
			}
			return f.Name
		})
		_ = v.RegisterValidation("weburl", func(fl validator.FieldLevel) bool {
			_, _, err := service.ParseSource(fl.Field().String())
			return err == nil
		})
		_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
			return service.ValidUsername(fl.Field().String())
		})
	})
}

var fieldMessages = map[string]string{
	"required": "This field is required.",
	"email":    "Invalid email address.",
	"eqfield":  "Field must be equal to password.",
	"weburl":   "Invalid URL.",
	"username": service.UsernameMessage,
	"datetime": "Not a valid date value.",
	"max":      "Field is too long.",
}

// formErrors 把校验错误转成 字段 -> 提示
func formErrors(err error) map[string]string {
	out := map[string]string{}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		out["form"] = "Invalid form submission."
		return out
	}
	for _, fe := range verrs {
		msg, ok := fieldMessages[fe.Tag()]
		if !ok {
			msg = "Invalid value."
		}
		if _, exists := out[fe.Field()]; !exists {
			out[fe.Field()] = msg
		}
	}
	return out
}
