package forms

import (
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
)

type SignupForm struct {
	Username string `form:"username" binding:"required,min=3,max=50"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=6"`
	ImageURL string `form:"image_url" binding:"omitempty,url"`
}

type LoginForm struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type MessageForm struct {
	Text string `form:"text" binding:"required,max=140"`
}

// ProfileForm carries the editable profile fields plus the password
// used to re-confirm the edit.
type ProfileForm struct {
	Username       string `form:"username" binding:"required,min=3,max=50"`
	Email          string `form:"email" binding:"required,email"`
	ImageURL       string `form:"image_url" binding:"omitempty,url"`
	HeaderImageURL string `form:"header_image_url" binding:"omitempty,url"`
	Bio            string `form:"bio" binding:"max=280"`
	Location       string `form:"location" binding:"max=100"`
	Password       string `form:"password" binding:"required"`
}

// FieldErrors turns a binding error into per-field messages keyed by
// the lowercased field name, for inline re-rendering.
func FieldErrors(err error) map[string]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"form": "Invalid input."}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[strings.ToLower(fe.Field())] = messageFor(fe)
	}
	return out
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid e-mail address."
	case "url":
		return "Enter a valid URL."
	case "min":
		return "Must be at least " + fe.Param() + " characters."
	case "max":
		return "Must be at most " + fe.Param() + " characters."
	default:
		return "Invalid value."
	}
}
