// Package forms binds and validates the post and comment forms.
// Validation is explicit: Validate returns nil on success or a map of
// field name to message, which the handler sends back with the form.
package forms

import (
	"strings"

	"github.com/gin-gonic/gin"
)

type PostForm struct {
	Text  string `json:"text"`
	Group string `json:"group"`
	Image string `json:"image"`
}

func BindPostForm(c *gin.Context) PostForm {
	return PostForm{
		Text:  strings.TrimSpace(c.PostForm("text")),
		Group: strings.TrimSpace(c.PostForm("group")),
	}
}

func (f PostForm) Validate() map[string]string {
	errs := make(map[string]string)
	if f.Text == "" {
		errs["text"] = "Text is required"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

type CommentForm struct {
	Text string `json:"text"`
}

func BindCommentForm(c *gin.Context) CommentForm {
	return CommentForm{Text: strings.TrimSpace(c.PostForm("text"))}
}

func (f CommentForm) Validate() map[string]string {
	if f.Text == "" {
		return map[string]string{"text": "Text is required"}
	}
	return nil
}
