package web

import (
	"crypto/md5"
	"fmt"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// post bodies come from a rich text editor, comments from anyone logged in
var ugcPolicy = bluemonday.UGCPolicy()

func funcMap() template.FuncMap {
	return template.FuncMap{
		"sanitize": SanitizeHTML,
		"gravatar": GravatarURL,
	}
}

// SanitizeHTML strips everything but safe user generated markup
func SanitizeHTML(s string) template.HTML {
	return template.HTML(ugcPolicy.Sanitize(s))
}

// GravatarURL builds the avatar url for an email: size 100, rating g, retro fallback
func GravatarURL(email string) string {
	hash := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=100&r=g&d=retro", hash)
}
