package middleware

import (
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// FlashMessage is a one-shot notice rendered on the next page view.
type FlashMessage struct {
	Category string
	Text     string
}

// AddFlash queues a flash message on the session. Category follows the
// bootstrap alert classes ("success", "danger").
func AddFlash(c *gin.Context, category, text string) {
	session := sessions.Default(c)
	session.AddFlash(category + "|" + text)
	session.Save()
}

// TakeFlashes drains and returns the queued flash messages.
func TakeFlashes(c *gin.Context) []FlashMessage {
	session := sessions.Default(c)
	raw := session.Flashes()
	if len(raw) == 0 {
		return nil
	}
	session.Save()

	flashes := make([]FlashMessage, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			continue
		}
		category, text, found := strings.Cut(s, "|")
		if !found {
			category, text = "success", s
		}
		flashes = append(flashes, FlashMessage{Category: category, Text: text})
	}
	return flashes
}
