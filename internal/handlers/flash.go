package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	flashCookieName = "messages"
	flashContextKey = "flash.pending"
)

// FlashLevel is the severity of a flash message
type FlashLevel string

const (
	FlashSuccess FlashLevel = "success"
	FlashInfo    FlashLevel = "info"
	FlashError   FlashLevel = "error"
)

// Flash is a one-shot message shown on the next rendered page
type Flash struct {
	Level   FlashLevel `json:"level"`
	Message string     `json:"message"`
}

// addFlash queues a message. It is kept in a cookie so it survives the
// redirect that usually follows, and in the request context so a page
// rendered by this same request shows it too.
func addFlash(c *gin.Context, level FlashLevel, message string) {
	pending := append(pendingFlashes(c), Flash{Level: level, Message: message})
	c.Set(flashContextKey, pending)

	all := append(readFlashCookie(c), pending...)
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookieName, encodeFlashes(all), 0, "/", "", false, true)
}

// popFlashes returns every queued message and clears the cookie
func popFlashes(c *gin.Context) []Flash {
	flashes := append(readFlashCookie(c), pendingFlashes(c)...)
	c.Set(flashContextKey, []Flash(nil))

	if _, err := c.Cookie(flashCookieName); err == nil || len(flashes) > 0 {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(flashCookieName, "", -1, "/", "", false, true)
	}
	return flashes
}

func pendingFlashes(c *gin.Context) []Flash {
	if v, ok := c.Get(flashContextKey); ok {
		if flashes, ok := v.([]Flash); ok {
			return flashes
		}
	}
	return nil
}

func readFlashCookie(c *gin.Context) []Flash {
	value, err := c.Cookie(flashCookieName)
	if err != nil || value == "" {
		return nil
	}
	return decodeFlashes(value)
}

func encodeFlashes(flashes []Flash) string {
	data, err := json.Marshal(flashes)
	if err != nil {
		return ""
	}
	return base64.RawURLEncoding.EncodeToString(data)
}

func decodeFlashes(value string) []Flash {
	data, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}
