package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// FlashCookie carries a single user-facing message across the redirect
// that follows every form post. The front-end reads and clears it.
const FlashCookie = "flash"

func setFlash(c *gin.Context, msg string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(FlashCookie, msg, 60, "/", "", false, false)
}

// flashRedirect is the error-surfacing convention: message plus a
// redirect back to a sensible page.
func flashRedirect(c *gin.Context, msg, location string) {
	setFlash(c, msg)
	c.Redirect(http.StatusSeeOther, location)
}

// safeNext accepts only same-origin relative paths for post-login
// redirects. Anything else falls back to the dashboard.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") {
		return "/dashboard"
	}
	if strings.ContainsAny(next, "\\\r\n") {
		return "/dashboard"
	}
	return next
}
