package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/accounts/internal/auth"
	"github.com/mrlokans/accounts/internal/entities"
)

// Notifications shown once after the client forms redirect to the landing route.
const (
	NotificationSignup = "Signup Successful!"
	NotificationSignIn = "SignIn Successful!"
)

// FlashStore keeps one-shot notifications in the session.
type FlashStore interface {
	PutFlash(r *http.Request, message string)
	PopFlash(r *http.Request) string
}

// LandingResponse is the body of GET /.
type LandingResponse struct {
	Notification string            `json:"notification,omitempty"`
	User         *entities.Summary `json:"user"`
}

type LandingController struct {
	flashes FlashStore
}

func NewLandingController(flashes FlashStore) *LandingController {
	return &LandingController{flashes: flashes}
}

// Index handles GET /. The success query parameters are turned into a
// flash and stripped with a redirect, so a reload does not repeat them.
func (lc *LandingController) Index(c *gin.Context) {
	switch {
	case c.Query("signup") == "success":
		lc.flashes.PutFlash(c.Request, NotificationSignup)
		c.Redirect(http.StatusFound, "/")
		return
	case c.Query("signin") == "success":
		lc.flashes.PutFlash(c.Request, NotificationSignIn)
		c.Redirect(http.StatusFound, "/")
		return
	}

	resp := LandingResponse{Notification: lc.flashes.PopFlash(c.Request)}
	if account := auth.GetAccount(c); account != nil {
		summary := account.Summary()
		resp.User = &summary
	}
	c.JSON(http.StatusOK, resp)
}
