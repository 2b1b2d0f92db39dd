package controllers

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/yeremiapane/coffee-order/feed"
	"github.com/yeremiapane/coffee-order/utils"
)

type FeedController struct {
	Hub      *feed.Hub
	upgrader websocket.Upgrader
}

// NewFeedController accepts handshakes from allowedOrigin or from the
// service's own host.
func NewFeedController(hub *feed.Hub, allowedOrigin string) *FeedController {
	return &FeedController{
		Hub: hub,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" || origin == allowedOrigin {
					return true
				}
				u, err := url.Parse(origin)
				return err == nil && u.Host == r.Host
			},
		},
	}
}

// StaffFeedHandler -> endpoint WebSocket, one connection per staff screen
func (fc *FeedController) StaffFeedHandler(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	ws, err := fc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Errorf("Websocket upgrade failed: %v", err)
		return
	}

	fc.Hub.Register(ws, userID)
	utils.InfoLogger.Infof("Staff %d connected to the order feed", userID)

	// Client tidak mengirim apa-apa; baca hanya untuk mendeteksi disconnect.
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	fc.Hub.Unregister(ws)
}
