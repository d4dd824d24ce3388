package ws

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"careerhub/internal/pkg/jwt"
)

type Handler struct {
	hub    *Hub
	tokens jwt.Service
	logger *logrus.Logger
}

func NewHandler(hub *Hub, tokens jwt.Service, logger *logrus.Logger) *Handler {
	return &Handler{hub: hub, tokens: tokens, logger: logger}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws", h.Connect)
}

// Connect authenticates ?token=<access token> and upgrades the request.
func (h *Handler) Connect(c fiber.Ctx) error {
	if h == nil || h.hub == nil {
		return fiber.ErrServiceUnavailable
	}
	token := strings.TrimSpace(c.Query("token"))
	if token == "" {
		return fiber.NewError(fiber.StatusUnauthorized, "missing token")
	}
	claims, err := h.tokens.ValidateAccessToken(token)
	if err != nil {
		return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
	}

	return adaptor.HTTPHandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.hub.log().WithError(err).Warn("ws upgrade failed")
			return
		}
		client := NewClient(h.hub, conn, claims.UserID)
		h.hub.Register(client)
		go client.WritePump()
		go client.ReadPump()
	})(c)
}
