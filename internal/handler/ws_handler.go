package handler

import (
	"strings"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"go-inventory-mt/internal/authz"
	"go-inventory-mt/internal/service"
	"go-inventory-mt/internal/ws"
)

const (
	wsCallerKey = "ws_caller"
	wsTokenKey  = "ws_token"
)

// WSHandler streams stock events to authenticated clients. A super admin
// receives every tenant's events, everyone else only their company's. The
// hub closes a user's streams when their tokens are revoked.
type WSHandler struct {
	auth service.AuthService
	hub  *ws.Hub
	log  *zap.Logger
}

func NewWSHandler(auth service.AuthService, hub *ws.Hub, log *zap.Logger) *WSHandler {
	return &WSHandler{auth: auth, hub: hub, log: log}
}

// Upgrade authenticates the handshake. Browsers cannot set headers on a
// websocket request, so the token may also come in ?token=.
func (h *WSHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return c.SendStatus(fiber.StatusUpgradeRequired)
	}
	token := c.Query("token")
	if token == "" {
		token = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
	}
	who, _, err := h.auth.Authenticate(token)
	if err != nil {
		return fail(c, err)
	}
	c.Locals(wsCallerKey, who)
	c.Locals(wsTokenKey, token)
	return c.Next()
}

func (h *WSHandler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		who, ok := conn.Locals(wsCallerKey).(*authz.Caller)
		if !ok {
			conn.Close()
			return
		}

		client := &ws.Client{Conn: conn, UserID: who.UserID, CompanyID: who.ScopeCompany()}
		if !h.hub.Join(client) {
			conn.Close()
			return
		}
		defer h.hub.Leave(client)

		// Revocations that landed between the handshake and Join.
		token, _ := conn.Locals(wsTokenKey).(string)
		if _, _, err := h.auth.Authenticate(token); err != nil {
			return
		}
		h.log.Debug("ws stream opened", zap.String("user_id", who.UserID.String()))

		for {
			// Clients only listen; reading detects the close.
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	})
}
