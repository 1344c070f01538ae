package ws

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/barberkas/api/internal/auth"
	"github.com/barberkas/api/internal/enum"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	writeTimeout = 10 * time.Second
	idleTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
	readLimit    = 512
	sendBuffer   = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Access is checked with the JWT before upgrading.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is one dashboard connection subscribed to a branch. Each event is
// written as its own text frame.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	branchID uuid.UUID
	send     chan []byte
	log      zerolog.Logger
}

// accessError carries the HTTP status returned before the upgrade.
type accessError struct {
	status int
	msg    string
}

func (e *accessError) Error() string { return e.msg }

// authorize resolves the branch of the connection from the URL and checks the
// token against it. The token comes from ?token= since browsers cannot set
// headers on a websocket handshake; a bearer header is accepted too.
func authorize(jwtSecret string, r *http.Request) (*auth.Claims, uuid.UUID, error) {
	token := r.URL.Query().Get("token")
	if token == "" {
		if scheme, rest, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "bearer") {
			token = strings.TrimSpace(rest)
		}
	}
	if token == "" {
		return nil, uuid.Nil, &accessError{http.StatusUnauthorized, "token wajib diisi"}
	}

	claims, err := auth.ValidateToken(jwtSecret, token)
	if err != nil {
		return nil, uuid.Nil, &accessError{http.StatusUnauthorized, "token tidak valid"}
	}

	branchID, err := uuid.Parse(chi.URLParam(r, "bid"))
	if err != nil {
		return nil, uuid.Nil, &accessError{http.StatusBadRequest, "ID cabang tidak valid"}
	}

	if claims.Role != enum.UserRoleOwner && claims.BranchID != branchID {
		return nil, uuid.Nil, &accessError{http.StatusForbidden, "akses ke cabang ini ditolak"}
	}
	return claims, branchID, nil
}

// ServeWS upgrades GET /ws/branches/{bid} and subscribes the connection to
// the branch room.
func ServeWS(hub *Hub, jwtSecret string, w http.ResponseWriter, r *http.Request) {
	claims, branchID, err := authorize(jwtSecret, r)
	if err != nil {
		var ae *accessError
		if errors.As(err, &ae) {
			http.Error(w, ae.msg, ae.status)
			return
		}
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already answered the request.
		log.Warn().Err(err).Str("branch_id", branchID.String()).Msg("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:      hub,
		conn:     conn,
		branchID: branchID,
		send:     make(chan []byte, sendBuffer),
		log: log.With().
			Str("branch_id", branchID.String()).
			Str("user_id", claims.UserID.String()).
			Logger(),
	}
	if !hub.join(client) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeTimeout))
		_ = conn.Close()
		return
	}
	client.log.Debug().Msg("websocket connected")

	go client.writeLoop()
	go client.readLoop()
}

// readLoop drains control frames until the peer goes away. Dashboards never
// send commands, so data frames are discarded.
func (c *Client) readLoop() {
	defer func() {
		c.hub.leave(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(readLimit)
	extend := func() error { return c.conn.SetReadDeadline(time.Now().Add(idleTimeout)) }
	_ = extend()
	c.conn.SetPongHandler(func(string) error { return extend() })

	for {
		_, _, err := c.conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
			c.log.Warn().Err(err).Msg("websocket closed unexpectedly")
		} else {
			c.log.Debug().Msg("websocket disconnected")
		}
		return
	}
}

// writeLoop sends queued events and keeps the connection alive with pings.
// A closed send channel means the hub dropped the client.
func (c *Client) writeLoop() {
	ping := time.NewTicker(pingInterval)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	for {
		var (
			kind    int
			payload []byte
		)
		select {
		case msg, ok := <-c.send:
			if !ok {
				kind = websocket.CloseMessage
			} else {
				kind, payload = websocket.TextMessage, msg
			}
		case <-ping.C:
			kind = websocket.PingMessage
		}

		_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(kind, payload); err != nil {
			c.log.Debug().Err(err).Msg("websocket write failed")
			return
		}
		if kind == websocket.CloseMessage {
			return
		}
	}
}
