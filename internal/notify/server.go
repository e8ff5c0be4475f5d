package notify

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/tralvick/backloghub/pkg/logger"
	"github.com/tralvick/backloghub/pkg/utils"
)

const (
	pingPeriod     = 30 * time.Second
	pongWait       = 60 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 512 * 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server upgrades authenticated websocket connections and wires them
// into the hub's broadcaster.
type Server struct {
	manager     *Manager
	jwtSecret   string
	broadcaster *WSBroadcaster
	hub         *Hub
}

func NewServer(jwtSecret string, hub *Hub) *Server {
	manager := NewManager()
	broadcaster := NewWSBroadcaster(manager, logger.GetLogger())
	hub.SetBroadcaster(broadcaster)
	go manager.Run()

	return &Server{
		manager:     manager,
		jwtSecret:   jwtSecret,
		broadcaster: broadcaster,
		hub:         hub,
	}
}

// HandleWebSocket authenticates via a token query parameter (browsers
// cannot set headers on websocket dials) and starts the client pumps.
func (s *Server) HandleWebSocket(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "token required"})
		return
	}

	claims, err := utils.ValidateJWT(token, s.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("websocket upgrade failed", map[string]interface{}{"error": err.Error()})
		return
	}

	client := &Client{
		ID:          claims.UserID,
		Username:    claims.Username,
		Conn:        conn,
		Send:        make(chan []byte, 256),
		Manager:     s.manager,
		ConnectedAt: time.Now(),
	}
	client.UpdateActivity()

	s.manager.register <- client
	logger.Info("ws_client_connected", map[string]interface{}{"user_id": claims.UserID})

	go client.WritePump()
	go client.ReadPump()
}

func (s *Server) GetActiveUsers() []string {
	return s.manager.GetActiveUsers()
}
