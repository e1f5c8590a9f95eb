package controller

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/model"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/app/service"
	apperrors "github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/errors"
	"github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/middleware"
	ws "github.com/TECHTUNE-I-T-SOLUTIONS/divine-grace-backend/internal/websocket"
)

func newUpgrader(allowedOrigins []string) websocket.Upgrader {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true // non-browser clients
			}
			return origins[origin]
		},
	}
}

type ChatController struct {
	chatService service.ChatService
	hub         *ws.Hub
	upgrader    websocket.Upgrader
}

func NewChatController(chatService service.ChatService, hub *ws.Hub, allowedOrigins []string) *ChatController {
	return &ChatController{
		chatService: chatService,
		hub:         hub,
		upgrader:    newUpgrader(allowedOrigins),
	}
}

type SendChatMessageRequest struct {
	Message  string `json:"message"`
	ImageURL string `json:"image_url"`
	// admin senders address a customer thread
	UserID uint `json:"user_id"`
}

// Send posts a message into the sender's thread
// POST /api/v1/chat/messages
func (ctrl *ChatController) Send(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	senderID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	var req SendChatMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "Invalid message payload")
		return
	}

	senderRole := model.SenderRoleUser
	if role == model.RoleAdmin {
		senderRole = model.SenderRoleAdmin
		if req.UserID == 0 {
			apperrors.BadRequest(c, apperrors.ValidationRequired, "user_id is required for admin messages")
			return
		}
	}

	msg, err := ctrl.chatService.SendMessage(senderID, senderRole, req.UserID, req.Message, req.ImageURL)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMessage):
			apperrors.BadRequest(c, apperrors.ChatCannotSendMessage, "Message body is empty")
		case errors.Is(err, service.ErrUserNotFound):
			apperrors.NotFound(c, apperrors.ResourceNotFound, "Customer not found")
		case errors.Is(err, service.ErrNoAdmin):
			apperrors.InternalError(c, "Support is unavailable right now")
		default:
			log.Error("Failed to send chat message", err, map[string]interface{}{
				"sender_id": senderID,
			})
			apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "send chat message")
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": msg,
	})
}

// Thread returns the conversation history and marks it read.
// Customers read their own thread; admins pass the customer's ID.
// GET /api/v1/chat/thread?user_id=&limit=
func (ctrl *ChatController) Thread(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	callerID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	var adminID, userID uint
	var reader model.SenderRole

	if role == model.RoleAdmin {
		targetID, err := strconv.ParseUint(c.Query("user_id"), 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "user_id query parameter is required")
			return
		}
		adminID = callerID
		userID = uint(targetID)
		reader = model.SenderRoleAdmin
	} else {
		id, err := ctrl.chatService.DefaultAdminID()
		if err != nil {
			apperrors.InternalError(c, "Support is unavailable right now")
			return
		}
		adminID = id
		userID = callerID
		reader = model.SenderRoleUser
	}

	messages, err := ctrl.chatService.GetThread(adminID, userID, reader, limit)
	if err != nil {
		log.Error("Failed to load chat thread", err, map[string]interface{}{
			"admin_id": adminID,
			"user_id":  userID,
		})
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "get chat thread")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"messages": messages,
		"count":    len(messages),
	})
}

// Threads returns the admin inbox
// GET /api/v1/admin/chat/threads
func (ctrl *ChatController) Threads(c *gin.Context) {
	adminID, _ := middleware.GetUserID(c)

	threads, err := ctrl.chatService.ListThreads(adminID)
	if err != nil {
		apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "list chat threads")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"threads": threads,
		"count":   len(threads),
	})
}

// Connect upgrades to a WebSocket session and joins the caller's
// thread. Admins join via ?user_id= to watch a customer conversation.
// GET /api/v1/chat/ws
func (ctrl *ChatController) Connect(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	callerID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	principal := ws.Principal{Role: ws.RoleUser, ID: callerID}
	threadID := callerID
	if role == model.RoleAdmin {
		targetID, err := strconv.ParseUint(c.Query("user_id"), 10, 32)
		if err != nil {
			apperrors.BadRequest(c, apperrors.ValidationInvalidID, "user_id query parameter is required")
			return
		}
		principal.Role = ws.RoleAdmin
		threadID = uint(targetID)
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err, map[string]interface{}{
			"user_id": callerID,
		})
		return
	}

	client := &ws.Client{
		Hub:           ctrl.hub,
		Conn:          &ws.Conn{Conn: conn},
		Principal:     principal,
		Send:          make(chan []byte, 2048),
		Threads:       make(map[uint]bool),
		LastResetTime: time.Now(),
	}

	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()

	ctrl.hub.JoinThread(principal, threadID)

	log.Info("WebSocket connection established", map[string]interface{}{
		"user_id":   callerID,
		"role":      principal.Role,
		"thread_id": threadID,
	})
}
