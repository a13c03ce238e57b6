package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"pulsetrack-go/pkg/logging"
	"pulsetrack-go/pkg/metrics"
	"pulsetrack-go/pkg/models"
	"pulsetrack-go/pkg/services"
)

// Inbound message types
const (
	MsgAuthenticate   = "authenticate"
	MsgReportActivity = "report_activity"
	MsgUpdateStatus   = "update_status"
	MsgGetActiveUsers = "get_active_users"
	MsgSubscribeUser  = "subscribe_to_user"
)

// Outbound message types
const (
	MsgAuthenticated     = "authenticated"
	MsgAuthError         = "auth_error"
	MsgUserStatusChanged = "user_status_changed"
	MsgActivityUpdate    = "activity_update"
	MsgActiveUsers       = "active_users"
	MsgSubscribed        = "subscribed"
	MsgActivityRecorded  = "activity_recorded"
	MsgStatusUpdated     = "status_updated"
	MsgError             = "error"
)

// SessionValidator resolves a bearer token to a user ID
type SessionValidator interface {
	ValidateSession(ctx context.Context, token string) (string, error)
}

// Gateway is the realtime surface: it upgrades connections, routes client
// messages and fans presence and activity changes out to interested peers.
type Gateway struct {
	hub      *Hub
	registry *Registry
	presence services.PresenceService
	activity services.ActivityService
	sessions SessionValidator
	logger   *logging.Logger

	upgrader websocket.Upgrader
}

// NewGateway creates a realtime gateway
func NewGateway(
	hub *Hub,
	registry *Registry,
	presence services.PresenceService,
	activity services.ActivityService,
	sessions SessionValidator,
	logger *logging.Logger,
) *Gateway {
	return &Gateway{
		hub:      hub,
		registry: registry,
		presence: presence,
		activity: activity,
		sessions: sessions,
		logger:   logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// userChannel is the channel a user's own sockets join on authentication
func userChannel(userID string) string {
	return "user:" + userID
}

// subscriberChannel is the channel peers join to follow a user's activity
func subscriberChannel(userID string) string {
	return "user:" + userID + ":subscribers"
}

// ServeHTTP upgrades the request and runs the connection until it drops
func (g *Gateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := NewClient(uuid.New().String(), NewConn(ws))
	g.hub.Register(client)
	metrics.WebSocketConnections.Inc()
	g.logger.Debug("websocket client connected", zap.String("conn_id", client.ID))

	go g.writePump(client)
	g.readPump(client)
}

func (g *Gateway) readPump(client *Client) {
	defer g.HandleDisconnect(client)

	for {
		var msg Message
		if err := client.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				g.logger.Debug("websocket read error",
					zap.String("conn_id", client.ID), zap.Error(err))
			}
			return
		}
		g.HandleMessage(context.Background(), client, &msg)
	}
}

func (g *Gateway) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				return
			}
			if err := client.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := client.conn.Ping(); err != nil {
				return
			}
		}
	}
}

// HandleMessage routes one inbound client message
func (g *Gateway) HandleMessage(ctx context.Context, client *Client, msg *Message) {
	metrics.WebSocketMessages.WithLabelValues(msg.Type).Inc()

	switch msg.Type {
	case MsgAuthenticate:
		g.handleAuthenticate(ctx, client, msg)
	case MsgReportActivity:
		g.handleReportActivity(ctx, client, msg)
	case MsgUpdateStatus:
		g.handleUpdateStatus(ctx, client, msg)
	case MsgGetActiveUsers:
		g.handleGetActiveUsers(ctx, client)
	case MsgSubscribeUser:
		g.handleSubscribeToUser(client, msg)
	default:
		g.sendError(client, "UNKNOWN_MESSAGE", "unknown message type: "+msg.Type)
	}
}

func (g *Gateway) handleAuthenticate(ctx context.Context, client *Client, msg *Message) {
	token := dataString(msg, "token")
	if token == "" {
		g.sendAuthError(client, "MISSING_TOKEN", "token is required")
		return
	}

	userID, err := g.sessions.ValidateSession(ctx, token)
	if err != nil {
		g.sendAuthError(client, "AUTHENTICATION_FAILED", "authentication failed")
		return
	}

	client.UserID = userID
	g.registry.Bind(client.ID, userID)
	g.hub.Subscribe(client, userChannel(userID))

	status, err := g.presence.SetStatus(ctx, userID, services.PresenceUpdate{
		Status: models.StateActive,
	})
	if err != nil {
		g.logger.Error("failed to mark user active",
			zap.String("user_id", userID), zap.Error(err))
		g.sendError(client, "INTERNAL_ERROR", "failed to update status")
		return
	}

	g.hub.SendToClient(client, NewMessage(MsgAuthenticated, map[string]interface{}{
		"user_id": userID,
	}))
	g.broadcastStatusChange(status)

	g.logger.Info("websocket client authenticated",
		zap.String("conn_id", client.ID), zap.String("user_id", userID))
}

func (g *Gateway) handleReportActivity(ctx context.Context, client *Client, msg *Message) {
	if client.UserID == "" {
		g.sendError(client, "NOT_AUTHENTICATED", "authenticate before reporting activity")
		return
	}

	input, err := decodeActivityInput(msg.Data)
	if err != nil {
		g.sendError(client, "INVALID_PAYLOAD", err.Error())
		return
	}

	event, err := g.activity.Record(ctx, client.UserID, input)
	if err != nil {
		g.sendError(client, "RECORD_FAILED", err.Error())
		return
	}

	g.hub.SendToClient(client, NewMessage(MsgActivityRecorded, map[string]interface{}{
		"id": event.ID,
	}))

	// Coarse fan-out to every connection, sender included
	update := NewMessage(MsgActivityUpdate, map[string]interface{}{
		"user_id":          event.UserID,
		"kind":             string(event.Kind),
		"application_name": event.ApplicationName,
		"timestamp":        event.StartTime,
	})
	g.hub.Broadcast(update)
	metrics.BroadcastsSent.WithLabelValues(MsgActivityUpdate).Inc()
}

func (g *Gateway) handleUpdateStatus(ctx context.Context, client *Client, msg *Message) {
	if client.UserID == "" {
		g.sendError(client, "NOT_AUTHENTICATED", "authenticate before updating status")
		return
	}

	update := services.PresenceUpdate{
		Status: models.PresenceState(dataString(msg, "status")),
	}
	if raw := dataString(msg, "last_activity"); raw != "" {
		at, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			g.sendError(client, "INVALID_PAYLOAD", "last_activity must be RFC 3339")
			return
		}
		update.LastActivity = &at
	}
	if app := dataString(msg, "current_app"); app != "" {
		update.CurrentApp = &app
	}
	if window := dataString(msg, "current_window"); window != "" {
		update.CurrentWindow = &window
	}

	status, err := g.presence.SetStatus(ctx, client.UserID, update)
	if err != nil {
		g.sendError(client, "UPDATE_FAILED", err.Error())
		return
	}

	g.hub.SendToClient(client, NewMessage(MsgStatusUpdated, map[string]interface{}{
		"status": string(status.CurrentStatus),
	}))
	g.broadcastStatusChange(status)
}

func (g *Gateway) handleGetActiveUsers(ctx context.Context, client *Client) {
	users, err := g.presence.ListActive(ctx)
	if err != nil {
		g.sendError(client, "LIST_FAILED", err.Error())
		return
	}

	entries := make([]interface{}, 0, len(users))
	for _, u := range users {
		entries = append(entries, map[string]interface{}{
			"user_id":        u.UserID,
			"current_status": string(u.CurrentStatus),
			"last_activity":  u.LastActivity,
			"current_app":    u.CurrentApp,
			"current_window": u.CurrentWindow,
			"username":       u.User.Username,
			"display_name":   u.User.DisplayName,
		})
	}

	g.hub.SendToClient(client, NewMessage(MsgActiveUsers, map[string]interface{}{
		"users": entries,
	}))
}

func (g *Gateway) handleSubscribeToUser(client *Client, msg *Message) {
	if client.UserID == "" {
		g.sendError(client, "NOT_AUTHENTICATED", "authenticate before subscribing")
		return
	}

	targetID := dataString(msg, "user_id")
	if targetID == "" {
		g.sendError(client, "MISSING_USER_ID", "user_id is required")
		return
	}

	g.hub.Subscribe(client, subscriberChannel(targetID))
	g.hub.SendToClient(client, NewMessage(MsgSubscribed, map[string]interface{}{
		"user_id": targetID,
	}))
}

// HandleDisconnect tears a client down. An authenticated client is marked
// OFFLINE and the change is broadcast exactly once.
func (g *Gateway) HandleDisconnect(client *Client) {
	g.hub.Unregister(client)
	metrics.WebSocketConnections.Dec()

	userID, last := g.registry.Unbind(client.ID)
	if userID == "" {
		return
	}

	status, err := g.presence.SetStatus(context.Background(), userID, services.PresenceUpdate{
		Status: models.StateOffline,
	})
	if err != nil {
		g.logger.Error("failed to mark user offline",
			zap.String("user_id", userID), zap.Error(err))
		return
	}
	g.broadcastStatusChange(status)

	g.logger.Info("websocket client disconnected",
		zap.String("conn_id", client.ID),
		zap.String("user_id", userID),
		zap.Bool("last_connection", last))
}

// broadcastStatusChange pushes a presence change to every connected
// client, the affected user's own sockets included.
func (g *Gateway) broadcastStatusChange(status *models.PresenceStatus) {
	msg := NewMessage(MsgUserStatusChanged, map[string]interface{}{
		"user_id":        status.UserID,
		"current_status": string(status.CurrentStatus),
		"last_activity":  status.LastActivity,
		"current_app":    status.CurrentApp,
		"current_window": status.CurrentWindow,
	})
	g.hub.Broadcast(msg)
	metrics.BroadcastsSent.WithLabelValues(MsgUserStatusChanged).Inc()
}

func (g *Gateway) sendError(client *Client, code, message string) {
	g.hub.SendToClient(client, NewMessage(MsgError, map[string]interface{}{
		"code":    code,
		"message": message,
	}))
}

// sendAuthError mirrors sendError under the dedicated auth_error event so
// clients can distinguish a failed handshake from operational errors.
func (g *Gateway) sendAuthError(client *Client, code, message string) {
	g.hub.SendToClient(client, NewMessage(MsgAuthError, map[string]interface{}{
		"code":    code,
		"message": message,
	}))
}
