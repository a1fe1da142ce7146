package service

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
	"github.com/ssaritan18/clubchat/internal/domain"
	"golang.org/x/sync/errgroup"
)

const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// RealtimeService owns the lifecycle of an attached connection: the
// presence handshake, the read/write pumps and deregistration.
type RealtimeService struct {
	presence *PresenceService
}

func NewRealtimeService(presence *PresenceService) *RealtimeService {
	return &RealtimeService{
		presence: presence,
	}
}

func (rs *RealtimeService) HandleConn(ctx context.Context, client *Client) {
	// snapshot goes into the queue before the client is discoverable,
	// so it is the first frame on every new connection; without it the
	// peer has no baseline, so the connection is useless
	if err := rs.presence.SendSnapshot(ctx, client); err != nil {
		slog.Error("Failed to send presence snapshot", "user_id", client.userID, "error", err)
		client.shutdown()
		return
	}

	rs.presence.Attach(ctx, client)

	defer func() {
		rs.presence.Detach(context.WithoutCancel(ctx), client)
		client.shutdown()
	}()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return rs.read(ctx, client)
	})

	g.Go(func() error {
		return rs.write(ctx, client)
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		slog.Debug("Connection closed", "user_id", client.userID, "error", err)
	}
}

var (
	pingFrame = []byte("ping")
	pongFrame = []byte("pong")
)

// read drains inbound frames. The channel only carries heartbeats;
// both the bare "ping" text frame and the typed JSON form are
// answered.
func (rs *RealtimeService) read(ctx context.Context, client *Client) error {
	client.conn.SetReadDeadline(time.Now().Add(pongWait))
	client.conn.SetPongHandler(func(string) error {
		client.conn.SetReadDeadline(time.Now().Add(pongWait))
		rs.presence.Refresh(ctx, client.userID)
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			_, data, err := client.conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err,
					websocket.CloseGoingAway,
					websocket.CloseAbnormalClosure,
					websocket.CloseNoStatusReceived) {
					slog.Error("Websocket close error", "user_id", client.userID, "error", err)
				}
				return context.Canceled
			}

			if string(data) == string(pingFrame) {
				client.Enqueue(pongFrame)
				rs.presence.Refresh(ctx, client.userID)
				continue
			}

			var frame InboundFrame
			if err := json.Unmarshal(data, &frame); err != nil {
				slog.Debug("Ignoring malformed frame", "user_id", client.userID)
				continue
			}

			switch frame.Type {
			case domain.EventPing:
				pong, _ := json.Marshal(&PongEvent{Type: domain.EventPong})
				client.Enqueue(pong)
				rs.presence.Refresh(ctx, client.userID)
			default:
				slog.Debug("Ignoring unexpected frame", "user_id", client.userID, "type", frame.Type)
			}
		}
	}
}

func (rs *RealtimeService) write(ctx context.Context, client *Client) error {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-client.done:
			return nil

		case <-ticker.C:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return err
			}

		case data := <-client.send:
			client.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.Debug("Failed to write frame", "user_id", client.userID, "error", err)
				return err
			}
		}
	}
}
