package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ssaritan18/clubchat/internal/config"
	"github.com/ssaritan18/clubchat/internal/repository"
	"github.com/ssaritan18/clubchat/internal/repository/cache"
	"github.com/ssaritan18/clubchat/internal/repository/database"
	"github.com/ssaritan18/clubchat/internal/service"
)

type Server struct {
	router *http.ServeMux
}

func NewServer(cfg *config.Config) *Server {
	s := &Server{
		router: http.NewServeMux(),
	}

	userRepo := repository.NewUserRepo(database.Client())
	chatRepo := repository.NewChatRepo(database.Client())
	msgRepo := repository.NewMessageRepo(database.Client(), cache.Client())
	presenceRepo := repository.NewPresenceRepo(cache.Client())

	hub := service.GetHub()
	router := service.NewRouter(hub, chatRepo, userRepo)
	presence := service.NewPresenceService(hub, router, userRepo, presenceRepo)
	realtime := service.NewRealtimeService(presence)

	limiter := service.NewRateLimiter(
		cfg.RateLimit.Limit,
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
	)

	tokenTTL := time.Duration(cfg.JWT.ExpiryDays) * 24 * time.Hour
	userSrv := service.NewUserService(userRepo, msgRepo, router, service.LogNotifier{}, cfg.JWT.Secret, tokenTTL)
	chatSrv := service.NewChatService(chatRepo, userRepo)
	msgSrv := service.NewMessageService(msgRepo, chatSrv, userRepo, router, limiter)

	h := NewHandler(userSrv, chatSrv, msgSrv, realtime, cfg.JWT.Secret)
	s.setupRoutes(h, cfg.JWT.Secret)

	return s
}

func (s *Server) setupRoutes(h *Handler, secret string) {
	auth := AuthMiddleware(secret)

	s.router.HandleFunc("GET /ws", h.handleWS)

	s.router.HandleFunc("POST /api/auth/register", h.handleRegister)
	s.router.HandleFunc("POST /api/auth/login", h.handleLogin)

	s.router.Handle("GET /api/me", auth(http.HandlerFunc(h.handleMe)))
	s.router.Handle("GET /api/users/find", auth(http.HandlerFunc(h.handleFindUser)))

	s.router.Handle("POST /api/friends/request", auth(http.HandlerFunc(h.handleFriendRequest)))
	s.router.Handle("POST /api/friends/accept", auth(http.HandlerFunc(h.handleAcceptRequest)))
	s.router.Handle("POST /api/friends/reject", auth(http.HandlerFunc(h.handleRejectRequest)))
	s.router.Handle("GET /api/friends/list", auth(http.HandlerFunc(h.handleListFriends)))
	s.router.Handle("GET /api/friends/requests", auth(http.HandlerFunc(h.handleListRequests)))

	s.router.Handle("POST /api/chats/group", auth(http.HandlerFunc(h.handleNewGroup)))
	s.router.Handle("POST /api/chats/join", auth(http.HandlerFunc(h.handleJoinGroup)))
	s.router.Handle("POST /api/chats/direct/{friend_id}", auth(http.HandlerFunc(h.handleOpenDirect)))
	s.router.Handle("GET /api/chats", auth(http.HandlerFunc(h.handleListChats)))
	s.router.Handle("GET /api/chats/{chat_id}/messages", auth(http.HandlerFunc(h.handleListMessages)))
	s.router.Handle("POST /api/chats/{chat_id}/messages", auth(http.HandlerFunc(h.handleSendMessage)))
	s.router.Handle("POST /api/chats/{chat_id}/messages/{message_id}/react", auth(http.HandlerFunc(h.handleReact)))
}

func (s *Server) Run(addr string) error {
	server := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Failed to start server", "error", err)
			return
		}
	}()
	slog.Info("Server is running", "addr", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit

	ctx, shutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdown()

	service.GetHub().CloseAll()

	slog.Info("Server exited")
	return server.Shutdown(ctx)
}
