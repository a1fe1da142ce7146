package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/ssaritan18/clubchat/internal/domain"
	"github.com/ssaritan18/clubchat/internal/service"
)

type Handler struct {
	userSrv  *service.UserService
	chatSrv  *service.ChatService
	msgSrv   *service.MessageService
	realtime *service.RealtimeService

	jwtSecret string
	upgrader  *websocket.Upgrader
}

func NewHandler(
	userSrv *service.UserService,
	chatSrv *service.ChatService,
	msgSrv *service.MessageService,
	realtime *service.RealtimeService,
	jwtSecret string,
) *Handler {
	return &Handler{
		userSrv:   userSrv,
		chatSrv:   chatSrv,
		msgSrv:    msgSrv,
		realtime:  realtime,
		jwtSecret: jwtSecret,
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferPool: &sync.Pool{},
		},
	}
}

// auth

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in RegisterJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		handleError(w, domain.ErrInvalidRequest)
		return
	}

	user, err := h.userSrv.Register(r.Context(), in.Name, in.Email, in.Password)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, 201, &RegisteredResponse{
		UserID:  user.ID,
		Message: "Registered",
	})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in LoginJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		handleError(w, domain.ErrInvalidRequest)
		return
	}

	token, err := h.userSrv.Login(r.Context(), in.Email, in.Password)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, 200, &LoginResponse{
		AccessToken: token,
		TokenType:   "bearer",
	})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		handleError(w, domain.ErrAuthMissing)
		return
	}

	user, stats, err := h.userSrv.Me(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, 200, &MeResponse{
		User:  user,
		Today: stats,
	})
}

func (h *Handler) handleFindUser(w http.ResponseWriter, r *http.Request) {
	result, err := h.userSrv.FindUser(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, 200, &FoundUserResponse{
		User:      result.User,
		Ambiguous: result.Ambiguous,
	})
}

// friends

func (h *Handler) handleFriendRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		handleError(w, domain.ErrAuthMissing)
		return
	}

	var in FriendRequestJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		handleError(w, domain.ErrInvalidRequest)
		return
	}

	req, err := h.userSrv.CreateFriendRequest(r.Context(), userID, in.ToEmail)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, 201, req)
}

func (h *Handler) handleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		handleError(w, domain.ErrAuthMissing)
		return
	}

	var in AcceptRequestJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		handleError(w, domain.ErrInvalidRequest)
		return
	}

	chatID, err := h.userSrv.AcceptFriendRequest(r.Context(), userID, in.RequestID)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, 200, &AcceptedResponse{
		Accepted: true,
		ChatID:   chatID,
	})
}

func (h *Handler) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		handleError(w, domain.ErrAuthMissing)
		return
	}

	var in RejectRequestJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		handleError(w, domain.ErrInvalidRequest)
		return
	}

	if err := h.userSrv.RejectFriendRequest(r.Context(), userID, in.RequestID); err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, 200, &RejectedResponse{Rejected: true})
}

func (h *Handler) handleListFriends(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		handleError(w, domain.ErrAuthMissing)
		return
	}

	friends, err := h.userSrv.ListFriends(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	if friends == nil {
		friends = []domain.User{}
	}

	writeJSON(w, 200, &FriendsResponse{Friends: friends})
}

func (h *Handler) handleListRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		handleError(w, domain.ErrAuthMissing)
		return
	}

	requests, err := h.userSrv.ListIncomingRequests(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	if requests == nil {
		requests = []domain.FriendRequest{}
	}

	writeJSON(w, 200, &RequestsResponse{Requests: requests})
}

// chats

func (h *Handler) handleNewGroup(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		handleError(w, domain.ErrAuthMissing)
		return
	}

	var in NewGroupJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		handleError(w, domain.ErrInvalidRequest)
		return
	}

	chat, err := h.chatSrv.CreateGroup(r.Context(), userID, in.Title)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, 201, chat)
}

func (h *Handler) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		handleError(w, domain.ErrAuthMissing)
		return
	}

	var in JoinGroupJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		handleError(w, domain.ErrInvalidRequest)
		return
	}

	chat, err := h.chatSrv.JoinByInvite(r.Context(), userID, in.Code)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, 200, chat)
}

func (h *Handler) handleOpenDirect(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		handleError(w, domain.ErrAuthMissing)
		return
	}

	friendID := r.PathValue("friend_id")
	if friendID == "" {
		handleError(w, domain.ErrInvalidRequest)
		return
	}

	chat, err := h.chatSrv.OpenDirect(r.Context(), userID, friendID)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, 200, chat)
}

func (h *Handler) handleListChats(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		handleError(w, domain.ErrAuthMissing)
		return
	}

	chats, err := h.chatSrv.ListChats(r.Context(), userID)
	if err != nil {
		handleError(w, err)
		return
	}
	if chats == nil {
		chats = []domain.Chat{}
	}

	writeJSON(w, 200, &ChatsResponse{Chats: chats})
}

// messages

func (h *Handler) handleListMessages(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		handleError(w, domain.ErrAuthMissing)
		return
	}

	chatID := r.PathValue("chat_id")

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			handleError(w, domain.ErrInvalidRequest)
			return
		}
	}

	messages, err := h.msgSrv.ListMessages(r.Context(), userID, chatID, limit)
	if err != nil {
		handleError(w, err)
		return
	}
	if messages == nil {
		messages = []domain.Message{}
	}

	writeJSON(w, 200, &MessagesResponse{Messages: messages})
}

func (h *Handler) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		handleError(w, domain.ErrAuthMissing)
		return
	}

	chatID := r.PathValue("chat_id")

	var in SendMessageJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		handleError(w, domain.ErrInvalidRequest)
		return
	}
	if in.Type == "" {
		in.Type = domain.MessageText
	}

	msg, err := h.msgSrv.AppendMessage(r.Context(), userID, chatID, &service.SendMessageInput{
		Type:       in.Type,
		Text:       in.Text,
		VoiceURL:   in.VoiceURL,
		DurationMs: in.DurationMs,
		MediaURL:   in.MediaURL,
	})
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, 200, msg)
}

func (h *Handler) handleReact(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		handleError(w, domain.ErrAuthMissing)
		return
	}

	chatID := r.PathValue("chat_id")
	messageID := r.PathValue("message_id")

	var in ReactJSON
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		handleError(w, domain.ErrInvalidRequest)
		return
	}

	reacted, counters, err := h.msgSrv.ReactToMessage(r.Context(), userID, chatID, messageID, in.Type)
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, 200, &ReactedResponse{
		Reacted:   reacted,
		Type:      in.Type,
		Reactions: counters,
	})
}
