package server

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ahvonen/notesmith/internal/engine"
	"github.com/ahvonen/notesmith/internal/llm"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsRequest is the incoming WebSocket message format.
type wsRequest struct {
	Type      string `json:"type"`       // "ask" or "message"
	SessionID string `json:"session_id"` // empty for new sessions
	Content   string `json:"content"`
	TopK      int    `json:"top_k,omitempty"`
}

// wsResponse is the outgoing WebSocket message format.
type wsResponse struct {
	Type      string          `json:"type"` // "response" or "error"
	SessionID string          `json:"session_id"`
	Content   string          `json:"content"`
	Sources   []engine.Source `json:"sources,omitempty"`
}

// handleWebSocket runs a chat conversation over a WebSocket. "ask" answers
// a standalone question; "message" continues the connection's session with
// prior turns as context. History lives for the life of the connection.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	sessions := make(map[string][]llm.Message)

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Warn().Err(err).Msg("websocket read failed")
			}
			return
		}

		var req wsRequest
		if err := json.Unmarshal(msg, &req); err != nil {
			s.sendWSError(conn, "", "invalid message format")
			continue
		}
		if req.Content == "" {
			s.sendWSError(conn, req.SessionID, "content is required")
			continue
		}

		switch req.Type {
		case "ask":
			answer, err := s.engine.Answer(r.Context(), req.Content, req.TopK)
			if err != nil {
				s.sendWSError(conn, req.SessionID, err.Error())
				continue
			}
			s.sendWSResponse(conn, wsResponse{
				Type:      "response",
				SessionID: req.SessionID,
				Content:   answer.Content,
				Sources:   answer.Sources,
			})

		case "message":
			sessionID := req.SessionID
			if sessionID == "" {
				sessionID = uuid.NewString()
			}
			history := append(sessions[sessionID], llm.Message{Role: llm.RoleUser, Content: req.Content})

			answer, err := s.engine.Chat(r.Context(), history, req.TopK)
			if err != nil {
				s.sendWSError(conn, sessionID, err.Error())
				continue
			}
			sessions[sessionID] = append(history, llm.Message{Role: llm.RoleAssistant, Content: answer.Content})

			s.sendWSResponse(conn, wsResponse{
				Type:      "response",
				SessionID: sessionID,
				Content:   answer.Content,
				Sources:   answer.Sources,
			})

		default:
			s.sendWSError(conn, req.SessionID, "unknown message type: "+req.Type)
		}
	}
}

func (s *Server) sendWSResponse(conn *websocket.Conn, resp wsResponse) {
	if err := conn.WriteJSON(resp); err != nil {
		s.log.Warn().Err(err).Msg("websocket write failed")
	}
}

func (s *Server) sendWSError(conn *websocket.Conn, sessionID, message string) {
	s.sendWSResponse(conn, wsResponse{
		Type:      "error",
		SessionID: sessionID,
		Content:   message,
	})
}
