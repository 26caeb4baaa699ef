package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"quizmaster-service/internal/app"
)

// WSHandler lets a participant fetch questions and submit answers over one websocket.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	rules    submissionRules
	logger   *zap.Logger
}

func NewWSHandler(service *app.QuizService, validate *validator.Validate, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		service: service,
		rules:   newSubmissionRules(validate),
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades the request, sends the participant questions, then scores each "submit" message.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	if quizID == "" {
		fail(w, http.StatusBadRequest, "missing quizId")
		return
	}
	questions, found := h.service.ParticipantQuestions(r.Context(), quizID)
	if !found {
		fail(w, http.StatusNotFound, "Quiz not located")
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})

	// single writer; gorilla connections do not support concurrent writes
	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Warn("ws write error", zap.Error(err))
				return
			}
		}
	}()

	push := func(msg outboundMessage[any]) bool {
		select {
		case send <- msg:
			return true
		case <-writerDone:
			return false
		}
	}

	push(outboundMessage[any]{Type: "questions", Payload: questions})

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var reply outboundMessage[any]
		switch inbound.Type {
		case "submit":
			reply = h.submit(r, quizID, inbound.Payload)
		case "questions":
			current, _ := h.service.ParticipantQuestions(r.Context(), quizID)
			reply = outboundMessage[any]{Type: "questions", Payload: current}
		default:
			reply = errorMessage("unsupported message type")
		}
		if !push(reply) {
			break
		}
	}

	close(send)
	<-writerDone
}

func (h *WSHandler) submit(r *http.Request, quizID string, payload json.RawMessage) outboundMessage[any] {
	responses, decoded := decodeResponses(payload)
	if !decoded {
		return errorMessage(msgSubmissionShape)
	}
	if msg := h.rules.check(responses); msg != "" {
		return errorMessage(msg)
	}
	result, found := h.service.Submit(r.Context(), quizID, responses)
	if !found {
		return errorMessage("Quiz not located or contains no questions")
	}
	return outboundMessage[any]{Type: "result", Payload: result}
}

func errorMessage(msg string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: msg}}
}
