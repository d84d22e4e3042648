package http

import (
	"encoding/json"
	"log"
	"net/http"

	"daily-quiz-service/internal/app"
	"daily-quiz-service/internal/domain"
	"github.com/gorilla/websocket"
)

type WSHandler struct {
	quiz      *app.DailyQuizService
	progress  *app.ProgressService
	countdown *app.CountdownClock
	upgrader  websocket.Upgrader
}

func NewWSHandler(quiz *app.DailyQuizService, progress *app.ProgressService, countdown *app.CountdownClock) *WSHandler {
	return &WSHandler{
		quiz:      quiz,
		progress:  progress,
		countdown: countdown,
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

type answerPayload struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type countdownPayload struct {
	Remaining string `json:"remaining"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades HTTP requests to websockets and wires them into the daily
// quiz use cases: an initial progress snapshot, countdown ticks, and
// question/answer/reset round trips.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	deviceID := r.URL.Query().Get("deviceId")
	if deviceID == "" {
		http.Error(w, "missing deviceId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	updates, cancelUpdates := h.progress.Subscribe(r.Context(), deviceID)
	defer cancelUpdates()
	ticks, cancelTicks := h.countdown.Subscribe()
	defer cancelTicks()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})
	ticksDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "progress", Payload: update}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	go func() {
		defer close(ticksDone)
		for {
			select {
			case tick, ok := <-ticks:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "countdown", Payload: countdownPayload{Remaining: tick}}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "question":
			view, err := h.quiz.QuestionOfDay(r.Context())
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			send <- outboundMessage[any]{Type: "question", Payload: view}
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			result, _, err := h.quiz.SubmitAnswer(r.Context(), deviceID, domain.AnswerSubmission{
				QuestionID: payload.QuestionID,
				OptionID:   payload.OptionID,
			})
			if err != nil {
				send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
				continue
			}
			// The updated progress snapshot follows via the subscription.
			send <- outboundMessage[any]{Type: "answerResult", Payload: result}
		case "reset":
			h.progress.Reset(r.Context(), deviceID)
		default:
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	close(closeSignals)
	<-updatesDone
	<-ticksDone
	close(send)
	<-writerDone
}
