package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

type wsEnvelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func readWS(t *testing.T, conn *websocket.Conn) wsEnvelope {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg wsEnvelope
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read ws: %v", err)
	}
	return msg
}

func TestWSQuestionsAndSubmit(t *testing.T) {
	server := newTestServer(t)
	quizID := createQuiz(t, server)
	q := attachQuestion(t, server, quizID, map[string]any{
		"text": "Which keyword starts a goroutine?",
		"type": "single_select",
		"choices": []map[string]any{
			{"choiceText": "go", "isValidAnswer": true},
			{"choiceText": "spawn", "isValidAnswer": false},
		},
	})

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?quizId=" + quizID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	first := readWS(t, conn)
	if first.Type != "questions" {
		t.Fatalf("expected questions message, got %q", first.Type)
	}
	if strings.Contains(string(first.Payload), "isValidAnswer") {
		t.Fatalf("questions payload leaked answers: %s", first.Payload)
	}

	submit := map[string]any{
		"type": "submit",
		"payload": []map[string]any{
			{"targetQuestionId": q.QuestionID, "selectedChoiceId": q.Choices[0].ChoiceID},
		},
	}
	if err := conn.WriteJSON(submit); err != nil {
		t.Fatalf("write submit: %v", err)
	}
	reply := readWS(t, conn)
	if reply.Type != "result" {
		t.Fatalf("expected result, got %q %s", reply.Type, reply.Payload)
	}
	var result struct {
		FinalScore      int `json:"finalScore"`
		ScorePercentage int `json:"scorePercentage"`
	}
	if err := json.Unmarshal(reply.Payload, &result); err != nil {
		t.Fatalf("decode result: %v", err)
	}
	if result.FinalScore != 1 || result.ScorePercentage != 100 {
		t.Fatalf("unexpected result %+v", result)
	}

	if err := conn.WriteJSON(map[string]any{"type": "dance"}); err != nil {
		t.Fatalf("write unknown: %v", err)
	}
	if reply := readWS(t, conn); reply.Type != "error" {
		t.Fatalf("expected error for unknown type, got %q", reply.Type)
	}

	if err := conn.WriteJSON(map[string]any{"type": "submit", "payload": []any{}}); err != nil {
		t.Fatalf("write empty submit: %v", err)
	}
	if reply := readWS(t, conn); reply.Type != "error" {
		t.Fatalf("expected error for empty submission, got %q", reply.Type)
	}
}

func TestWSRejectsUnknownQuizBeforeUpgrade(t *testing.T) {
	server := newTestServer(t)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?quizId=missing"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatalf("expected handshake failure")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 handshake response, got %+v", resp)
	}

	wsURL = "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"
	_, resp, err = websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil || resp == nil || resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without quizId, got %v", err)
	}
}

func TestWSSubmitAppliesSubmissionRules(t *testing.T) {
	server := newTestServer(t)
	quizID := createQuiz(t, server)
	q := attachQuestion(t, server, quizID, map[string]any{
		"text": "Explain what a channel is",
		"type": "open_text",
		"choices": []map[string]any{
			{"choiceText": "communicate", "isValidAnswer": true},
			{"choiceText": "goroutines", "isValidAnswer": true},
		},
	})

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws?quizId=" + quizID
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if first := readWS(t, conn); first.Type != "questions" {
		t.Fatalf("expected questions message, got %q", first.Type)
	}

	cases := []struct {
		name    string
		payload any
		reason  string
	}{
		{
			name: "text answer too long",
			payload: []map[string]any{
				{"targetQuestionId": q.QuestionID, "openTextResponse": "communicate " + strings.Repeat("x", 400)},
			},
			reason: "maximum 300 characters",
		},
		{
			name: "response without question id",
			payload: map[string]any{"responses": []map[string]any{
				{"targetQuestionId": q.QuestionID, "openTextResponse": "they communicate"},
				{"selectedChoiceId": "nothing"},
			}},
			reason: "valid questionId",
		},
		{
			name: "response without answer data",
			payload: []map[string]any{
				{"targetQuestionId": q.QuestionID},
			},
			reason: "valid answer data",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := conn.WriteJSON(map[string]any{"type": "submit", "payload": tc.payload}); err != nil {
				t.Fatalf("write submit: %v", err)
			}
			reply := readWS(t, conn)
			if reply.Type != "error" {
				t.Fatalf("expected error, got %q %s", reply.Type, reply.Payload)
			}
			if !strings.Contains(string(reply.Payload), tc.reason) {
				t.Fatalf("expected reason %q, got %s", tc.reason, reply.Payload)
			}
		})
	}
}
