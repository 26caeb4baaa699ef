package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"quizmaster-service/internal/app"
	"quizmaster-service/internal/domain"
)

const (
	maxBodyBytes     = 10 << 20
	maxTextAnswerLen = 300
	maxChoiceTextLen = 300

	msgSubmissionShape = "Submission must be a non-empty array of responses"
)

type createQuizRequest struct {
	Title       string  `json:"title" validate:"required,min=3,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

// choiceRequest accepts the current names (choiceText, isValidAnswer) and the legacy ones (text, isCorrect).
type choiceRequest struct {
	ChoiceText    string `json:"choiceText"`
	Text          string `json:"text"`
	IsValidAnswer *bool  `json:"isValidAnswer"`
	IsCorrect     *bool  `json:"isCorrect"`
}

type createQuestionRequest struct {
	Text    string          `json:"text" validate:"required,min=5,max=500"`
	Type    string          `json:"type" validate:"required"`
	Choices []choiceRequest `json:"choices"`
	Options []choiceRequest `json:"options"`
}

type submitRequest struct {
	Responses []domain.RawResponse `json:"responses"`
}

type quizHeader struct {
	QuizID          string  `json:"quizId"`
	QuizTitle       string  `json:"quizTitle"`
	QuizDescription *string `json:"quizDescription,omitempty"`
}

type participantQuiz struct {
	Quiz      quizHeader                   `json:"quiz"`
	Questions []domain.ParticipantQuestion `json:"questions"`
}

// submissionRules holds the wire rules every submission must pass, whatever transport carried it.
type submissionRules struct {
	validate *validator.Validate
}

func newSubmissionRules(validate *validator.Validate) submissionRules {
	if validate == nil {
		validate = validator.New()
	}
	return submissionRules{validate: validate}
}

// check returns the first violation, or "" when the submission is acceptable.
func (s submissionRules) check(responses []domain.RawResponse) string {
	if len(responses) == 0 {
		return msgSubmissionShape
	}
	for _, resp := range responses {
		if resp.TargetID() == "" {
			return "Each response must have a valid questionId"
		}
		if !resp.HasAnswerData() {
			return "Each response must have valid answer data"
		}
		if err := s.validate.Var(resp.Text(), fmt.Sprintf("max=%d", maxTextAnswerLen)); err != nil {
			return fmt.Sprintf("Text responses must be maximum %d characters", maxTextAnswerLen)
		}
	}
	return ""
}

// QuizHandler maps the REST API onto the quiz use cases.
type QuizHandler struct {
	service  *app.QuizService
	validate *validator.Validate
	rules    submissionRules
	logger   *zap.Logger
}

// NewQuizHandler builds the REST handler. A nil validate gets a fresh validator.
func NewQuizHandler(service *app.QuizService, validate *validator.Validate, logger *zap.Logger) *QuizHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	rules := newSubmissionRules(validate)
	return &QuizHandler{service: service, validate: rules.validate, rules: rules, logger: logger}
}

// Mount registers the quiz routes on r.
func (h *QuizHandler) Mount(r chi.Router) {
	r.Post("/", h.CreateQuiz)
	r.Get("/", h.ListQuizzes)
	r.Route("/{quizId}", func(r chi.Router) {
		r.Get("/", h.GetQuiz)
		r.Post("/questions", h.AttachQuestion)
		r.Get("/questions", h.ParticipantQuestions)
		r.Post("/submit", h.Submit)
	})
}

// CreateQuiz handles POST /quizzes.
func (h *QuizHandler) CreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.validationFailed(w, err)
		return
	}
	quiz := h.service.CreateQuiz(r.Context(), req.Title, req.Description)
	ok(w, http.StatusCreated, quiz, "Quiz established successfully")
}

// ListQuizzes handles GET /quizzes.
func (h *QuizHandler) ListQuizzes(w http.ResponseWriter, r *http.Request) {
	quizzes := h.service.ListQuizzes(r.Context())
	okList(w, quizzes, len(quizzes))
}

// GetQuiz handles GET /quizzes/{quizId}.
func (h *QuizHandler) GetQuiz(w http.ResponseWriter, r *http.Request) {
	quiz, found := h.service.GetQuiz(r.Context(), chi.URLParam(r, "quizId"))
	if !found {
		fail(w, http.StatusNotFound, "Quiz not located")
		return
	}
	ok(w, http.StatusOK, quiz, "")
}

// AttachQuestion handles POST /quizzes/{quizId}/questions.
func (h *QuizHandler) AttachQuestion(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizId")
	if _, found := h.service.GetQuiz(r.Context(), quizID); !found {
		fail(w, http.StatusNotFound, "Quiz not located")
		return
	}

	var req createQuestionRequest
	if !h.decode(w, r, &req) {
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.validationFailed(w, err)
		return
	}
	qType, valid := domain.ParseQuestionType(req.Type)
	if !valid {
		failValidation(w, "Valid quiz question type is required", nil)
		return
	}
	choices, msg := toChoiceInputs(req)
	if msg != "" {
		failValidation(w, msg, nil)
		return
	}

	question, found, err := h.service.AttachQuestion(r.Context(), quizID, req.Text, qType, choices)
	switch {
	case err != nil:
		failValidation(w, err.Error(), nil)
	case !found:
		fail(w, http.StatusNotFound, "Quiz not located")
	default:
		ok(w, http.StatusCreated, domain.ToAuthorView(question), "Question attached successfully")
	}
}

// ParticipantQuestions handles GET /quizzes/{quizId}/questions. The answer key is never included.
func (h *QuizHandler) ParticipantQuestions(w http.ResponseWriter, r *http.Request) {
	quizID := chi.URLParam(r, "quizId")
	quiz, found := h.service.GetQuiz(r.Context(), quizID)
	if !found {
		fail(w, http.StatusNotFound, "Quiz not located")
		return
	}
	questions, found := h.service.ParticipantQuestions(r.Context(), quizID)
	if !found {
		fail(w, http.StatusNotFound, "Quiz not located")
		return
	}
	okList(w, participantQuiz{
		Quiz: quizHeader{
			QuizID:          quiz.ID,
			QuizTitle:       quiz.Title,
			QuizDescription: quiz.Description,
		},
		Questions: questions,
	}, len(questions))
}

// Submit handles POST /quizzes/{quizId}/submit. The body is either a bare array of
// responses or an object with a "responses" array.
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var raw json.RawMessage
	if !h.decode(w, r, &raw) {
		return
	}
	responses, decoded := decodeResponses(raw)
	if !decoded {
		failValidation(w, msgSubmissionShape, nil)
		return
	}
	if msg := h.rules.check(responses); msg != "" {
		failValidation(w, msg, nil)
		return
	}

	result, found := h.service.Submit(r.Context(), chi.URLParam(r, "quizId"), responses)
	if !found {
		fail(w, http.StatusNotFound, "Quiz not located or contains no questions")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *QuizHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			failValidation(w, "Request body is required", nil)
			return false
		}
		failValidation(w, "Malformed JSON body", nil)
		return false
	}
	return true
}

func (h *QuizHandler) validationFailed(w http.ResponseWriter, err error) {
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		failValidation(w, "Invalid input", nil)
		return
	}
	fields := make(map[string]string, len(ve))
	for _, fe := range ve {
		fields[lowerFirst(fe.Field())] = fe.Tag()
	}
	first := ve[0]
	failValidation(w, fmt.Sprintf("%s failed %q validation", lowerFirst(first.Field()), first.Tag()), fields)
}

func decodeResponses(raw json.RawMessage) ([]domain.RawResponse, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []domain.RawResponse
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, false
		}
		return list, true
	}
	var req submitRequest
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return nil, false
	}
	return req.Responses, true
}

// toChoiceInputs resolves alias fields, preferring the current names.
func toChoiceInputs(req createQuestionRequest) ([]domain.ChoiceInput, string) {
	items := req.Choices
	if items == nil {
		items = req.Options
	}
	if len(items) < 2 || len(items) > 10 {
		return nil, "Question choices must be an array with 2-10 items"
	}
	out := make([]domain.ChoiceInput, 0, len(items))
	for _, c := range items {
		text := c.ChoiceText
		if text == "" {
			text = c.Text
		}
		if text == "" || len([]rune(text)) > maxChoiceTextLen {
			return nil, fmt.Sprintf("Each choice text is required and must be maximum %d characters", maxChoiceTextLen)
		}
		flag := c.IsValidAnswer
		if flag == nil {
			flag = c.IsCorrect
		}
		if flag == nil {
			return nil, "Each choice must have isCorrect boolean property"
		}
		out = append(out, domain.ChoiceInput{Text: text, IsValidAnswer: *flag})
	}
	return out, ""
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
