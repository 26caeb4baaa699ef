package domain

// Answer is the normalized content of a response. Exactly one of
// SingleSelectAnswer, MultiSelectAnswer or TextAnswer.
type Answer interface {
	isAnswer()
}

type SingleSelectAnswer struct {
	ChoiceID string
}

type MultiSelectAnswer struct {
	ChoiceIDs []string
}

type TextAnswer struct {
	Text string
}

func (SingleSelectAnswer) isAnswer() {}
func (MultiSelectAnswer) isAnswer()  {}
func (TextAnswer) isAnswer()         {}

// Response is a normalized answer to one question.
type Response struct {
	QuestionID string
	Answer     Answer
}

// RawResponse carries both the current field names and the legacy ones clients still send.
// Canonical fields always win over legacy ones; values are never merged.
type RawResponse struct {
	TargetQuestionID  string   `json:"targetQuestionId,omitempty"`
	SelectedChoiceID  string   `json:"selectedChoiceId,omitempty"`
	SelectedChoiceIDs []string `json:"selectedChoiceIds,omitempty"`
	OpenTextResponse  string   `json:"openTextResponse,omitempty"`

	QuestionID        string   `json:"questionId,omitempty"`
	SelectedOptionID  string   `json:"selectedOptionId,omitempty"`
	SelectedOptionIDs []string `json:"selectedOptionIds,omitempty"`
	TextAnswer        string   `json:"textAnswer,omitempty"`
}

// TargetID resolves the question the response is meant for.
func (r RawResponse) TargetID() string {
	if r.TargetQuestionID != "" {
		return r.TargetQuestionID
	}
	return r.QuestionID
}

// HasAnswerData reports whether any answer field is set, under either naming.
func (r RawResponse) HasAnswerData() bool {
	return r.SelectedChoiceID != "" || r.SelectedOptionID != "" ||
		r.SelectedChoiceIDs != nil || r.SelectedOptionIDs != nil ||
		r.OpenTextResponse != "" || r.TextAnswer != ""
}

// Text returns the free-text answer, preferring the canonical field.
func (r RawResponse) Text() string {
	if r.OpenTextResponse != "" {
		return r.OpenTextResponse
	}
	return r.TextAnswer
}

// Normalize resolves the response into the answer variant matching the question type.
func (r RawResponse) Normalize(t QuestionType) Response {
	resp := Response{QuestionID: r.TargetID()}
	switch t {
	case SingleSelect:
		id := r.SelectedChoiceID
		if id == "" {
			id = r.SelectedOptionID
		}
		resp.Answer = SingleSelectAnswer{ChoiceID: id}
	case MultiSelect:
		ids := r.SelectedChoiceIDs
		if ids == nil {
			ids = r.SelectedOptionIDs
		}
		resp.Answer = MultiSelectAnswer{ChoiceIDs: append([]string(nil), ids...)}
	case OpenText:
		resp.Answer = TextAnswer{Text: r.Text()}
	}
	return resp
}

// Provided lists what the participant submitted: choice ids, or the literal text.
func Provided(a Answer) []string {
	switch v := a.(type) {
	case SingleSelectAnswer:
		if v.ChoiceID != "" {
			return []string{v.ChoiceID}
		}
	case MultiSelectAnswer:
		return append([]string{}, v.ChoiceIDs...)
	case TextAnswer:
		if v.Text != "" {
			return []string{v.Text}
		}
	}
	return []string{}
}
