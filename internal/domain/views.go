package domain

import "time"

// AuthorQuestion is the authoring view of a question and includes the answer key.
type AuthorQuestion struct {
	QuestionID   string         `json:"questionId"`
	QuizID       string         `json:"belongsToQuiz"`
	QuestionText string         `json:"questionText"`
	QuestionType QuestionType   `json:"questionType"`
	Choices      []AuthorChoice `json:"availableChoices"`
	CreatedAt    time.Time      `json:"createdTimestamp"`
	UpdatedAt    time.Time      `json:"lastModified"`
}

type AuthorChoice struct {
	ChoiceID      string `json:"choiceId"`
	ChoiceText    string `json:"choiceText"`
	IsValidAnswer bool   `json:"isValidAnswer"`
}

// ParticipantQuestion is what quiz takers see. It has no place to carry the answer key.
type ParticipantQuestion struct {
	QuestionID   string              `json:"questionId"`
	QuestionText string              `json:"questionText"`
	QuestionType QuestionType        `json:"questionType"`
	Choices      []ParticipantChoice `json:"availableChoices"`
}

type ParticipantChoice struct {
	ChoiceID   string `json:"choiceId"`
	ChoiceText string `json:"choiceText"`
}

// ToAuthorView projects a question for its author.
func ToAuthorView(q Question) AuthorQuestion {
	choices := make([]AuthorChoice, 0, len(q.Choices))
	for _, c := range q.Choices {
		choices = append(choices, AuthorChoice{ChoiceID: c.ID, ChoiceText: c.Text, IsValidAnswer: c.IsValidAnswer})
	}
	return AuthorQuestion{
		QuestionID:   q.ID,
		QuizID:       q.QuizID,
		QuestionText: q.Text,
		QuestionType: q.Type,
		Choices:      choices,
		CreatedAt:    q.CreatedAt,
		UpdatedAt:    q.UpdatedAt,
	}
}

// ToParticipantView strips everything a participant must not see.
func ToParticipantView(q Question) ParticipantQuestion {
	choices := make([]ParticipantChoice, 0, len(q.Choices))
	for _, c := range q.Choices {
		choices = append(choices, ParticipantChoice{ChoiceID: c.ID, ChoiceText: c.Text})
	}
	return ParticipantQuestion{
		QuestionID:   q.ID,
		QuestionText: q.Text,
		QuestionType: q.Type,
		Choices:      choices,
	}
}

// ToParticipantViews projects a question list, keeping order.
func ToParticipantViews(questions []Question) []ParticipantQuestion {
	views := make([]ParticipantQuestion, 0, len(questions))
	for _, q := range questions {
		views = append(views, ToParticipantView(q))
	}
	return views
}

// CloneParticipantViews deep-copies views so callers never share choice slices.
func CloneParticipantViews(views []ParticipantQuestion) []ParticipantQuestion {
	if views == nil {
		return nil
	}
	out := make([]ParticipantQuestion, len(views))
	for i, v := range views {
		if v.Choices != nil {
			choices := make([]ParticipantChoice, len(v.Choices))
			copy(choices, v.Choices)
			v.Choices = choices
		}
		out[i] = v
	}
	return out
}
