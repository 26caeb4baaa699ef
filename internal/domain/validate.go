package domain

const (
	ReasonSingleSelect = "Single selection questions require exactly one valid answer"
	ReasonMultiSelect  = "Multiple selection questions require at least one valid answer"
	ReasonOpenText     = "Open text questions support maximum 5 keyword hints"
)

// ValidateQuestion checks the choice set against the rules of its question type.
// A nil return means the question may be stored.
func ValidateQuestion(t QuestionType, choices []ChoiceInput) error {
	switch t {
	case SingleSelect:
		if countValid(choices) != 1 {
			return invalid(t, ReasonSingleSelect)
		}
	case MultiSelect:
		if countValid(choices) < 1 {
			return invalid(t, ReasonMultiSelect)
		}
	case OpenText:
		if len(choices) > MaxKeywordHints {
			return invalid(t, ReasonOpenText)
		}
	default:
		return unknownType(t)
	}
	return nil
}

func countValid(choices []ChoiceInput) int {
	n := 0
	for _, c := range choices {
		if c.IsValidAnswer {
			n++
		}
	}
	return n
}
