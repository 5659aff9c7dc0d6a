package domain

import (
	"math"
	"regexp"
	"strings"
)

var phonePattern = regexp.MustCompile(`^05[0-9]{8}$`)

// ValidateGameDraft checks shape and counts and fills the default duration.
// The returned draft has trimmed names.
func ValidateGameDraft(draft GameDraft) (GameDraft, error) {
	draft.Name = strings.TrimSpace(draft.Name)
	if draft.Name == "" {
		return draft, invalid("name", "must not be empty")
	}

	switch {
	case draft.QuestionDurationSeconds == 0:
		draft.QuestionDurationSeconds = DefaultQuestionDuration
	case draft.QuestionDurationSeconds < MinQuestionDuration || draft.QuestionDurationSeconds > MaxQuestionDuration:
		return draft, invalid("questionDurationSeconds", "must be between %d and %d", MinQuestionDuration, MaxQuestionDuration)
	}

	if n := len(draft.Questions); n < MinQuestions || n > MaxQuestions {
		return draft, invalid("questions", "expected %d to %d questions, got %d", MinQuestions, MaxQuestions, n)
	}
	for i, q := range draft.Questions {
		if err := validateQuestionDraft(i, q); err != nil {
			return draft, err
		}
	}
	return draft, nil
}

func validateQuestionDraft(i int, q QuestionDraft) error {
	if strings.TrimSpace(q.Text) == "" {
		return invalid("questions", "question %d has no text", i+1)
	}
	if n := len(q.Options); n < MinOptions || n > MaxOptions {
		return invalid("questions", "question %d must have %d to %d options, got %d", i+1, MinOptions, MaxOptions, n)
	}
	for j, opt := range q.Options {
		if strings.TrimSpace(opt.Text) == "" && opt.Image == "" {
			return invalid("questions", "question %d option %d is empty", i+1, j+1)
		}
	}
	if q.CorrectAnswer < 0 || q.CorrectAnswer >= len(q.Options) {
		return invalid("questions", "question %d correct answer %d out of range", i+1, q.CorrectAnswer)
	}
	return nil
}

// ValidatePlayer checks a registration triple and returns the trimmed name.
func ValidatePlayer(name, phone, gameID string) (string, error) {
	name = NormalizeName(name)
	if name == "" {
		return name, invalid("name", "must not be empty")
	}
	if !phonePattern.MatchString(phone) {
		return name, invalid("phone", "must be 10 digits starting with 05")
	}
	if gameID == "" {
		return name, invalid("gameId", "must not be empty")
	}
	return name, nil
}

// ValidateSubmission checks an answer against the question it refers to.
func ValidateSubmission(sub AnswerSubmission, q Question) error {
	if sub.SelectedAnswer != NoAnswer && (sub.SelectedAnswer < 0 || sub.SelectedAnswer >= len(q.Options)) {
		return invalid("selectedAnswer", "must be -1 or an option index below %d", len(q.Options))
	}
	if sub.SelectedAnswer == NoAnswer && sub.IsCorrect {
		return invalid("isCorrect", "an unanswered question cannot be correct")
	}
	if math.IsNaN(sub.TimeSpent) || math.IsInf(sub.TimeSpent, 0) || sub.TimeSpent < 0 {
		return invalid("timeSpent", "must be a non-negative number of seconds")
	}
	return nil
}

// NormalizeName is the form a player name is stored and looked up under.
func NormalizeName(name string) string {
	return strings.TrimSpace(name)
}

// NormalizeCode upper-cases and trims a join code typed by a player.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
