package qna

import "time"

// FormattedQuestion is the external question shape: hex id, ISO-8601
// timestamps (null when absent), empty strings for missing optional fields.
type FormattedQuestion struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	CreatedAt   *string `json:"created_at"`
	UpdatedAt   *string `json:"updated_at"`
}

// VotedQuestion is a formatted question merged with its vote tally.
type VotedQuestion struct {
	FormattedQuestion
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
}

// FormattedAnswer is the external answer shape.
type FormattedAnswer struct {
	ID         string  `json:"id"`
	QuestionID string  `json:"question_id"`
	Content    string  `json:"content"`
	CreatedAt  *string `json:"created_at"`
	UpdatedAt  *string `json:"updated_at"`
}

// VotedAnswer is a formatted answer merged with its vote tally.
type VotedAnswer struct {
	FormattedAnswer
	Upvotes   int64 `json:"upvotes"`
	Downvotes int64 `json:"downvotes"`
}

// FormatQuestion maps a stored question to its external shape.
func FormatQuestion(question Question) FormattedQuestion {
	return FormattedQuestion{
		ID:          question.ID.Hex(),
		Title:       question.Title,
		Description: question.Description,
		Category:    question.Category,
		CreatedAt:   isoTimestamp(question.CreatedAt),
		UpdatedAt:   isoTimestamp(question.UpdatedAt),
	}
}

// FormatQuestionWithTally maps a stored question plus its derived tally.
func FormatQuestionWithTally(question Question, tally VoteTally) VotedQuestion {
	return VotedQuestion{
		FormattedQuestion: FormatQuestion(question),
		Upvotes:           tally.Upvotes,
		Downvotes:         tally.Downvotes,
	}
}

// FormatAnswer maps a stored answer to its external shape.
func FormatAnswer(answer Answer) FormattedAnswer {
	questionID := ""
	if !answer.QuestionID.IsZero() {
		questionID = answer.QuestionID.Hex()
	}
	return FormattedAnswer{
		ID:         answer.ID.Hex(),
		QuestionID: questionID,
		Content:    answer.Content,
		CreatedAt:  isoTimestamp(answer.CreatedAt),
		UpdatedAt:  isoTimestamp(answer.UpdatedAt),
	}
}

// FormatAnswerWithTally maps a stored answer plus its derived tally.
func FormatAnswerWithTally(answer Answer, tally VoteTally) VotedAnswer {
	return VotedAnswer{
		FormattedAnswer: FormatAnswer(answer),
		Upvotes:         tally.Upvotes,
		Downvotes:       tally.Downvotes,
	}
}

func isoTimestamp(value time.Time) *string {
	if value.IsZero() {
		return nil
	}
	formatted := value.UTC().Format(time.RFC3339)
	return &formatted
}
