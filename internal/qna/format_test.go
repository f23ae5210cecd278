package qna

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestFormatQuestionMapsEveryField(t *testing.T) {
	id := primitive.NewObjectID()
	createdAt := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	updatedAt := time.Date(2024, 1, 3, 6, 7, 8, 0, time.UTC)
	question := Question{
		ID:          id,
		Title:       "How do I tune indexes?",
		Description: "Queries on the reports collection are slow.",
		Category:    "databases",
		CreatedAt:   createdAt,
		UpdatedAt:   updatedAt,
	}

	formatted := FormatQuestion(question)

	if formatted.ID != id.Hex() {
		t.Fatalf("expected id %s, got %s", id.Hex(), formatted.ID)
	}
	if formatted.Title != question.Title || formatted.Description != question.Description || formatted.Category != question.Category {
		t.Fatalf("string fields not preserved: %+v", formatted)
	}
	if formatted.CreatedAt == nil || *formatted.CreatedAt != "2024-01-02T03:04:05Z" {
		t.Fatalf("unexpected created_at: %v", formatted.CreatedAt)
	}
	if formatted.UpdatedAt == nil || *formatted.UpdatedAt != "2024-01-03T06:07:08Z" {
		t.Fatalf("unexpected updated_at: %v", formatted.UpdatedAt)
	}
}

func TestFormatQuestionDefaultsAbsentFields(t *testing.T) {
	formatted := FormatQuestion(Question{ID: primitive.NewObjectID()})

	if formatted.Title != "" || formatted.Description != "" || formatted.Category != "" {
		t.Fatalf("expected empty strings for absent fields, got %+v", formatted)
	}
	if formatted.CreatedAt != nil {
		t.Fatalf("expected nil created_at for zero time, got %q", *formatted.CreatedAt)
	}
	if formatted.UpdatedAt != nil {
		t.Fatalf("expected nil updated_at for zero time, got %q", *formatted.UpdatedAt)
	}
}

func TestFormatQuestionNormalizesTimezone(t *testing.T) {
	zone := time.FixedZone("UTC+7", 7*3600)
	question := Question{
		ID:        primitive.NewObjectID(),
		CreatedAt: time.Date(2024, 5, 1, 9, 0, 0, 0, zone),
	}

	formatted := FormatQuestion(question)

	if formatted.CreatedAt == nil || *formatted.CreatedAt != "2024-05-01T02:00:00Z" {
		t.Fatalf("expected UTC timestamp, got %v", formatted.CreatedAt)
	}
}

func TestFormatQuestionWithTallyMergesCounts(t *testing.T) {
	question := Question{ID: primitive.NewObjectID(), Title: "A"}

	voted := FormatQuestionWithTally(question, VoteTally{Upvotes: 2, Downvotes: 1})

	if voted.Upvotes != 2 || voted.Downvotes != 1 {
		t.Fatalf("unexpected tally: %+v", voted)
	}
	if voted.Title != "A" {
		t.Fatalf("entity fields should survive the merge: %+v", voted)
	}
}

func TestFormatQuestionWithTallyDefaultsToZero(t *testing.T) {
	voted := FormatQuestionWithTally(Question{ID: primitive.NewObjectID()}, VoteTally{})

	if voted.Upvotes != 0 || voted.Downvotes != 0 {
		t.Fatalf("expected zero tally, got %+v", voted)
	}
}

func TestFormatAnswerMapsQuestionReference(t *testing.T) {
	questionID := primitive.NewObjectID()
	answer := Answer{
		ID:         primitive.NewObjectID(),
		QuestionID: questionID,
		Content:    "Add a compound index.",
		CreatedAt:  time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
	}

	formatted := FormatAnswer(answer)

	if formatted.QuestionID != questionID.Hex() {
		t.Fatalf("expected question id %s, got %s", questionID.Hex(), formatted.QuestionID)
	}
	if formatted.Content != answer.Content {
		t.Fatalf("content not preserved: %+v", formatted)
	}
}

func TestFormatAnswerDefaultsMissingQuestionReference(t *testing.T) {
	formatted := FormatAnswer(Answer{ID: primitive.NewObjectID()})

	if formatted.QuestionID != "" {
		t.Fatalf("expected empty question id, got %q", formatted.QuestionID)
	}
}

func TestParseIDRejectsMalformedInput(t *testing.T) {
	for _, raw := range []string{"", "not-hex", "abc", "zzzzzzzzzzzzzzzzzzzzzzzz"} {
		if _, err := ParseID(raw); err == nil {
			t.Fatalf("expected error for %q", raw)
		}
	}
}

func TestParseIDAcceptsHexObjectID(t *testing.T) {
	id := primitive.NewObjectID()
	parsed, err := ParseID(id.Hex())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != id {
		t.Fatalf("expected %s, got %s", id.Hex(), parsed.Hex())
	}
}
