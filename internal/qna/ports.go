package qna

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QuestionStore persists question documents. Absent documents surface as
// ErrNotFound; unacknowledged writes as ErrWriteNotAcknowledged.
type QuestionStore interface {
	Insert(ctx context.Context, question Question) (Question, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (Question, error)
	List(ctx context.Context, filter QuestionFilter, limit int64) ([]Question, error)
	Update(ctx context.Context, id primitive.ObjectID, update QuestionUpdate, updatedAt time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// AnswerStore persists answer documents.
type AnswerStore interface {
	Insert(ctx context.Context, answer Answer) (Answer, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (Answer, error)
	ListByQuestion(ctx context.Context, questionID primitive.ObjectID) ([]Answer, error)
	Update(ctx context.Context, id primitive.ObjectID, update AnswerUpdate, updatedAt time.Time) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// DeleteByQuestion removes every answer referencing the question and
	// returns the number removed. Zero removals is a success.
	DeleteByQuestion(ctx context.Context, questionID primitive.ObjectID) (int64, error)
}

// VoteStore is the append-only vote ledger. Append never mutates existing
// events; Tally aggregates all events for one target, returning a zero tally
// when none exist.
type VoteStore interface {
	Append(ctx context.Context, event VoteEvent) error
	Tally(ctx context.Context, kind TargetKind, targetID primitive.ObjectID) (VoteTally, error)
}
