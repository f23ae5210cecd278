package qna

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetKind identifies which entity a vote or lookup refers to.
type TargetKind string

const (
	// KindQuestion targets a document in the questions collection.
	KindQuestion TargetKind = "question"
	// KindAnswer targets a document in the answers collection.
	KindAnswer TargetKind = "answer"
)

const (
	// VoteUp is the recorded value of an upvote event.
	VoteUp = 1
	// VoteDown is the recorded value of a downvote event.
	VoteDown = -1
)

// DefaultListLimit bounds unpaginated list queries.
const DefaultListLimit = int64(10)

var (
	// ErrInvalidID indicates that an identifier string is not a valid 24-hex object id.
	ErrInvalidID = errors.New("qna: invalid object id")
	// ErrNotFound indicates that a well-formed identifier matched no document.
	ErrNotFound = errors.New("qna: not found")
	// ErrInvalidVote indicates a vote value outside {+1, -1}.
	ErrInvalidVote = errors.New("qna: vote value must be +1 or -1")
	// ErrWriteNotAcknowledged indicates the store did not acknowledge a write.
	ErrWriteNotAcknowledged = errors.New("qna: write not acknowledged")
)

// ParseID converts a client-supplied identifier into a store object id.
// Malformed input fails with ErrInvalidID, distinct from ErrNotFound.
func ParseID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, raw)
	}
	return id, nil
}

// Question is the persisted question document.
type Question struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title,omitempty"`
	Description string             `bson:"description,omitempty"`
	Category    string             `bson:"category,omitempty"`
	CreatedAt   time.Time          `bson:"created_at,omitempty"`
	UpdatedAt   time.Time          `bson:"updated_at,omitempty"`
}

// Answer is the persisted answer document. QuestionID must reference an
// existing question at creation time.
type Answer struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	QuestionID primitive.ObjectID `bson:"question_id,omitempty"`
	Content    string             `bson:"content,omitempty"`
	CreatedAt  time.Time          `bson:"created_at,omitempty"`
	UpdatedAt  time.Time          `bson:"updated_at,omitempty"`
}

// VoteEvent is one immutable row in the vote ledger. Events are never
// updated or deleted; tallies are always derived by aggregation.
type VoteEvent struct {
	ID        primitive.ObjectID
	Kind      TargetKind
	TargetID  primitive.ObjectID
	Value     int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VoteTally is the derived upvote/downvote pair for one target.
type VoteTally struct {
	Upvotes   int64
	Downvotes int64
}

// QuestionInput carries the allow-listed fields accepted when creating a
// question. Unknown request fields are never merged into documents.
type QuestionInput struct {
	Title       string
	Description string
	Category    string
}

// QuestionUpdate carries the optional fields of a partial question update.
// Nil fields are left untouched.
type QuestionUpdate struct {
	Title       *string
	Description *string
	Category    *string
}

// AnswerInput carries the allow-listed fields accepted when creating an answer.
type AnswerInput struct {
	Content string
}

// AnswerUpdate carries the optional fields of a partial answer update.
type AnswerUpdate struct {
	Content *string
}

// QuestionFilter selects questions whose title or category contains the
// supplied substrings, case-insensitively. Supplied fields combine with OR;
// an empty filter matches everything.
type QuestionFilter struct {
	Title    string
	Category string
}

// IsZero reports whether no filter fields were supplied.
func (f QuestionFilter) IsZero() bool {
	return f.Title == "" && f.Category == ""
}
