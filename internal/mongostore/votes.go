package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"qna/internal/qna"
)

const (
	questionVotesCollection = "question_votes"
	answerVotesCollection   = "answer_votes"
)

// Votes implements qna.VoteStore over the per-kind vote collections. Rows
// are append-only; tallies are derived with a $match + $group pipeline on
// every read.
type Votes struct {
	questionVotes *mongo.Collection
	answerVotes   *mongo.Collection
}

// NewVotes binds the vote ledger to the database.
func NewVotes(db *mongo.Database) *Votes {
	return &Votes{
		questionVotes: db.Collection(questionVotesCollection),
		answerVotes:   db.Collection(answerVotesCollection),
	}
}

func (s *Votes) Append(ctx context.Context, event qna.VoteEvent) error {
	collection, field, err := s.target(event.Kind)
	if err != nil {
		return err
	}

	result, err := collection.InsertOne(ctx, bson.M{
		field:        event.TargetID,
		"vote":       event.Value,
		"created_at": event.CreatedAt,
		"updated_at": event.UpdatedAt,
	})
	if err != nil {
		return err
	}
	if _, ok := result.InsertedID.(primitive.ObjectID); !ok {
		return qna.ErrWriteNotAcknowledged
	}
	return nil
}

func (s *Votes) Tally(ctx context.Context, kind qna.TargetKind, targetID primitive.ObjectID) (qna.VoteTally, error) {
	collection, field, err := s.target(kind)
	if err != nil {
		return qna.VoteTally{}, err
	}

	cursor, err := collection.Aggregate(ctx, tallyPipeline(field, targetID))
	if err != nil {
		return qna.VoteTally{}, err
	}

	var groups []struct {
		TotalUpvotes   int64 `bson:"total_upvotes"`
		TotalDownvotes int64 `bson:"total_downvotes"`
	}
	if err := cursor.All(ctx, &groups); err != nil {
		return qna.VoteTally{}, err
	}

	// No rows for the target means a zero tally, not an error.
	if len(groups) == 0 {
		return qna.VoteTally{}, nil
	}
	return qna.VoteTally{
		Upvotes:   groups[0].TotalUpvotes,
		Downvotes: groups[0].TotalDownvotes,
	}, nil
}

func (s *Votes) target(kind qna.TargetKind) (*mongo.Collection, string, error) {
	switch kind {
	case qna.KindQuestion:
		return s.questionVotes, "question_id", nil
	case qna.KindAnswer:
		return s.answerVotes, "answer_id", nil
	default:
		return nil, "", fmt.Errorf("unknown vote target kind %q", kind)
	}
}

// tallyPipeline groups all events for one target and counts +1 and -1
// values into separate sums.
func tallyPipeline(field string, targetID primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{field: targetID}}},
		{{Key: "$group", Value: bson.M{
			"_id": "$" + field,
			"total_upvotes": bson.M{
				"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$vote", qna.VoteUp}}, 1, 0}},
			},
			"total_downvotes": bson.M{
				"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$vote", qna.VoteDown}}, 1, 0}},
			},
		}}},
	}
}
