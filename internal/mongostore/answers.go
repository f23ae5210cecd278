package mongostore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"qna/internal/qna"
)

const answersCollection = "answers"

// Answers implements qna.AnswerStore against the answers collection.
type Answers struct {
	collection *mongo.Collection
}

// NewAnswers binds an answer store to the database.
func NewAnswers(db *mongo.Database) *Answers {
	return &Answers{collection: db.Collection(answersCollection)}
}

func (s *Answers) Insert(ctx context.Context, answer qna.Answer) (qna.Answer, error) {
	result, err := s.collection.InsertOne(ctx, answer)
	if err != nil {
		return qna.Answer{}, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return qna.Answer{}, qna.ErrWriteNotAcknowledged
	}
	answer.ID = insertedID
	return answer, nil
}

func (s *Answers) FindByID(ctx context.Context, id primitive.ObjectID) (qna.Answer, error) {
	var answer qna.Answer
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&answer)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return qna.Answer{}, qna.ErrNotFound
	}
	if err != nil {
		return qna.Answer{}, err
	}
	return answer, nil
}

func (s *Answers) ListByQuestion(ctx context.Context, questionID primitive.ObjectID) ([]qna.Answer, error) {
	cursor, err := s.collection.Find(ctx, bson.M{"question_id": questionID})
	if err != nil {
		return nil, err
	}

	answers := make([]qna.Answer, 0)
	if err := cursor.All(ctx, &answers); err != nil {
		return nil, err
	}
	return answers, nil
}

func (s *Answers) Update(ctx context.Context, id primitive.ObjectID, update qna.AnswerUpdate, updatedAt time.Time) error {
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": answerSetFields(update, updatedAt)})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return qna.ErrNotFound
	}
	return nil
}

func answerSetFields(update qna.AnswerUpdate, updatedAt time.Time) bson.M {
	set := bson.M{"updated_at": updatedAt}
	if update.Content != nil {
		set["content"] = *update.Content
	}
	return set
}

func (s *Answers) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return qna.ErrNotFound
	}
	return nil
}

func (s *Answers) DeleteByQuestion(ctx context.Context, questionID primitive.ObjectID) (int64, error) {
	result, err := s.collection.DeleteMany(ctx, bson.M{"question_id": questionID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
