package mongostore

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"qna/internal/qna"
)

const questionsCollection = "questions"

// Questions implements qna.QuestionStore against the questions collection.
type Questions struct {
	collection *mongo.Collection
}

// NewQuestions binds a question store to the database.
func NewQuestions(db *mongo.Database) *Questions {
	return &Questions{collection: db.Collection(questionsCollection)}
}

func (s *Questions) Insert(ctx context.Context, question qna.Question) (qna.Question, error) {
	result, err := s.collection.InsertOne(ctx, question)
	if err != nil {
		return qna.Question{}, err
	}

	insertedID, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return qna.Question{}, qna.ErrWriteNotAcknowledged
	}
	question.ID = insertedID
	return question, nil
}

func (s *Questions) FindByID(ctx context.Context, id primitive.ObjectID) (qna.Question, error) {
	var question qna.Question
	err := s.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&question)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return qna.Question{}, qna.ErrNotFound
	}
	if err != nil {
		return qna.Question{}, err
	}
	return question, nil
}

func (s *Questions) List(ctx context.Context, filter qna.QuestionFilter, limit int64) ([]qna.Question, error) {
	cursor, err := s.collection.Find(ctx, listFilter(filter), options.Find().SetLimit(limit))
	if err != nil {
		return nil, err
	}

	questions := make([]qna.Question, 0)
	if err := cursor.All(ctx, &questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// listFilter builds an OR of case-insensitive substring matches over the
// supplied filter fields; an empty filter matches every document.
func listFilter(filter qna.QuestionFilter) bson.M {
	clauses := bson.A{}
	if filter.Title != "" {
		clauses = append(clauses, bson.M{"title": substringRegex(filter.Title)})
	}
	if filter.Category != "" {
		clauses = append(clauses, bson.M{"category": substringRegex(filter.Category)})
	}
	if len(clauses) == 0 {
		return bson.M{}
	}
	return bson.M{"$or": clauses}
}

func substringRegex(value string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(value), Options: "i"}
}

func (s *Questions) Update(ctx context.Context, id primitive.ObjectID, update qna.QuestionUpdate, updatedAt time.Time) error {
	result, err := s.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": questionSetFields(update, updatedAt)})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return qna.ErrNotFound
	}
	return nil
}

// questionSetFields builds the partial $set document: only supplied fields
// overwrite, and updated_at is always refreshed.
func questionSetFields(update qna.QuestionUpdate, updatedAt time.Time) bson.M {
	set := bson.M{"updated_at": updatedAt}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Category != nil {
		set["category"] = *update.Category
	}
	return set
}

func (s *Questions) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := s.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return qna.ErrNotFound
	}
	return nil
}
