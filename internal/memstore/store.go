// Package memstore provides a mutex-guarded in-memory implementation of the
// qna store ports, used by tests in place of a running MongoDB.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"qna/internal/qna"
)

// Store holds all collections behind one lock and satisfies the
// QuestionStore, AnswerStore, and VoteStore interfaces.
type Store struct {
	mu        sync.RWMutex
	questions map[primitive.ObjectID]qna.Question
	answers   map[primitive.ObjectID]qna.Answer
	votes     []qna.VoteEvent
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		questions: make(map[primitive.ObjectID]qna.Question),
		answers:   make(map[primitive.ObjectID]qna.Answer),
	}
}

// Questions exposes the store as a qna.QuestionStore.
func (s *Store) Questions() qna.QuestionStore { return (*questionStore)(s) }

// Answers exposes the store as a qna.AnswerStore.
func (s *Store) Answers() qna.AnswerStore { return (*answerStore)(s) }

// Votes exposes the store as a qna.VoteStore.
func (s *Store) Votes() qna.VoteStore { return (*voteStore)(s) }

// VoteCount reports the number of ledger rows, for assertions that a failed
// vote appended nothing.
func (s *Store) VoteCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.votes)
}

type questionStore Store

func (s *questionStore) Insert(_ context.Context, question qna.Question) (qna.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	question.ID = primitive.NewObjectID()
	s.questions[question.ID] = question
	return question, nil
}

func (s *questionStore) FindByID(_ context.Context, id primitive.ObjectID) (qna.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	question, ok := s.questions[id]
	if !ok {
		return qna.Question{}, qna.ErrNotFound
	}
	return question, nil
}

func (s *questionStore) List(_ context.Context, filter qna.QuestionFilter, limit int64) ([]qna.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]qna.Question, 0, len(s.questions))
	for _, question := range s.questions {
		if matchesFilter(question, filter) {
			matched = append(matched, question)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID.Hex() < matched[j].ID.Hex()
	})
	if int64(len(matched)) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func matchesFilter(question qna.Question, filter qna.QuestionFilter) bool {
	if filter.IsZero() {
		return true
	}
	if filter.Title != "" && containsFold(question.Title, filter.Title) {
		return true
	}
	if filter.Category != "" && containsFold(question.Category, filter.Category) {
		return true
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(needle))
}

func (s *questionStore) Update(_ context.Context, id primitive.ObjectID, update qna.QuestionUpdate, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	question, ok := s.questions[id]
	if !ok {
		return qna.ErrNotFound
	}
	if update.Title != nil {
		question.Title = *update.Title
	}
	if update.Description != nil {
		question.Description = *update.Description
	}
	if update.Category != nil {
		question.Category = *update.Category
	}
	question.UpdatedAt = updatedAt
	s.questions[id] = question
	return nil
}

func (s *questionStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.questions[id]; !ok {
		return qna.ErrNotFound
	}
	delete(s.questions, id)
	return nil
}

type answerStore Store

func (s *answerStore) Insert(_ context.Context, answer qna.Answer) (qna.Answer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	answer.ID = primitive.NewObjectID()
	s.answers[answer.ID] = answer
	return answer, nil
}

func (s *answerStore) FindByID(_ context.Context, id primitive.ObjectID) (qna.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	answer, ok := s.answers[id]
	if !ok {
		return qna.Answer{}, qna.ErrNotFound
	}
	return answer, nil
}

func (s *answerStore) ListByQuestion(_ context.Context, questionID primitive.ObjectID) ([]qna.Answer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]qna.Answer, 0)
	for _, answer := range s.answers {
		if answer.QuestionID == questionID {
			matched = append(matched, answer)
		}
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].ID.Hex() < matched[j].ID.Hex()
	})
	return matched, nil
}

func (s *answerStore) Update(_ context.Context, id primitive.ObjectID, update qna.AnswerUpdate, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	answer, ok := s.answers[id]
	if !ok {
		return qna.ErrNotFound
	}
	if update.Content != nil {
		answer.Content = *update.Content
	}
	answer.UpdatedAt = updatedAt
	s.answers[id] = answer
	return nil
}

func (s *answerStore) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.answers[id]; !ok {
		return qna.ErrNotFound
	}
	delete(s.answers, id)
	return nil
}

func (s *answerStore) DeleteByQuestion(_ context.Context, questionID primitive.ObjectID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var deleted int64
	for id, answer := range s.answers {
		if answer.QuestionID == questionID {
			delete(s.answers, id)
			deleted++
		}
	}
	return deleted, nil
}

type voteStore Store

func (s *voteStore) Append(_ context.Context, event qna.VoteEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	event.ID = primitive.NewObjectID()
	s.votes = append(s.votes, event)
	return nil
}

func (s *voteStore) Tally(_ context.Context, kind qna.TargetKind, targetID primitive.ObjectID) (qna.VoteTally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var tally qna.VoteTally
	for _, event := range s.votes {
		if event.Kind != kind || event.TargetID != targetID {
			continue
		}
		switch event.Value {
		case qna.VoteUp:
			tally.Upvotes++
		case qna.VoteDown:
			tally.Downvotes++
		}
	}
	return tally, nil
}
