package qna

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	errMissingQuestionStore = errors.New("question store is required")
	errMissingAnswerStore   = errors.New("answer store is required")
	errMissingVoteStore     = errors.New("vote store is required")
	noOpLogger              = zap.NewNop()
)

// ServiceError wraps a failure with a dotted operation code so handlers can
// report what failed without leaking the underlying error text.
type ServiceError struct {
	code string
	err  error
}

func (e *ServiceError) Error() string {
	if e.err == nil {
		return e.code
	}
	return fmt.Sprintf("%s: %v", e.code, e.err)
}

func (e *ServiceError) Unwrap() error {
	return e.err
}

func (e *ServiceError) Code() string {
	return e.code
}

const (
	opServiceNew     = "qna.service.new"
	opListQuestions  = "qna.list_questions"
	opGetQuestion    = "qna.get_question"
	opCreateQuestion = "qna.create_question"
	opUpdateQuestion = "qna.update_question"
	opDeleteQuestion = "qna.delete_question"
	opListAnswers    = "qna.list_answers"
	opGetAnswer      = "qna.get_answer"
	opCreateAnswer   = "qna.create_answer"
	opUpdateAnswer   = "qna.update_answer"
	opDeleteAnswer   = "qna.delete_answer"
	opCastVote       = "qna.cast_vote"
)

func newServiceError(operation, reason string, cause error) error {
	code := fmt.Sprintf("%s.%s", operation, reason)
	return &ServiceError{code: code, err: cause}
}

// ServiceConfig carries the dependencies for NewService.
type ServiceConfig struct {
	Questions QuestionStore
	Answers   AnswerStore
	Votes     VoteStore
	Clock     func() time.Time
	Logger    *zap.Logger
}

// Service implements the Q&A operations: entity CRUD, the cascade delete of
// a question's answers, and vote casting with tally recomputation.
type Service struct {
	questions QuestionStore
	answers   AnswerStore
	votes     VoteStore
	clock     func() time.Time
	logger    *zap.Logger
}

// NewService validates dependencies and constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Questions == nil {
		return nil, newServiceError(opServiceNew, "missing_question_store", errMissingQuestionStore)
	}
	if cfg.Answers == nil {
		return nil, newServiceError(opServiceNew, "missing_answer_store", errMissingAnswerStore)
	}
	if cfg.Votes == nil {
		return nil, newServiceError(opServiceNew, "missing_vote_store", errMissingVoteStore)
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}

	return &Service{
		questions: cfg.Questions,
		answers:   cfg.Answers,
		votes:     cfg.Votes,
		clock:     clock,
		logger:    logger,
	}, nil
}

// ListQuestions returns up to limit formatted questions whose title or
// category contains the supplied substrings (OR across supplied fields,
// case-insensitive). A non-positive limit falls back to DefaultListLimit.
func (s *Service) ListQuestions(ctx context.Context, filter QuestionFilter, limit int64) ([]FormattedQuestion, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	questions, err := s.questions.List(ctx, filter, limit)
	if err != nil {
		s.logError(opListQuestions, "query_failed", err)
		return nil, newServiceError(opListQuestions, "query_failed", err)
	}

	formatted := make([]FormattedQuestion, 0, len(questions))
	for _, question := range questions {
		formatted = append(formatted, FormatQuestion(question))
	}
	return formatted, nil
}

// GetQuestion returns one formatted question by its hex identifier.
func (s *Service) GetQuestion(ctx context.Context, rawID string) (FormattedQuestion, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return FormattedQuestion{}, newServiceError(opGetQuestion, "invalid_id", err)
	}

	question, err := s.questions.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logError(opGetQuestion, "query_failed", err, zap.String("question_id", rawID))
		}
		return FormattedQuestion{}, newServiceError(opGetQuestion, "query_failed", err)
	}
	return FormatQuestion(question), nil
}

// CreateQuestion stamps timestamps, stores the question, and returns the
// stored document in external shape.
func (s *Service) CreateQuestion(ctx context.Context, input QuestionInput) (FormattedQuestion, error) {
	now := s.clock().UTC()
	question := Question{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	stored, err := s.questions.Insert(ctx, question)
	if err != nil {
		s.logError(opCreateQuestion, "insert_failed", err)
		return FormattedQuestion{}, newServiceError(opCreateQuestion, "insert_failed", err)
	}
	return FormatQuestion(stored), nil
}

// UpdateQuestion applies a partial field merge with a fresh updated_at and
// returns the updated document.
func (s *Service) UpdateQuestion(ctx context.Context, rawID string, update QuestionUpdate) (FormattedQuestion, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return FormattedQuestion{}, newServiceError(opUpdateQuestion, "invalid_id", err)
	}

	if err := s.questions.Update(ctx, id, update, s.clock().UTC()); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logError(opUpdateQuestion, "update_failed", err, zap.String("question_id", rawID))
		}
		return FormattedQuestion{}, newServiceError(opUpdateQuestion, "update_failed", err)
	}

	question, err := s.questions.FindByID(ctx, id)
	if err != nil {
		s.logError(opUpdateQuestion, "reload_failed", err, zap.String("question_id", rawID))
		return FormattedQuestion{}, newServiceError(opUpdateQuestion, "reload_failed", err)
	}
	return FormatQuestion(question), nil
}

// DeleteQuestion removes the question, then removes every answer referencing
// it. The two steps are not atomic: a failure after the question delete
// leaves orphaned answers behind, and the error from the failing step is
// returned without compensation.
func (s *Service) DeleteQuestion(ctx context.Context, rawID string) error {
	id, err := ParseID(rawID)
	if err != nil {
		return newServiceError(opDeleteQuestion, "invalid_id", err)
	}

	if err := s.questions.Delete(ctx, id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logError(opDeleteQuestion, "delete_failed", err, zap.String("question_id", rawID))
		}
		return newServiceError(opDeleteQuestion, "delete_failed", err)
	}

	deleted, err := s.answers.DeleteByQuestion(ctx, id)
	if err != nil {
		s.logError(opDeleteQuestion, "cascade_failed", err, zap.String("question_id", rawID))
		return newServiceError(opDeleteQuestion, "cascade_failed", err)
	}
	s.logger.Info("question deleted",
		zap.String("question_id", rawID),
		zap.Int64("answers_deleted", deleted))
	return nil
}

// ListAnswers returns every answer belonging to an existing question.
func (s *Service) ListAnswers(ctx context.Context, rawQuestionID string) ([]FormattedAnswer, error) {
	questionID, err := ParseID(rawQuestionID)
	if err != nil {
		return nil, newServiceError(opListAnswers, "invalid_id", err)
	}

	if _, err := s.questions.FindByID(ctx, questionID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logError(opListAnswers, "question_lookup_failed", err, zap.String("question_id", rawQuestionID))
		}
		return nil, newServiceError(opListAnswers, "question_lookup_failed", err)
	}

	answers, err := s.answers.ListByQuestion(ctx, questionID)
	if err != nil {
		s.logError(opListAnswers, "query_failed", err, zap.String("question_id", rawQuestionID))
		return nil, newServiceError(opListAnswers, "query_failed", err)
	}

	formatted := make([]FormattedAnswer, 0, len(answers))
	for _, answer := range answers {
		formatted = append(formatted, FormatAnswer(answer))
	}
	return formatted, nil
}

// GetAnswer returns one formatted answer by its hex identifier.
func (s *Service) GetAnswer(ctx context.Context, rawID string) (FormattedAnswer, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return FormattedAnswer{}, newServiceError(opGetAnswer, "invalid_id", err)
	}

	answer, err := s.answers.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logError(opGetAnswer, "query_failed", err, zap.String("answer_id", rawID))
		}
		return FormattedAnswer{}, newServiceError(opGetAnswer, "query_failed", err)
	}
	return FormatAnswer(answer), nil
}

// CreateAnswer stores an answer under an existing question. The question
// existence check runs first; no answer is written when it fails.
func (s *Service) CreateAnswer(ctx context.Context, rawQuestionID string, input AnswerInput) (FormattedAnswer, error) {
	questionID, err := ParseID(rawQuestionID)
	if err != nil {
		return FormattedAnswer{}, newServiceError(opCreateAnswer, "invalid_id", err)
	}

	if _, err := s.questions.FindByID(ctx, questionID); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logError(opCreateAnswer, "question_lookup_failed", err, zap.String("question_id", rawQuestionID))
		}
		return FormattedAnswer{}, newServiceError(opCreateAnswer, "question_lookup_failed", err)
	}

	now := s.clock().UTC()
	answer := Answer{
		QuestionID: questionID,
		Content:    input.Content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	stored, err := s.answers.Insert(ctx, answer)
	if err != nil {
		s.logError(opCreateAnswer, "insert_failed", err, zap.String("question_id", rawQuestionID))
		return FormattedAnswer{}, newServiceError(opCreateAnswer, "insert_failed", err)
	}
	return FormatAnswer(stored), nil
}

// UpdateAnswer applies a partial field merge with a fresh updated_at and
// returns the updated document.
func (s *Service) UpdateAnswer(ctx context.Context, rawID string, update AnswerUpdate) (FormattedAnswer, error) {
	id, err := ParseID(rawID)
	if err != nil {
		return FormattedAnswer{}, newServiceError(opUpdateAnswer, "invalid_id", err)
	}

	if err := s.answers.Update(ctx, id, update, s.clock().UTC()); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logError(opUpdateAnswer, "update_failed", err, zap.String("answer_id", rawID))
		}
		return FormattedAnswer{}, newServiceError(opUpdateAnswer, "update_failed", err)
	}

	answer, err := s.answers.FindByID(ctx, id)
	if err != nil {
		s.logError(opUpdateAnswer, "reload_failed", err, zap.String("answer_id", rawID))
		return FormattedAnswer{}, newServiceError(opUpdateAnswer, "reload_failed", err)
	}
	return FormatAnswer(answer), nil
}

// DeleteAnswer removes a single answer. Answers are never cascade sources.
func (s *Service) DeleteAnswer(ctx context.Context, rawID string) error {
	id, err := ParseID(rawID)
	if err != nil {
		return newServiceError(opDeleteAnswer, "invalid_id", err)
	}

	if err := s.answers.Delete(ctx, id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logError(opDeleteAnswer, "delete_failed", err, zap.String("answer_id", rawID))
		}
		return newServiceError(opDeleteAnswer, "delete_failed", err)
	}
	return nil
}

// VoteQuestion records one vote event for a question and returns the
// question merged with its recomputed tally. Repeat votes from the same
// caller accumulate; there is no de-duplication.
func (s *Service) VoteQuestion(ctx context.Context, rawID string, value int) (VotedQuestion, error) {
	id, err := s.checkVote(rawID, value)
	if err != nil {
		return VotedQuestion{}, err
	}

	question, err := s.questions.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logError(opCastVote, "target_lookup_failed", err, zap.String("question_id", rawID))
		}
		return VotedQuestion{}, newServiceError(opCastVote, "target_lookup_failed", err)
	}

	tally, err := s.appendAndTally(ctx, KindQuestion, id, value)
	if err != nil {
		return VotedQuestion{}, err
	}
	return FormatQuestionWithTally(question, tally), nil
}

// VoteAnswer records one vote event for an answer and returns the answer
// merged with its recomputed tally.
func (s *Service) VoteAnswer(ctx context.Context, rawID string, value int) (VotedAnswer, error) {
	id, err := s.checkVote(rawID, value)
	if err != nil {
		return VotedAnswer{}, err
	}

	answer, err := s.answers.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logError(opCastVote, "target_lookup_failed", err, zap.String("answer_id", rawID))
		}
		return VotedAnswer{}, newServiceError(opCastVote, "target_lookup_failed", err)
	}

	tally, err := s.appendAndTally(ctx, KindAnswer, id, value)
	if err != nil {
		return VotedAnswer{}, err
	}
	return FormatAnswerWithTally(answer, tally), nil
}

func (s *Service) checkVote(rawID string, value int) (primitive.ObjectID, error) {
	if value != VoteUp && value != VoteDown {
		return primitive.NilObjectID, newServiceError(opCastVote, "invalid_value", fmt.Errorf("%w: %d", ErrInvalidVote, value))
	}
	id, err := ParseID(rawID)
	if err != nil {
		return primitive.NilObjectID, newServiceError(opCastVote, "invalid_id", err)
	}
	return id, nil
}

func (s *Service) appendAndTally(ctx context.Context, kind TargetKind, targetID primitive.ObjectID, value int) (VoteTally, error) {
	now := s.clock().UTC()
	event := VoteEvent{
		Kind:      kind,
		TargetID:  targetID,
		Value:     value,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.votes.Append(ctx, event); err != nil {
		s.logError(opCastVote, "append_failed", err,
			zap.String("kind", string(kind)),
			zap.String("target_id", targetID.Hex()))
		return VoteTally{}, newServiceError(opCastVote, "append_failed", err)
	}

	tally, err := s.votes.Tally(ctx, kind, targetID)
	if err != nil {
		s.logError(opCastVote, "tally_failed", err,
			zap.String("kind", string(kind)),
			zap.String("target_id", targetID.Hex()))
		return VoteTally{}, newServiceError(opCastVote, "tally_failed", err)
	}
	return tally, nil
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("qna service error", attrs...)
}
