package mongostore

import (
	"reflect"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"qna/internal/qna"
)

func TestListFilterBuildsOrOfSuppliedFields(t *testing.T) {
	filter := listFilter(qna.QuestionFilter{Title: "Question Title 5", Category: "tech"})

	expected := bson.M{"$or": bson.A{
		bson.M{"title": primitive.Regex{Pattern: `Question Title 5`, Options: "i"}},
		bson.M{"category": primitive.Regex{Pattern: `tech`, Options: "i"}},
	}}
	if !reflect.DeepEqual(filter, expected) {
		t.Fatalf("unexpected filter:\n%#v\n%#v", filter, expected)
	}
}

func TestListFilterOmitsEmptyFields(t *testing.T) {
	filter := listFilter(qna.QuestionFilter{Category: "tech"})

	expected := bson.M{"$or": bson.A{
		bson.M{"category": primitive.Regex{Pattern: `tech`, Options: "i"}},
	}}
	if !reflect.DeepEqual(filter, expected) {
		t.Fatalf("unexpected filter: %#v", filter)
	}
}

func TestListFilterEmptyMatchesEverything(t *testing.T) {
	filter := listFilter(qna.QuestionFilter{})

	if !reflect.DeepEqual(filter, bson.M{}) {
		t.Fatalf("expected empty filter document, got %#v", filter)
	}
}

func TestSubstringRegexQuotesMetaCharacters(t *testing.T) {
	regex := substringRegex("c++ (advanced)")

	if regex.Pattern != `c\+\+ \(advanced\)` {
		t.Fatalf("expected quoted pattern, got %q", regex.Pattern)
	}
	if regex.Options != "i" {
		t.Fatalf("expected case-insensitive option, got %q", regex.Options)
	}
}

func TestQuestionSetFieldsMergesOnlySuppliedFields(t *testing.T) {
	updatedAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	title := "new title"

	set := questionSetFields(qna.QuestionUpdate{Title: &title}, updatedAt)

	expected := bson.M{"title": "new title", "updated_at": updatedAt}
	if !reflect.DeepEqual(set, expected) {
		t.Fatalf("unexpected $set document: %#v", set)
	}
}

func TestQuestionSetFieldsAlwaysRefreshesUpdatedAt(t *testing.T) {
	updatedAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	set := questionSetFields(qna.QuestionUpdate{}, updatedAt)

	if !reflect.DeepEqual(set, bson.M{"updated_at": updatedAt}) {
		t.Fatalf("unexpected $set document: %#v", set)
	}
}

func TestAnswerSetFieldsMergesContent(t *testing.T) {
	updatedAt := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	content := "revised"

	set := answerSetFields(qna.AnswerUpdate{Content: &content}, updatedAt)

	expected := bson.M{"content": "revised", "updated_at": updatedAt}
	if !reflect.DeepEqual(set, expected) {
		t.Fatalf("unexpected $set document: %#v", set)
	}
}

func TestTallyPipelineGroupsByTargetField(t *testing.T) {
	targetID := primitive.NewObjectID()

	pipeline := tallyPipeline("question_id", targetID)

	if len(pipeline) != 2 {
		t.Fatalf("expected $match and $group stages, got %d stages", len(pipeline))
	}

	match := pipeline[0]
	if match[0].Key != "$match" || !reflect.DeepEqual(match[0].Value, bson.M{"question_id": targetID}) {
		t.Fatalf("unexpected $match stage: %#v", match)
	}

	group := pipeline[1]
	if group[0].Key != "$group" {
		t.Fatalf("unexpected stage: %#v", group)
	}
	groupDoc, ok := group[0].Value.(bson.M)
	if !ok {
		t.Fatalf("expected bson.M group document, got %T", group[0].Value)
	}
	if groupDoc["_id"] != "$question_id" {
		t.Fatalf("expected grouping by target field, got %v", groupDoc["_id"])
	}
	expectedUp := bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$vote", qna.VoteUp}}, 1, 0}}}
	if !reflect.DeepEqual(groupDoc["total_upvotes"], expectedUp) {
		t.Fatalf("unexpected upvote accumulator: %#v", groupDoc["total_upvotes"])
	}
	expectedDown := bson.M{"$sum": bson.M{"$cond": bson.A{bson.M{"$eq": bson.A{"$vote", qna.VoteDown}}, 1, 0}}}
	if !reflect.DeepEqual(groupDoc["total_downvotes"], expectedDown) {
		t.Fatalf("unexpected downvote accumulator: %#v", groupDoc["total_downvotes"])
	}
}

func TestVoteTargetFieldPerKind(t *testing.T) {
	votes := &Votes{}

	_, field, err := votes.target(qna.KindQuestion)
	if err != nil || field != "question_id" {
		t.Fatalf("unexpected question target: %q, %v", field, err)
	}
	_, field, err = votes.target(qna.KindAnswer)
	if err != nil || field != "answer_id" {
		t.Fatalf("unexpected answer target: %q, %v", field, err)
	}
	if _, _, err := votes.target("comment"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}
