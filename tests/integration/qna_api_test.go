package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"qna/internal/memstore"
	"qna/internal/qna"
	"qna/internal/server"
)

func newAPI(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := memstore.NewStore()
	service, err := qna.NewService(qna.ServiceConfig{
		Questions: store.Questions(),
		Answers:   store.Answers(),
		Votes:     store.Votes(),
		Clock:     time.Now,
	})
	if err != nil {
		t.Fatalf("failed to build service: %v", err)
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{Service: service, Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}
	return handler
}

func call(t *testing.T, handler http.Handler, method, path, body string) (int, map[string]any) {
	t.Helper()
	request := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		request.Header.Set("Content-Type", "application/json")
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	payload := map[string]any{}
	if recorder.Body.Len() > 0 {
		if err := json.Unmarshal(recorder.Body.Bytes(), &payload); err != nil {
			t.Fatalf("failed to decode %q: %v", recorder.Body.String(), err)
		}
	}
	return recorder.Code, payload
}

func entityID(t *testing.T, payload map[string]any) string {
	t.Helper()
	data, ok := payload["data"].(map[string]any)
	if !ok {
		t.Fatalf("expected data object in %v", payload)
	}
	id, ok := data["id"].(string)
	if !ok || id == "" {
		t.Fatalf("expected id in %v", data)
	}
	return id
}

func TestQuestionLifecycleWithVotesAndCascade(t *testing.T) {
	api := newAPI(t)

	status, created := call(t, api, http.MethodPost, "/questions",
		`{"title":"A","description":"first question","category":"tech"}`)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", status, created)
	}
	questionID := entityID(t, created)

	status, answered := call(t, api, http.MethodPost, "/questions/"+questionID+"/answers", `{"content":"hi"}`)
	if status != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %v", status, answered)
	}
	answerID := entityID(t, answered)

	for i := 0; i < 2; i++ {
		status, _ = call(t, api, http.MethodPost, "/questions/"+questionID+"/upvote", "")
		if status != http.StatusOK {
			t.Fatalf("expected 200 on upvote, got %d", status)
		}
	}
	status, voted := call(t, api, http.MethodPost, "/questions/"+questionID+"/downvote", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200 on downvote, got %d", status)
	}
	data := voted["data"].(map[string]any)
	if data["upvotes"] != float64(2) || data["downvotes"] != float64(1) {
		t.Fatalf("expected tally {2 1}, got %v", data)
	}

	status, _ = call(t, api, http.MethodDelete, "/questions/"+questionID, "")
	if status != http.StatusOK {
		t.Fatalf("expected 200 on delete, got %d", status)
	}

	status, _ = call(t, api, http.MethodGet, "/questions/"+questionID, "")
	if status != http.StatusNotFound {
		t.Fatalf("expected deleted question to be gone, got %d", status)
	}
	status, _ = call(t, api, http.MethodGet, "/answers/"+answerID, "")
	if status != http.StatusNotFound {
		t.Fatalf("expected cascaded answer to be gone, got %d", status)
	}
}

func TestQuestionSearchReturnsUnionOfFilters(t *testing.T) {
	api := newAPI(t)

	seed := []string{
		`{"title":"Question Title 5","description":"d","category":"science"}`,
		`{"title":"question title 55","description":"d","category":"history"}`,
		`{"title":"Other","description":"d","category":"tech"}`,
		`{"title":"Unmatched","description":"d","category":"cooking"}`,
	}
	for _, body := range seed {
		if status, payload := call(t, api, http.MethodPost, "/questions", body); status != http.StatusCreated {
			t.Fatalf("seed failed: %d %v", status, payload)
		}
	}

	status, payload := call(t, api, http.MethodGet, "/questions?title=Question+Title+5&category=tech", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	results := payload["data"].([]any)
	if len(results) != 3 {
		t.Fatalf("expected union of 3 matches, got %d: %v", len(results), results)
	}

	status, payload = call(t, api, http.MethodGet, "/questions", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(payload["data"].([]any)) != 4 {
		t.Fatalf("expected unfiltered list of 4, got %v", payload["data"])
	}
}

func TestAnswerUpdateAndIndependentDelete(t *testing.T) {
	api := newAPI(t)

	_, created := call(t, api, http.MethodPost, "/questions",
		`{"title":"A","description":"d","category":"tech"}`)
	questionID := entityID(t, created)
	_, answered := call(t, api, http.MethodPost, "/questions/"+questionID+"/answers", `{"content":"v1"}`)
	answerID := entityID(t, answered)

	status, updated := call(t, api, http.MethodPut, "/answers/"+answerID, `{"content":"v2"}`)
	if status != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %v", status, updated)
	}
	if updated["data"].(map[string]any)["content"] != "v2" {
		t.Fatalf("expected updated content: %v", updated)
	}

	status, _ = call(t, api, http.MethodDelete, "/answers/"+answerID, "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	// Deleting an answer never touches its question.
	status, _ = call(t, api, http.MethodGet, "/questions/"+questionID, "")
	if status != http.StatusOK {
		t.Fatalf("expected question to survive, got %d", status)
	}

	status, listed := call(t, api, http.MethodGet, "/questions/"+questionID+"/answers", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if len(listed["data"].([]any)) != 0 {
		t.Fatalf("expected empty answer list, got %v", listed["data"])
	}
}

func TestAnswerVotesAccumulate(t *testing.T) {
	api := newAPI(t)

	_, created := call(t, api, http.MethodPost, "/questions",
		`{"title":"A","description":"d","category":"tech"}`)
	questionID := entityID(t, created)
	_, answered := call(t, api, http.MethodPost, "/questions/"+questionID+"/answers", `{"content":"hi"}`)
	answerID := entityID(t, answered)

	call(t, api, http.MethodPost, "/answers/"+answerID+"/upvote", "")
	status, voted := call(t, api, http.MethodPost, "/answers/"+answerID+"/upvote", "")
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	data := voted["data"].(map[string]any)
	if data["upvotes"] != float64(2) || data["downvotes"] != float64(0) {
		t.Fatalf("expected tally {2 0}, got %v", data)
	}
	if data["question_id"] != questionID {
		t.Fatalf("expected answer to reference its question: %v", data)
	}
}
