package apihandlers

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/conductor-oer/conductor-backend/pkg/apihelpers/middlewares"
	prDB "github.com/conductor-oer/conductor-backend/pkg/db/peer-review"
	jwthandling "github.com/conductor-oer/conductor-backend/pkg/jwt-handling"
	peerreview "github.com/conductor-oer/conductor-backend/pkg/peer-review"
	prTypes "github.com/conductor-oer/conductor-backend/pkg/peer-review/types"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	testSignKey = "handler-test-key"
	testOrgID   = "org1"
)

type memStore struct {
	rubrics  map[string]prTypes.Rubric
	settings map[string]prTypes.ProjectSettings
	reviews  []prTypes.PeerReview
}

func (m *memStore) GetRubric(ctx context.Context, orgID string, rubricID string) (prTypes.Rubric, error) {
	r, ok := m.rubrics[rubricID]
	if !ok {
		return r, mongo.ErrNoDocuments
	}
	return r, nil
}

func (m *memStore) GetOrgDefaultRubric(ctx context.Context, orgID string) (prTypes.Rubric, error) {
	for _, r := range m.rubrics {
		if r.IsOrgDefault {
			return r, nil
		}
	}
	return prTypes.Rubric{}, mongo.ErrNoDocuments
}

func (m *memStore) GetRubrics(ctx context.Context, orgID string) ([]prTypes.Rubric, error) {
	out := []prTypes.Rubric{}
	for _, r := range m.rubrics {
		out = append(out, r)
	}
	return out, nil
}

func (m *memStore) SaveRubric(ctx context.Context, orgID string, rubric prTypes.Rubric) (prTypes.Rubric, error) {
	if rubric.ID.IsZero() {
		rubric.ID = primitive.NewObjectID()
	}
	m.rubrics[rubric.ID.Hex()] = rubric
	return rubric, nil
}

func (m *memStore) ClearOrgDefaultRubric(ctx context.Context, orgID string, exceptRubricID string) error {
	for id, r := range m.rubrics {
		if id != exceptRubricID {
			r.IsOrgDefault = false
			m.rubrics[id] = r
		}
	}
	return nil
}

func (m *memStore) DeleteRubric(ctx context.Context, orgID string, rubricID string) error {
	if _, ok := m.rubrics[rubricID]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(m.rubrics, rubricID)
	return nil
}

func (m *memStore) GetProjectSettings(ctx context.Context, orgID string, projectID string) (prTypes.ProjectSettings, error) {
	s, ok := m.settings[projectID]
	if !ok {
		return s, mongo.ErrNoDocuments
	}
	return s, nil
}

func (m *memStore) SaveProjectSettings(ctx context.Context, orgID string, settings prTypes.ProjectSettings) error {
	m.settings[settings.ProjectID] = settings
	return nil
}

func (m *memStore) AddPeerReview(ctx context.Context, orgID string, review prTypes.PeerReview) (string, error) {
	review.ID = primitive.NewObjectID()
	m.reviews = append(m.reviews, review)
	return review.ID.Hex(), nil
}

func (m *memStore) GetPeerReviews(ctx context.Context, orgID string, projectID string, page int64, limit int64) ([]prTypes.PeerReview, *prDB.PaginationInfos, error) {
	out := []prTypes.PeerReview{}
	for _, r := range m.reviews {
		if r.ProjectID == projectID {
			out = append(out, r)
		}
	}
	return out, &prDB.PaginationInfos{TotalCount: int64(len(out)), CurrentPage: page, TotalPages: 1, PageSize: limit}, nil
}

func (m *memStore) FindAndExecuteOnPeerReviews(ctx context.Context, orgID string, projectID string, createdAfter int64, returnOnError bool, fn func(review prTypes.PeerReview) error) error {
	for _, r := range m.reviews {
		if r.ProjectID == projectID && r.CreatedAt >= createdAfter {
			if err := fn(r); err != nil && returnOnError {
				return err
			}
		}
	}
	return nil
}

func (m *memStore) DeletePeerReview(ctx context.Context, orgID string, reviewID string) error {
	for i, r := range m.reviews {
		if r.ID.Hex() == reviewID {
			m.reviews = append(m.reviews[:i], m.reviews[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

func setupRouter(t *testing.T) (*gin.Engine, *memStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &memStore{
		rubrics:  map[string]prTypes.Rubric{},
		settings: map[string]prTypes.ProjectSettings{},
	}
	peerreview.Init(store, nil)

	router := gin.New()
	router.Use(middlewares.RequestID())
	router.GET("/", HealthCheckHandle)
	h := NewHTTPHandler(testSignKey, []string{testOrgID})
	v1 := router.Group("/v1")
	h.AddPeerReviewAPI(v1)
	h.AddManagementAPI(v1)
	return router, store
}

func token(t *testing.T, orgID string, isAdmin bool) string {
	t.Helper()
	tok, err := jwthandling.GenerateNewConductorUserToken(time.Minute, "user-1", orgID, "Grace", "Hopper", "grace@example.org", isAdmin, testSignKey)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return tok
}

func request(router *gin.Engine, method string, path string, body interface{}, tok string) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func defaultRubricPayload() prTypes.Rubric {
	return prTypes.Rubric{
		RubricTitle:  "Default",
		IsOrgDefault: true,
		Headings:     []prTypes.RubricHeading{{Order: prTypes.NewOrder(1), Text: "Review"}},
		Prompts: []prTypes.RubricPrompt{
			{Order: prTypes.NewOrder(2), PromptType: prTypes.PROMPT_TYPE_5_LIKERT, PromptText: "Quality", PromptRequired: true},
			{Order: prTypes.NewOrder(3), PromptType: prTypes.PROMPT_TYPE_TEXT, PromptText: "Comments"},
		},
	}
}

func createRubric(t *testing.T, router *gin.Engine) prTypes.Rubric {
	t.Helper()
	w := request(router, http.MethodPost, "/v1/management/org1/rubrics", defaultRubricPayload(), token(t, testOrgID, true))
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	var rubric prTypes.Rubric
	if err := json.Unmarshal(w.Body.Bytes(), &rubric); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rubric
}

func TestHealthCheck(t *testing.T) {
	router, _ := setupRouter(t)
	w := request(router, http.MethodGet, "/", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("unexpected status %d", w.Code)
	}
}

func TestRubricManagement(t *testing.T) {
	router, store := setupRouter(t)

	t.Run("non admin cannot create", func(t *testing.T) {
		w := request(router, http.MethodPost, "/v1/management/org1/rubrics", defaultRubricPayload(), token(t, testOrgID, false))
		if w.Code != http.StatusForbidden {
			t.Errorf("unexpected status %d", w.Code)
		}
	})

	t.Run("token of other org", func(t *testing.T) {
		w := request(router, http.MethodGet, "/v1/management/org1/rubrics", nil, token(t, "org2", true))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("unexpected status %d", w.Code)
		}
	})

	t.Run("invalid rubric", func(t *testing.T) {
		w := request(router, http.MethodPost, "/v1/management/org1/rubrics", prTypes.Rubric{RubricTitle: ""}, token(t, testOrgID, true))
		if w.Code != http.StatusBadRequest {
			t.Errorf("unexpected status %d", w.Code)
		}
	})

	rubric := createRubric(t, router)
	if rubric.ID.IsZero() || rubric.Prompts[0].ID.IsZero() {
		t.Fatalf("ids should be assigned: %+v", rubric)
	}

	t.Run("get and list", func(t *testing.T) {
		w := request(router, http.MethodGet, "/v1/management/org1/rubrics/"+rubric.ID.Hex(), nil, token(t, testOrgID, false))
		if w.Code != http.StatusOK {
			t.Errorf("unexpected status %d", w.Code)
		}
		w = request(router, http.MethodGet, "/v1/management/org1/rubrics", nil, token(t, testOrgID, false))
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), rubric.ID.Hex()) {
			t.Errorf("unexpected response %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("update keeps creation time", func(t *testing.T) {
		payload := defaultRubricPayload()
		payload.RubricTitle = "Renamed"
		w := request(router, http.MethodPut, "/v1/management/org1/rubrics/"+rubric.ID.Hex(), payload, token(t, testOrgID, true))
		if w.Code != http.StatusOK {
			t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
		}
		stored := store.rubrics[rubric.ID.Hex()]
		if stored.RubricTitle != "Renamed" || stored.CreatedAt != rubric.CreatedAt {
			t.Errorf("unexpected stored rubric: %+v", stored)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		w := request(router, http.MethodGet, "/v1/management/org1/rubrics/xyz", nil, token(t, testOrgID, false))
		if w.Code != http.StatusBadRequest {
			t.Errorf("unexpected status %d", w.Code)
		}
	})

	t.Run("delete", func(t *testing.T) {
		w := request(router, http.MethodDelete, "/v1/management/org1/rubrics/"+rubric.ID.Hex(), nil, token(t, testOrgID, true))
		if w.Code != http.StatusOK {
			t.Errorf("unexpected status %d", w.Code)
		}
		w = request(router, http.MethodDelete, "/v1/management/org1/rubrics/"+rubric.ID.Hex(), nil, token(t, testOrgID, true))
		if w.Code != http.StatusNotFound {
			t.Errorf("unexpected status %d", w.Code)
		}
	})
}

func TestPeerReviewForm(t *testing.T) {
	router, _ := setupRouter(t)

	w := request(router, http.MethodGet, "/v1/peer-review/org1/projects/p1/form", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 without rubric, got %d", w.Code)
	}

	createRubric(t, router)
	w = request(router, http.MethodGet, "/v1/peer-review/org1/projects/p1/form", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
	}
	var form struct {
		Elements []map[string]interface{} `json:"elements"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &form); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(form.Elements) != 3 || form.Elements[0]["uiType"] != "heading" {
		t.Errorf("unexpected elements: %v", form.Elements)
	}

	w = request(router, http.MethodGet, "/v1/peer-review/unknown-org/projects/p1/form", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown org, got %d", w.Code)
	}
}

func TestSubmitPeerReview(t *testing.T) {
	router, store := setupRouter(t)
	rubric := createRubric(t, router)

	likert := 4
	validSubmission := prTypes.Submission{
		AuthorType:  prTypes.AUTHOR_TYPE_STUDENT,
		Rating:      4.5,
		AuthorFirst: "Ada",
		AuthorLast:  "Lovelace",
		AuthorEmail: "ada@example.org",
		PromptResponses: []prTypes.PromptResponse{
			{PromptID: rubric.Prompts[0].ID.Hex(), PromptType: prTypes.PROMPT_TYPE_5_LIKERT, LikertResponse: &likert},
		},
	}

	t.Run("anonymous disabled", func(t *testing.T) {
		w := request(router, http.MethodPost, "/v1/peer-review/org1/projects/p1/reviews", validSubmission, "")
		if w.Code != http.StatusForbidden {
			t.Errorf("unexpected status %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("empty payload", func(t *testing.T) {
		w := request(router, http.MethodPost, "/v1/peer-review/org1/projects/p1/reviews", nil, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("unexpected status %d", w.Code)
		}
	})

	t.Run("validation issues", func(t *testing.T) {
		w := request(router, http.MethodPost, "/v1/peer-review/org1/projects/p1/reviews", prTypes.Submission{AuthorType: "instructor", Rating: 9}, token(t, testOrgID, false))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
		}
		var res struct {
			Issues []map[string]interface{} `json:"issues"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(res.Issues) != 2 {
			t.Errorf("expected likert and rating issues, got %v", res.Issues)
		}
	})

	t.Run("project mismatch", func(t *testing.T) {
		sub := validSubmission
		sub.ProjectID = "other"
		w := request(router, http.MethodPost, "/v1/peer-review/org1/projects/p1/reviews", sub, token(t, testOrgID, false))
		if w.Code != http.StatusBadRequest {
			t.Errorf("unexpected status %d", w.Code)
		}
	})

	t.Run("token from another org", func(t *testing.T) {
		w := request(router, http.MethodPost, "/v1/peer-review/org1/projects/p1/reviews", validSubmission, token(t, "other-org", false))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("unexpected status %d: %s", w.Code, w.Body.String())
		}
		if len(store.reviews) != 0 {
			t.Errorf("review should not be stored: %+v", store.reviews)
		}
	})

	t.Run("authenticated submission", func(t *testing.T) {
		w := request(router, http.MethodPost, "/v1/peer-review/org1/projects/p1/reviews", validSubmission, token(t, testOrgID, false))
		if w.Code != http.StatusOK {
			t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
		}
		if len(store.reviews) != 1 || store.reviews[0].AuthorFirst != "Grace" || store.reviews[0].Anonymous {
			t.Errorf("unexpected stored reviews: %+v", store.reviews)
		}
	})

	t.Run("anonymous enabled", func(t *testing.T) {
		w := request(router, http.MethodPut, "/v1/management/org1/projects/p1/settings", prTypes.ProjectSettings{AllowAnonymous: true}, token(t, testOrgID, true))
		if w.Code != http.StatusOK {
			t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
		}
		w = request(router, http.MethodPost, "/v1/peer-review/org1/projects/p1/reviews", validSubmission, "")
		if w.Code != http.StatusOK {
			t.Fatalf("unexpected status %d: %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "peerReviewID") {
			t.Errorf("missing id: %s", w.Body.String())
		}
	})

	t.Run("list, summary and export", func(t *testing.T) {
		tok := token(t, testOrgID, false)
		w := request(router, http.MethodGet, "/v1/management/org1/projects/p1/reviews?page=1&limit=5", nil, tok)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"totalCount":2`) {
			t.Errorf("unexpected list response %d: %s", w.Code, w.Body.String())
		}

		w = request(router, http.MethodGet, "/v1/management/org1/projects/p1/reviews/summary", nil, tok)
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"reviewCount":2`) {
			t.Errorf("unexpected summary response %d: %s", w.Code, w.Body.String())
		}

		w = request(router, http.MethodGet, "/v1/management/org1/projects/p1/reviews/export?format=csv", nil, tok)
		if w.Code != http.StatusOK {
			t.Fatalf("unexpected export status %d", w.Code)
		}
		records, err := csv.NewReader(strings.NewReader(w.Body.String())).ReadAll()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(records) != 3 {
			t.Errorf("expected header and two rows, got %d", len(records))
		}

		w = request(router, http.MethodGet, "/v1/management/org1/projects/p1/reviews/export?format=xml", nil, tok)
		if w.Code != http.StatusBadRequest {
			t.Errorf("unexpected status for unsupported format %d", w.Code)
		}
	})

	t.Run("delete review", func(t *testing.T) {
		id := store.reviews[0].ID.Hex()
		w := request(router, http.MethodDelete, "/v1/management/org1/reviews/"+id, nil, token(t, testOrgID, false))
		if w.Code != http.StatusForbidden {
			t.Errorf("non admin should not delete, got %d", w.Code)
		}
		w = request(router, http.MethodDelete, "/v1/management/org1/reviews/"+id, nil, token(t, testOrgID, true))
		if w.Code != http.StatusOK || len(store.reviews) != 1 {
			t.Errorf("unexpected delete response %d", w.Code)
		}
	})
}
