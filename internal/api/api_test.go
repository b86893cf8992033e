package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"neurograph/internal/graph"
	"neurograph/internal/messaging"
	"neurograph/pkg/errors"
)

// fakeGraphStore serves canned entities.
type fakeGraphStore struct {
	categories    []graph.Category
	contents      map[string][]graph.Content
	searchResults []graph.Content
	searchErr     error
	searchCalls   int
}

func (f *fakeGraphStore) SearchContent(ctx context.Context, query string, limit int) ([]graph.Content, error) {
	f.searchCalls++
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	results := f.searchResults
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (f *fakeGraphStore) ListCategories(ctx context.Context) ([]graph.Category, error) {
	return f.categories, nil
}

func (f *fakeGraphStore) ContentByCategory(ctx context.Context, categoryID string, limit int) ([]graph.Content, error) {
	contents := f.contents[categoryID]
	if len(contents) > limit {
		contents = contents[:limit]
	}
	return contents, nil
}

func (f *fakeGraphStore) ContentByID(ctx context.Context, id string) (*graph.Content, error) {
	for _, contents := range f.contents {
		for _, c := range contents {
			if c.ID == id {
				return &c, nil
			}
		}
	}
	return nil, errors.NewNotFound("content", id)
}

func (f *fakeGraphStore) Stats(ctx context.Context) (*graph.ContentStats, error) {
	return &graph.ContentStats{
		TotalContents:   4,
		TotalCategories: 2,
		PerCategory:     []graph.CategoryCount{{Category: "Ideas", Count: 4}},
	}, nil
}

// fakeMessageStore wraps the real messaging service over a canned runner, or
// serves direct values for the simpler listing handlers.
type fakeMessageStore struct {
	channels    []messaging.ChannelInfo
	messages    []messaging.Message
	sessions    []messaging.SessionInfo
	sendResult  *messaging.SendResult
	sendErr     error
	thread      []messaging.Message
	markedRead  int64
	markReadErr error
	stats       *messaging.Stats

	lastChannel    string
	lastLimit      int
	lastUnreadOnly bool
	lastMarkIDs    []string
}

func (f *fakeMessageStore) ListChannels(ctx context.Context) ([]messaging.ChannelInfo, error) {
	return f.channels, nil
}

func (f *fakeMessageStore) ListMessages(ctx context.Context, channel string, limit int, unreadOnly bool) ([]messaging.Message, error) {
	f.lastChannel, f.lastLimit, f.lastUnreadOnly = channel, limit, unreadOnly
	return f.messages, nil
}

func (f *fakeMessageStore) ListSessions(ctx context.Context) ([]messaging.SessionInfo, error) {
	return f.sessions, nil
}

func (f *fakeMessageStore) Send(ctx context.Context, input messaging.SendInput) (*messaging.SendResult, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return f.sendResult, nil
}

func (f *fakeMessageStore) GetThread(ctx context.Context, messageID string) ([]messaging.Message, error) {
	return f.thread, nil
}

func (f *fakeMessageStore) MarkRead(ctx context.Context, ids []string) (int64, error) {
	f.lastMarkIDs = ids
	if f.markReadErr != nil {
		return 0, f.markReadErr
	}
	if len(ids) == 0 {
		return 0, errors.NewValidation("message_ids", "must be a non-empty list")
	}
	return f.markedRead, nil
}

func (f *fakeMessageStore) MessagingStats(ctx context.Context) (*messaging.Stats, error) {
	return f.stats, nil
}

// fakeCache is an in-memory Cache.
type fakeCache struct {
	values map[string]string
	incrs  map[string]int
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: map[string]string{}, incrs: map[string]int{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, ok := f.values[key]
	return val, ok, nil
}

func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.values[key] = value
	return nil
}

func (f *fakeCache) IncrScore(ctx context.Context, key, member string) error {
	f.incrs[key+":"+member]++
	return nil
}

func newTestRouter(graphStore GraphStore, messages MessageStore, cache Cache) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewHandler(graphStore, messages, cache, time.Minute, time.Minute)
	return NewRouter(handler, zap.NewNop())
}

func doRequest(router *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req, _ = http.NewRequest(method, path, bytes.NewBuffer(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req, _ = http.NewRequest(method, path, nil)
	}
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(&fakeGraphStore{}, &fakeMessageStore{}, nil)

	w := doRequest(router, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, "ok", response["status"])
	assert.NotEmpty(t, response["timestamp"])
}

func TestSearch_MissingQuery(t *testing.T) {
	store := &fakeGraphStore{}
	router := newTestRouter(store, &fakeMessageStore{}, nil)

	w := doRequest(router, "GET", "/api/search", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, "validation_error", response["error"])
	assert.NotEmpty(t, response["message"])
	assert.Zero(t, store.searchCalls, "validation failures must not reach the store")
}

func TestSearch_NoMatchesIsSuccessful(t *testing.T) {
	router := newTestRouter(&fakeGraphStore{}, &fakeMessageStore{}, nil)

	w := doRequest(router, "GET", "/api/search?q=nothing", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, "nothing", response["query"])
	assert.Equal(t, float64(0), response["total"])
	assert.Equal(t, []interface{}{}, response["results"])
}

func TestSearch_CategoryFilterAppliesAfterLimit(t *testing.T) {
	store := &fakeGraphStore{
		searchResults: []graph.Content{
			{ID: "1", Title: "A", Category: "Ideas"},
			{ID: "2", Title: "B", Category: "Journal"},
			{ID: "3", Title: "C", Category: "Ideas"},
		},
	}
	router := newTestRouter(store, &fakeMessageStore{}, nil)

	w := doRequest(router, "GET", "/api/search?q=x&limit=2&category=Ideas", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	// Limit 2 keeps ids 1 and 2; the in-memory filter then leaves only id 1,
	// even though id 3 also matches the category.
	response := decodeBody(t, w)
	results := response["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Equal(t, float64(1), response["total"])
}

func TestSearch_CacheHitSkipsStore(t *testing.T) {
	store := &fakeGraphStore{searchResults: []graph.Content{{ID: "1", Title: "A"}}}
	cache := newFakeCache()
	router := newTestRouter(store, &fakeMessageStore{}, cache)

	w1 := doRequest(router, "GET", "/api/search?q=hello", nil)
	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, 1, store.searchCalls)

	w2 := doRequest(router, "GET", "/api/search?q=hello", nil)
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, 1, store.searchCalls, "second request must be served from cache")
	assert.Equal(t, w1.Body.String(), w2.Body.String())

	assert.Equal(t, 2, cache.incrs["search:popular:hello"], "every search increments popularity")
}

func TestListCategories(t *testing.T) {
	store := &fakeGraphStore{categories: []graph.Category{
		{ID: "cat-1", Name: "Ideas", ContentCount: 4},
		{ID: "cat-2", Name: "Journal", ContentCount: 2},
	}}
	router := newTestRouter(store, &fakeMessageStore{}, nil)

	w := doRequest(router, "GET", "/api/categories", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, float64(2), response["total"])
}

func TestCategoryContents_NotFound(t *testing.T) {
	store := &fakeGraphStore{categories: []graph.Category{{ID: "cat-1", Name: "Ideas"}}}
	router := newTestRouter(store, &fakeMessageStore{}, nil)

	w := doRequest(router, "GET", "/api/categories/unknown/contents", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, "not_found", response["error"])
}

func TestCategoryContents_OK(t *testing.T) {
	store := &fakeGraphStore{
		categories: []graph.Category{{ID: "cat-1", Name: "Ideas"}},
		contents: map[string][]graph.Content{
			"cat-1": {{ID: "c1", Title: "First"}, {ID: "c2", Title: "Second"}},
		},
	}
	router := newTestRouter(store, &fakeMessageStore{}, nil)

	w := doRequest(router, "GET", "/api/categories/cat-1/contents", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	category := response["category"].(map[string]interface{})
	assert.Equal(t, "Ideas", category["name"])
	assert.Equal(t, float64(2), response["total"])
}

func TestContentByID_NotFound(t *testing.T) {
	router := newTestRouter(&fakeGraphStore{}, &fakeMessageStore{}, nil)

	w := doRequest(router, "GET", "/api/conversations/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, "not_found", response["error"])
}

func TestGraphSample_ChainsWithinCategory(t *testing.T) {
	store := &fakeGraphStore{
		categories: []graph.Category{
			{ID: "cat-1", Name: "Ideas"},
			{ID: "cat-2", Name: "Journal"},
		},
		contents: map[string][]graph.Content{
			"cat-1": {{ID: "a", Title: "A", Content: "x"}, {ID: "b", Title: "B", Content: "y"}},
			"cat-2": {{ID: "c", Title: "C", Content: "z"}},
		},
	}
	router := newTestRouter(store, &fakeMessageStore{}, nil)

	w := doRequest(router, "GET", "/api/graph", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	nodes := response["nodes"].([]interface{})
	edges := response["edges"].([]interface{})
	assert.Len(t, nodes, 3)
	// One chain edge inside cat-1; no edge crosses into cat-2.
	require.Len(t, edges, 1)
	edge := edges[0].(map[string]interface{})
	assert.Equal(t, "a", edge["source"])
	assert.Equal(t, "b", edge["target"])
}

func TestGraphSample_RespectsNodeCap(t *testing.T) {
	store := &fakeGraphStore{
		categories: []graph.Category{
			{ID: "cat-1", Name: "Ideas"},
			{ID: "cat-2", Name: "Journal"},
		},
		contents: map[string][]graph.Content{
			"cat-1": {{ID: "a"}, {ID: "b"}, {ID: "c"}},
			"cat-2": {{ID: "d"}, {ID: "e"}},
		},
	}
	router := newTestRouter(store, &fakeMessageStore{}, nil)

	w := doRequest(router, "GET", "/api/graph?limit=2", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Len(t, response["nodes"].([]interface{}), 2)
}

func TestStats_IncludesTimelinePlaceholder(t *testing.T) {
	router := newTestRouter(&fakeGraphStore{}, &fakeMessageStore{}, nil)

	w := doRequest(router, "GET", "/api/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, float64(4), response["total_conversations"])
	assert.Equal(t, []interface{}{}, response["timeline"])
}

func TestListMessages_PassesQueryParams(t *testing.T) {
	messagesStore := &fakeMessageStore{}
	router := newTestRouter(&fakeGraphStore{}, messagesStore, nil)

	w := doRequest(router, "GET", "/api/corpus-callosum/messages?channel=research&limit=5&unread_only=true", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "research", messagesStore.lastChannel)
	assert.Equal(t, 5, messagesStore.lastLimit)
	assert.True(t, messagesStore.lastUnreadOnly)
}

func TestListMessages_Defaults(t *testing.T) {
	messagesStore := &fakeMessageStore{}
	router := newTestRouter(&fakeGraphStore{}, messagesStore, nil)

	w := doRequest(router, "GET", "/api/corpus-callosum/messages", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "general", messagesStore.lastChannel)
	assert.Equal(t, 50, messagesStore.lastLimit)
	assert.False(t, messagesStore.lastUnreadOnly)
}

func TestSendMessage_ValidationError(t *testing.T) {
	messagesStore := &fakeMessageStore{sendErr: errors.NewValidation("from_lobe_id", "required")}
	router := newTestRouter(&fakeGraphStore{}, messagesStore, nil)

	w := doRequest(router, "POST", "/api/corpus-callosum/send", []byte(`{"message":"hi"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, "validation_error", response["error"])
}

func TestSendMessage_OK(t *testing.T) {
	messagesStore := &fakeMessageStore{
		sendResult: &messaging.SendResult{ID: "msg_1_ab", Timestamp: "2026-08-26T10:00:00Z"},
	}
	router := newTestRouter(&fakeGraphStore{}, messagesStore, nil)

	body := []byte(`{"from_lobe_id":"user_001","from_name":"Carbon User","to_lobe_id":"claude_desktop","message":"Hello"}`)
	w := doRequest(router, "POST", "/api/corpus-callosum/send", body)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, "msg_1_ab", response["id"])
	assert.Equal(t, "sent", response["status"])
}

func TestGetThread_EmptyIsSuccessful(t *testing.T) {
	router := newTestRouter(&fakeGraphStore{}, &fakeMessageStore{}, nil)

	w := doRequest(router, "GET", "/api/corpus-callosum/thread/msg_root", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, "msg_root", response["message_id"])
	assert.Equal(t, []interface{}{}, response["replies"])
	assert.Equal(t, float64(0), response["total"])
}

func TestMarkRead_MalformedBody(t *testing.T) {
	router := newTestRouter(&fakeGraphStore{}, &fakeMessageStore{}, nil)

	w := doRequest(router, "POST", "/api/corpus-callosum/mark-read", []byte(`{"message_ids":"not-a-list"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, "validation_error", response["error"])
}

func TestMarkRead_OK(t *testing.T) {
	messagesStore := &fakeMessageStore{markedRead: 2}
	router := newTestRouter(&fakeGraphStore{}, messagesStore, nil)

	w := doRequest(router, "POST", "/api/corpus-callosum/mark-read", []byte(`{"message_ids":["a","b"]}`))
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, float64(2), response["updated"])
	assert.Equal(t, []string{"a", "b"}, messagesStore.lastMarkIDs)
}

func TestMessagingStats(t *testing.T) {
	messagesStore := &fakeMessageStore{stats: &messaging.Stats{
		TotalMessages: 10,
		UnreadCount:   3,
		Lobes:         []messaging.LobeActivity{},
	}}
	router := newTestRouter(&fakeGraphStore{}, messagesStore, nil)

	w := doRequest(router, "GET", "/api/corpus-callosum/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, float64(10), response["total_messages"])
	assert.Equal(t, float64(3), response["unread_count"])
}

func TestStoreFailureIsServerError(t *testing.T) {
	store := &fakeGraphStore{searchErr: errors.NewGraphQueryFailed("search", assert.AnError)}
	router := newTestRouter(store, &fakeMessageStore{}, nil)

	w := doRequest(router, "GET", "/api/search?q=x", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	response := decodeBody(t, w)
	assert.Equal(t, "internal_error", response["error"])
}
