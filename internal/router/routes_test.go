package router_test

import (
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/darregistry/member-registry/go-api-server/internal/bootstrap"
	"github.com/darregistry/member-registry/go-api-server/internal/member"
	"github.com/darregistry/member-registry/go-api-server/internal/router"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/database"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/metrics"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/middleware"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/testutil"
	"github.com/darregistry/member-registry/go-api-server/internal/shared/validator"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupApp(t *testing.T) *gin.Engine {
	t.Helper()

	require.NoError(t, validator.RegisterAll())

	cfg := testutil.NewTestConfig()
	db := &database.DB{DB: testutil.SetupTestDB(t)}

	engine := bootstrap.NewBootstrap(cfg).SetupEngine()
	router.Setup(engine, cfg, db, metrics.NewRecorder(cfg.Metrics.Namespace))
	return engine
}

func TestHealth(t *testing.T) {
	engine := setupApp(t)

	recorder := testutil.ExecuteRequest(t, engine, testutil.TestRequest{Method: http.MethodGet, URL: "/health"})

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.NotEmpty(t, recorder.Header().Get(middleware.RequestIDHeader))

	var body struct {
		Status string `json:"status"`
		Checks struct {
			Database struct {
				Status string `json:"status"`
				Driver string `json:"driver"`
			} `json:"database"`
		} `json:"checks"`
	}
	testutil.ParseResponse(t, recorder, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "up", body.Checks.Database.Status)
	assert.Equal(t, "sqlite", body.Checks.Database.Driver)
}

func TestRequestIDIsPropagated(t *testing.T) {
	engine := setupApp(t)

	recorder := testutil.ExecuteRequest(t, engine, testutil.TestRequest{
		Method:  http.MethodGet,
		URL:     "/health",
		Headers: map[string]string{middleware.RequestIDHeader: "trace-abc-123"},
	})

	assert.Equal(t, "trace-abc-123", recorder.Header().Get(middleware.RequestIDHeader))
}

func TestMemberLifecycle(t *testing.T) {
	// Given: two members sharing a chapter and a patriot
	engine := setupApp(t)

	ids := make([]uint32, 0, 2)
	for _, name := range []string{"Alice", "Bob"} {
		recorder := testutil.ExecuteRequest(t, engine, testutil.TestRequest{
			Method: http.MethodPost,
			URL:    "/api/v1/members",
			Body:   member.MemberRequest{FirstName: name, LastName: "Smith", Phone: "555-1111"},
		})
		require.Equal(t, http.StatusCreated, recorder.Code)

		var created member.MemberResponse
		testutil.ParseResponse(t, recorder, &created)
		ids = append(ids, created.ID)
	}

	for _, id := range ids {
		recorder := testutil.ExecuteRequest(t, engine, testutil.TestRequest{
			Method: http.MethodPost,
			URL:    fmt.Sprintf("/api/v1/members/%d/chapter", id),
			Body:   member.ChapterRequest{Name: "Liberty", Number: "001"},
		})
		require.Less(t, recorder.Code, 300)

		recorder = testutil.ExecuteRequest(t, engine, testutil.TestRequest{
			Method: http.MethodPost,
			URL:    fmt.Sprintf("/api/v1/members/%d/patriots", id),
			Body:   member.PatriotRequest{FirstName: "George", LastName: "Washington", State: "VA", RankService: "Colonel"},
		})
		require.Less(t, recorder.Code, 300)
	}

	// When
	list := testutil.ExecuteRequest(t, engine, testutil.TestRequest{Method: http.MethodGet, URL: "/api/v1/members"})
	chapters := testutil.ExecuteRequest(t, engine, testutil.TestRequest{Method: http.MethodGet, URL: "/api/v1/chapters"})
	patriots := testutil.ExecuteRequest(t, engine, testutil.TestRequest{Method: http.MethodGet, URL: "/api/v1/patriots"})

	// Then: one shared chapter and one shared patriot
	require.Equal(t, http.StatusOK, list.Code)
	var members []member.MemberResponse
	testutil.ParseResponse(t, list, &members)
	require.Len(t, members, 2)
	require.NotNil(t, members[0].Chapter)
	require.NotNil(t, members[1].Chapter)
	assert.Equal(t, members[0].Chapter.ID, members[1].Chapter.ID)
	assert.Equal(t, members[0].Patriots[0].ID, members[1].Patriots[0].ID)

	var allChapters []member.ChapterResponse
	testutil.ParseResponse(t, chapters, &allChapters)
	assert.Len(t, allChapters, 1)

	var allPatriots []member.PatriotResponse
	testutil.ParseResponse(t, patriots, &allPatriots)
	assert.Len(t, allPatriots, 1)

	// When: the unconditional chapter delete runs
	deleted := testutil.ExecuteRequest(t, engine, testutil.TestRequest{
		Method: http.MethodDelete,
		URL:    fmt.Sprintf("/api/v1/chapters/%d", allChapters[0].ID),
	})

	// Then
	require.Equal(t, http.StatusOK, deleted.Code)
	var deleteResponse member.DeleteChapterResponse
	testutil.ParseResponse(t, deleted, &deleteResponse)
	assert.ElementsMatch(t, ids, deleteResponse.ClearedMemberIDs)

	unassigned := testutil.ExecuteRequest(t, engine, testutil.TestRequest{Method: http.MethodGet, URL: "/api/v1/patriots/unassigned"})
	var unassignedPatriots []member.PatriotResponse
	testutil.ParseResponse(t, unassigned, &unassignedPatriots)
	assert.Empty(t, unassignedPatriots)
}

func TestMetricsEndpoint(t *testing.T) {
	engine := setupApp(t)

	created := testutil.ExecuteRequest(t, engine, testutil.TestRequest{
		Method: http.MethodPost,
		URL:    "/api/v1/patriots",
		Body:   member.PatriotRequest{FirstName: "Nathan", LastName: "Hale", State: "CT", RankService: "Captain"},
	})
	require.Equal(t, http.StatusCreated, created.Code)

	recorder := testutil.ExecuteRequest(t, engine, testutil.TestRequest{Method: http.MethodGet, URL: "/metrics"})
	require.Equal(t, http.StatusOK, recorder.Code)

	body, err := io.ReadAll(recorder.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), "test_relationship_events_total"))
	assert.True(t, strings.Contains(string(body), "test_operation_duration_seconds"))
}
