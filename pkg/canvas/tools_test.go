package canvas

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolSet(t *testing.T) {
	t.Run("should expose every student tool with a unique name", func(t *testing.T) {
		client, err := NewClient("canvas.example.edu", "tok")
		require.NoError(t, err)

		tools := Tools(client)
		assert.Len(t, tools, 19)

		seen := map[string]bool{}
		for _, tl := range tools {
			assert.NotEmpty(t, tl.Name())
			assert.NotEmpty(t, tl.Description())
			assert.False(t, seen[tl.Name()], "duplicate tool name %s", tl.Name())
			seen[tl.Name()] = true
		}
	})
}

func TestListCoursesTool(t *testing.T) {
	t.Run("should format the course list", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/courses", r.URL.Path)
			assert.Equal(t, "active", r.URL.Query().Get("enrollment_state"))
			fmt.Fprint(w, `[
				{"id": 101, "name": "Operating Systems", "course_code": "CS350"},
				{"id": 102, "name": "Databases", "course_code": "CS348"}
			]`)
		}))
		defer srv.Close()

		tl := &listCoursesTool{client: testClient(srv)}
		result := tl.Forward(context.Background(), map[string]interface{}{})
		require.False(t, result.Failed())

		text := result.Text()
		assert.Contains(t, text, "Found 2 courses")
		assert.Contains(t, text, "[101] Operating Systems (CS350)")
		assert.Contains(t, text, "[102] Databases (CS348)")
	})

	t.Run("should report upstream errors through the result", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		tl := &listCoursesTool{client: testClient(srv)}
		result := tl.Forward(context.Background(), map[string]interface{}{})
		assert.True(t, result.Failed())
		assert.Contains(t, result.Error, "failed to list courses")
	})
}

func TestGetAssignmentsTool(t *testing.T) {
	t.Run("should include submission status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/courses/101/assignments", r.URL.Path)
			assert.Equal(t, "submission", r.URL.Query().Get("include[]"))
			fmt.Fprint(w, `[
				{"id": 9, "name": "Lab 1", "due_at": "2026-09-15T23:59:00Z",
				 "points_possible": 10, "submission": {"workflow_state": "submitted"}}
			]`)
		}))
		defer srv.Close()

		tl := &getAssignmentsTool{client: testClient(srv)}
		result := tl.Forward(context.Background(), map[string]interface{}{"course_id": "101"})
		require.False(t, result.Failed())
		assert.Contains(t, result.Text(), "status: submitted")
		assert.Contains(t, result.Text(), "due: 2026-09-15T23:59:00Z")
	})
}

func TestSearchFilesTool(t *testing.T) {
	t.Run("should report an empty result set", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "lecture", r.URL.Query().Get("search_term"))
			fmt.Fprint(w, `[]`)
		}))
		defer srv.Close()

		tl := &searchFilesTool{client: testClient(srv)}
		result := tl.Forward(context.Background(), map[string]interface{}{
			"course_id":   "101",
			"search_term": "lecture",
		})
		require.False(t, result.Failed())
		assert.Contains(t, result.Text(), "no matching files found")
	})
}

func TestArgHelpers(t *testing.T) {
	t.Run("should tolerate nulls and missing keys", func(t *testing.T) {
		args := map[string]interface{}{
			"s":    nil,
			"b":    true,
			"n":    float64(3),
			"text": "hi",
		}
		assert.Equal(t, "", stringArg(args, "s"))
		assert.Equal(t, "", stringArg(args, "missing"))
		assert.Equal(t, "hi", stringArg(args, "text"))
		assert.True(t, boolArg(args, "b", false))
		assert.False(t, boolArg(args, "missing", false))
		assert.Equal(t, 3, intArg(args, "n", 0))
		assert.Equal(t, 5, intArg(args, "missing", 5))
	})
}
