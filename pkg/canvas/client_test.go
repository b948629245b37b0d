package canvas

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testClient points a Client at a local test server, bypassing the https
// normalization applied to real Canvas hosts.
func testClient(srv *httptest.Server) *Client {
	return &Client{
		baseURL:    srv.URL + "/api/v1",
		token:      "test-token",
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func TestNewClient(t *testing.T) {
	t.Run("should require a token", func(t *testing.T) {
		_, err := NewClient("https://canvas.example.edu", "")
		assert.Error(t, err)
	})

	t.Run("should force https", func(t *testing.T) {
		c, err := NewClient("http://canvas.example.edu", "tok")
		require.NoError(t, err)
		assert.Equal(t, "https://canvas.example.edu/api/v1", c.BaseURL())
	})

	t.Run("should add a scheme when missing", func(t *testing.T) {
		c, err := NewClient("canvas.example.edu/", "tok")
		require.NoError(t, err)
		assert.Equal(t, "https://canvas.example.edu/api/v1", c.BaseURL())
	})

	t.Run("should default the host", func(t *testing.T) {
		c, err := NewClient("", "tok")
		require.NoError(t, err)
		assert.Equal(t, "https://canvas.instructure.com/api/v1", c.BaseURL())
	})
}

func TestCheckConnection(t *testing.T) {
	t.Run("should return the current user", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/api/v1/users/self", r.URL.Path)
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			fmt.Fprint(w, `{"id": 42, "name": "Test Student"}`)
		}))
		defer srv.Close()

		user, err := testClient(srv).CheckConnection(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(42), user.ID)
		assert.Equal(t, "Test Student", user.Name)
	})

	t.Run("should report not found", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()

		_, err := testClient(srv).CheckConnection(context.Background())
		assert.ErrorContains(t, err, "not found")
	})

	t.Run("should include the status on other failures", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"errors":[{"message":"Invalid access token."}]}`)
		}))
		defer srv.Close()

		_, err := testClient(srv).CheckConnection(context.Background())
		assert.ErrorContains(t, err, "status 401")
	})
}

func TestPagination(t *testing.T) {
	t.Run("should follow rel next links", func(t *testing.T) {
		var srv *httptest.Server
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "2" {
				fmt.Fprint(w, `[{"id": 2, "name": "Course Two"}]`)
				return
			}
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/courses?page=2>; rel="next"`, srv.URL))
			fmt.Fprint(w, `[{"id": 1, "name": "Course One"}]`)
		}))
		defer srv.Close()

		courses, err := testClient(srv).ListCourses(context.Background(), "active")
		require.NoError(t, err)
		require.Len(t, courses, 2)
		assert.Equal(t, "Course One", courses[0].Name)
		assert.Equal(t, "Course Two", courses[1].Name)
	})

	t.Run("should stop without a next link", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `[{"id": 7, "name": "Only Course"}]`)
		}))
		defer srv.Close()

		courses, err := testClient(srv).ListCourses(context.Background(), "")
		require.NoError(t, err)
		require.Len(t, courses, 1)
		assert.Equal(t, int64(7), courses[0].ID)
	})
}

func TestNextPageURL(t *testing.T) {
	t.Run("should extract the next link", func(t *testing.T) {
		link := `<https://canvas.example.edu/api/v1/courses?page=2>; rel="next", <https://canvas.example.edu/api/v1/courses?page=5>; rel="last"`
		assert.Equal(t, "https://canvas.example.edu/api/v1/courses?page=2", nextPageURL(link))
	})

	t.Run("should return empty without a next relation", func(t *testing.T) {
		link := `<https://canvas.example.edu/api/v1/courses?page=1>; rel="first"`
		assert.Equal(t, "", nextPageURL(link))
	})

	t.Run("should handle an empty header", func(t *testing.T) {
		assert.Equal(t, "", nextPageURL(""))
	})
}
