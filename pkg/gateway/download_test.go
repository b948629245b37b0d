package gateway

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasquez/canvasagent/pkg/canvas"
	"github.com/avasquez/canvasagent/pkg/downloader"
)

func newDownloadServer(courses []canvas.Course, fetchErr error) (*Server, *downloader.Options) {
	var got downloader.Options
	s := &Server{
		logger: zerolog.Nop(),
		fetchCourses: func(ctx context.Context) ([]canvas.Course, error) {
			return courses, fetchErr
		},
		runDownload: func(ctx context.Context, opts downloader.Options) (*downloader.Report, error) {
			got = opts
			return &downloader.Report{Courses: len(opts.CourseIDs)}, nil
		},
	}
	return s, &got
}

func TestHandleDownload(t *testing.T) {
	catalog := []canvas.Course{
		{ID: 101, Name: "Operating Systems", CourseCode: "CS350"},
		{ID: 202, Name: "Databases", CourseCode: "CS348"},
		{ID: 303, Name: "Compilers", CourseCode: "CS444"},
	}

	t.Run("should return the catalog when no selector is given", func(t *testing.T) {
		s, _ := newDownloadServer(catalog, nil)

		resp, pending := s.handleDownload(context.Background(), map[string]interface{}{"type": "download"}, nil)

		assert.Equal(t, "course_list", resp["status"])
		entries, ok := resp["courses"].([]CourseEntry)
		require.True(t, ok)
		require.Len(t, entries, 3)
		assert.Equal(t, CourseEntry{Index: 1, ID: 101, Name: "Operating Systems", Code: "CS350"}, entries[0])
		assert.Equal(t, 3, entries[2].Index)
		assert.Equal(t, catalog, pending)
	})

	t.Run("should surface a catalog fetch failure", func(t *testing.T) {
		s, _ := newDownloadServer(nil, fmt.Errorf("canvas unreachable"))

		resp, pending := s.handleDownload(context.Background(), map[string]interface{}{}, nil)

		assert.Equal(t, "Failed to fetch courses: canvas unreachable", resp["error"])
		assert.Nil(t, pending)
	})

	t.Run("should download by explicit course ids", func(t *testing.T) {
		s, got := newDownloadServer(catalog, nil)

		resp, pending := s.handleDownload(context.Background(), map[string]interface{}{
			"course_ids": []interface{}{float64(101), float64(303)},
		}, nil)

		assert.Equal(t, "completed", resp["status"])
		assert.Equal(t, []int64{101, 303}, got.CourseIDs)
		assert.Nil(t, pending)
	})

	t.Run("should resolve indices against the pending catalog", func(t *testing.T) {
		s, got := newDownloadServer(catalog, nil)

		resp, pending := s.handleDownload(context.Background(), map[string]interface{}{
			"course_indices": []interface{}{float64(3), float64(1), float64(3)},
		}, catalog)

		assert.Equal(t, "completed", resp["status"])
		assert.Equal(t, []int64{303, 101}, got.CourseIDs)
		assert.Nil(t, pending)
	})

	t.Run("should reject indices without a prior catalog", func(t *testing.T) {
		s, _ := newDownloadServer(catalog, nil)

		resp, _ := s.handleDownload(context.Background(), map[string]interface{}{
			"course_indices": []interface{}{float64(1)},
		}, nil)

		assert.Equal(t, "Course list not initialized. Request the course list first.", resp["error"])
	})

	t.Run("should reject out of range indices", func(t *testing.T) {
		s, _ := newDownloadServer(catalog, nil)

		resp, pending := s.handleDownload(context.Background(), map[string]interface{}{
			"course_indices": []interface{}{float64(0), float64(4)},
		}, catalog)

		assert.Equal(t, "course_indices out of range: [0 4]", resp["error"])
		assert.Equal(t, catalog, pending)
	})

	t.Run("should reject empty indices", func(t *testing.T) {
		s, _ := newDownloadServer(catalog, nil)

		resp, _ := s.handleDownload(context.Background(), map[string]interface{}{
			"course_indices": []interface{}{},
		}, catalog)

		assert.Equal(t, "course_indices cannot be empty.", resp["error"])
	})

	t.Run("should reject a non-list selector", func(t *testing.T) {
		s, _ := newDownloadServer(catalog, nil)

		resp, _ := s.handleDownload(context.Background(), map[string]interface{}{
			"course_ids": "all",
		}, nil)

		assert.Equal(t, "course_ids must be a list of integers.", resp["error"])
	})

	t.Run("should reject non-integer index values", func(t *testing.T) {
		s, _ := newDownloadServer(catalog, nil)

		resp, _ := s.handleDownload(context.Background(), map[string]interface{}{
			"course_indices": []interface{}{"first"},
		}, catalog)

		assert.Equal(t, "course_indices must contain valid integers.", resp["error"])
	})

	t.Run("should reject a non-boolean auto_confirm", func(t *testing.T) {
		s, _ := newDownloadServer(catalog, nil)

		resp, _ := s.handleDownload(context.Background(), map[string]interface{}{
			"auto_confirm": "yes",
		}, nil)

		assert.Equal(t, "auto_confirm must be a boolean.", resp["error"])
	})

	t.Run("should require a selection after the catalog round", func(t *testing.T) {
		s, _ := newDownloadServer(catalog, nil)

		resp, _ := s.handleDownload(context.Background(), map[string]interface{}{
			"course_ids": []interface{}{},
		}, catalog)

		assert.Equal(t, "Provide course_ids or course_indices after requesting the course list.", resp["error"])
	})

	t.Run("should run upload-only with skip_download", func(t *testing.T) {
		s, got := newDownloadServer(catalog, nil)

		resp, _ := s.handleDownload(context.Background(), map[string]interface{}{
			"skip_download": true,
		}, nil)

		assert.Equal(t, "completed", resp["status"])
		assert.True(t, got.SkipDownload)
		assert.Empty(t, got.CourseIDs)
	})
}
