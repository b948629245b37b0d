package gateway

import (
	"context"
	"fmt"

	"github.com/avasquez/canvasagent/pkg/canvas"
	"github.com/avasquez/canvasagent/pkg/downloader"
)

// CourseEntry is one row of the course catalog sent to the client. The
// index is 1-based and valid only against the catalog it arrived with.
type CourseEntry struct {
	Index int    `json:"index"`
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Code  string `json:"code"`
}

// handleDownload runs the two-round-trip download sub-protocol. It
// returns the response payload and the catalog to remember for a
// follow-up index selection.
func (s *Server) handleDownload(ctx context.Context, msg map[string]interface{}, pending []canvas.Course) (map[string]interface{}, []canvas.Course) {
	skipDownload, _ := msg["skip_download"].(bool)

	courseIDs, hasIDs, err := intList(msg, "course_ids")
	if err != nil {
		return errorResponse(err), pending
	}
	indices, hasIndices, err := intList(msg, "course_indices")
	if err != nil {
		return errorResponse(err), pending
	}

	if hasIndices {
		resolved, err := resolveIndices(indices, pending)
		if err != nil {
			return errorResponse(err), pending
		}
		courseIDs = resolved
	}

	if raw, ok := msg["auto_confirm"]; ok {
		if _, isBool := raw.(bool); !isBool {
			return errorResponse(fmt.Errorf("auto_confirm must be a boolean.")), pending
		}
	}

	// No selector: fetch the catalog and wait for a follow-up.
	if !hasIDs && !hasIndices && !skipDownload {
		courses, err := s.fetchCourses(ctx)
		if err != nil {
			return errorResponse(fmt.Errorf("Failed to fetch courses: %v", err)), pending
		}

		entries := make([]CourseEntry, len(courses))
		for i, course := range courses {
			entries[i] = CourseEntry{
				Index: i + 1,
				ID:    course.ID,
				Name:  course.Name,
				Code:  course.CourseCode,
			}
		}
		return map[string]interface{}{"status": "course_list", "courses": entries}, courses
	}

	if len(courseIDs) == 0 && !skipDownload {
		return errorResponse(fmt.Errorf("Provide course_ids or course_indices after requesting the course list.")), pending
	}

	report, err := s.runDownload(ctx, downloader.Options{
		CourseIDs:    courseIDs,
		SkipDownload: skipDownload,
	})
	if err != nil {
		return errorResponse(err), nil
	}

	return map[string]interface{}{"status": "completed", "stats": report}, nil
}

// intList reads an optional list-of-integers field.
func intList(msg map[string]interface{}, key string) ([]int64, bool, error) {
	raw, present := msg[key]
	if !present || raw == nil {
		return nil, false, nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		return nil, false, fmt.Errorf("%s must be a list of integers.", key)
	}

	values := make([]int64, 0, len(list))
	for _, item := range list {
		switch v := item.(type) {
		case float64:
			values = append(values, int64(v))
		default:
			return nil, false, fmt.Errorf("%s must contain valid integers.", key)
		}
	}
	return values, true, nil
}

// resolveIndices maps 1-based catalog indices to course ids, dropping
// duplicates while preserving order. Indices require a catalog fetched
// earlier in the same session.
func resolveIndices(indices []int64, pending []canvas.Course) ([]int64, error) {
	if pending == nil {
		return nil, fmt.Errorf("Course list not initialized. Request the course list first.")
	}
	if len(indices) == 0 {
		return nil, fmt.Errorf("course_indices cannot be empty.")
	}

	var invalid []int64
	for _, idx := range indices {
		if idx < 1 || idx > int64(len(pending)) {
			invalid = append(invalid, idx)
		}
	}
	if len(invalid) > 0 {
		return nil, fmt.Errorf("course_indices out of range: %v", invalid)
	}

	seen := map[int64]bool{}
	var ids []int64
	for _, idx := range indices {
		if seen[idx] {
			continue
		}
		seen[idx] = true
		ids = append(ids, pending[idx-1].ID)
	}
	return ids, nil
}

func errorResponse(err error) map[string]interface{} {
	return map[string]interface{}{"error": err.Error()}
}
