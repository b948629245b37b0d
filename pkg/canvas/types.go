package canvas

import (
	"context"
	"net/url"
	"strconv"
)

// User is the authenticated Canvas user.
type User struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Course is one enrollment-visible course.
type Course struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	CourseCode    string `json:"course_code"`
	WorkflowState string `json:"workflow_state"`
}

// Module is one course module.
type Module struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	WorkflowState string `json:"workflow_state"`
	ItemsCount    int    `json:"items_count"`
}

// ModuleItem is one entry inside a module.
type ModuleItem struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Type      string `json:"type"`
	ContentID int64  `json:"content_id"`
	URL       string `json:"url"`
}

// File is one stored file.
type File struct {
	ID          int64  `json:"id"`
	DisplayName string `json:"display_name"`
	Filename    string `json:"filename"`
	Size        int64  `json:"size"`
	ContentType string `json:"content-type"`
	URL         string `json:"url"`
	ModifiedAt  string `json:"modified_at"`
}

// Folder is one folder in a course file tree.
type Folder struct {
	ID         int64  `json:"id"`
	FullName   string `json:"full_name"`
	FilesCount int    `json:"files_count"`
}

// ListCourses returns every course for the given enrollment state.
func (c *Client) ListCourses(ctx context.Context, enrollmentState string) ([]Course, error) {
	if enrollmentState == "" {
		enrollmentState = "active"
	}
	params := url.Values{
		"enrollment_state": {enrollmentState},
		"per_page":         {"50"},
	}
	return getPaginated[Course](ctx, c, "courses", params)
}

// ListModules returns every module of a course.
func (c *Client) ListModules(ctx context.Context, courseID int64) ([]Module, error) {
	params := url.Values{"per_page": {"50"}}
	return getPaginated[Module](ctx, c, "courses/"+strconv.FormatInt(courseID, 10)+"/modules", params)
}

// ListModuleItems returns every item of a module.
func (c *Client) ListModuleItems(ctx context.Context, courseID, moduleID int64) ([]ModuleItem, error) {
	params := url.Values{"per_page": {"50"}}
	endpoint := "courses/" + strconv.FormatInt(courseID, 10) + "/modules/" + strconv.FormatInt(moduleID, 10) + "/items"
	return getPaginated[ModuleItem](ctx, c, endpoint, params)
}

// ListCourseFiles returns every file of a course.
func (c *Client) ListCourseFiles(ctx context.Context, courseID int64) ([]File, error) {
	params := url.Values{"per_page": {"50"}}
	return getPaginated[File](ctx, c, "courses/"+strconv.FormatInt(courseID, 10)+"/files", params)
}

// GetFile returns one file by id.
func (c *Client) GetFile(ctx context.Context, fileID int64) (*File, error) {
	var file File
	if err := c.getJSON(ctx, "files/"+strconv.FormatInt(fileID, 10), nil, &file); err != nil {
		return nil, err
	}
	return &file, nil
}
