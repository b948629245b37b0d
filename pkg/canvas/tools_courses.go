package canvas

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/avasquez/canvasagent/pkg/tool"
)

type listCoursesTool struct {
	client *Client
}

func (t *listCoursesTool) Name() string { return "canvas_list_courses" }

func (t *listCoursesTool) Description() string {
	return "List the student's enrolled courses with their names, ids, codes and enrollment state"
}

func (t *listCoursesTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "enrollment_state", Type: "string", Description: "Enrollment state filter: active or completed, defaults to active", Nullable: true},
		{Name: "include", Type: "string", Description: "Extra fields to include: total_students, teachers or syllabus_body", Nullable: true},
	}
}

func (t *listCoursesTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	state := stringArg(args, "enrollment_state")
	if state == "" {
		state = "active"
	}
	params := url.Values{
		"enrollment_state": {state},
		"per_page":         {"50"},
	}
	if include := stringArg(args, "include"); include != "" {
		params.Set("include[]", include)
	}

	var courses []map[string]interface{}
	if err := t.client.getJSON(ctx, "courses", params, &courses); err != nil {
		return tool.Fail("failed to list courses: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d courses:\n", len(courses))
	for _, course := range courses {
		fmt.Fprintf(&b, "- [%s] %s (%s)\n",
			fieldID(course, "id"),
			fieldString(course, "name", "unnamed"),
			fieldString(course, "course_code", "no code"))
	}
	return tool.Ok(b.String())
}

type getAssignmentsTool struct {
	client *Client
}

func (t *getAssignmentsTool) Name() string { return "canvas_get_assignments" }

func (t *getAssignmentsTool) Description() string {
	return "List a course's assignments with due dates, points and submission status"
}

func (t *getAssignmentsTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "course_id", Type: "string", Description: "Course id", Required: true},
		{Name: "include_submission", Type: "boolean", Description: "Include the student's submission state, defaults to true", Nullable: true},
	}
}

func (t *getAssignmentsTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	courseID := stringArg(args, "course_id")
	params := url.Values{"per_page": {"50"}}
	if boolArg(args, "include_submission", true) {
		params.Set("include[]", "submission")
	}

	var assignments []map[string]interface{}
	if err := t.client.getJSON(ctx, "courses/"+courseID+"/assignments", params, &assignments); err != nil {
		return tool.Fail("failed to get assignments: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Course %s has %d assignments:\n", courseID, len(assignments))
	for _, a := range assignments {
		status := "unsubmitted"
		if submission, ok := a["submission"].(map[string]interface{}); ok {
			status = fieldString(submission, "workflow_state", "unsubmitted")
		}
		fmt.Fprintf(&b, "- [%s] %s (due: %s, points: %g, status: %s)\n",
			fieldID(a, "id"),
			fieldString(a, "name", "unnamed"),
			fieldString(a, "due_at", "no due date"),
			fieldNumber(a, "points_possible"),
			status)
	}
	return tool.Ok(b.String())
}

type getModulesTool struct {
	client *Client
}

func (t *getModulesTool) Name() string { return "canvas_get_modules" }

func (t *getModulesTool) Description() string {
	return "List a course's modules and their content structure"
}

func (t *getModulesTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "course_id", Type: "string", Description: "Course id", Required: true},
	}
}

func (t *getModulesTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	courseID := stringArg(args, "course_id")

	var modules []map[string]interface{}
	if err := t.client.getJSON(ctx, "courses/"+courseID+"/modules", url.Values{"per_page": {"50"}}, &modules); err != nil {
		return tool.Fail("failed to get modules: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Modules of course %s:\n", courseID)
	for _, m := range modules {
		fmt.Fprintf(&b, "\nModule [%s]: %s\n", fieldID(m, "id"), fieldString(m, "name", "unnamed"))
		fmt.Fprintf(&b, "  state: %s\n", fieldString(m, "workflow_state", "unknown"))
		fmt.Fprintf(&b, "  items: %.0f\n", fieldNumber(m, "items_count"))
	}
	return tool.Ok(b.String())
}

type getModuleItemsTool struct {
	client *Client
}

func (t *getModuleItemsTool) Name() string { return "canvas_get_module_items" }

func (t *getModuleItemsTool) Description() string {
	return "List the items inside one module: files, pages, assignments, discussions and links"
}

func (t *getModuleItemsTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "course_id", Type: "string", Description: "Course id", Required: true},
		{Name: "module_id", Type: "string", Description: "Module id", Required: true},
	}
}

func (t *getModuleItemsTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	courseID := stringArg(args, "course_id")
	moduleID := stringArg(args, "module_id")

	var items []map[string]interface{}
	endpoint := "courses/" + courseID + "/modules/" + moduleID + "/items"
	if err := t.client.getJSON(ctx, endpoint, url.Values{"per_page": {"50"}}, &items); err != nil {
		return tool.Fail("failed to get module items: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Items of module %s:\n", moduleID)
	for _, item := range items {
		fmt.Fprintf(&b, "- [%s] %s (%s)\n",
			fieldID(item, "id"),
			fieldString(item, "title", "untitled"),
			fieldString(item, "type", "unknown"))
	}
	return tool.Ok(b.String())
}

type getGradesTool struct {
	client *Client
}

func (t *getGradesTool) Name() string { return "canvas_get_grades" }

func (t *getGradesTool) Description() string {
	return "Get the student's current and final grades for one course"
}

func (t *getGradesTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "course_id", Type: "string", Description: "Course id", Required: true},
	}
}

func (t *getGradesTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	courseID := stringArg(args, "course_id")

	user, err := t.client.CheckConnection(ctx)
	if err != nil {
		return tool.Fail("failed to get current user: %v", err)
	}

	params := url.Values{"user_id": {fmt.Sprintf("%d", user.ID)}}
	var enrollments []map[string]interface{}
	if err := t.client.getJSON(ctx, "courses/"+courseID+"/enrollments", params, &enrollments); err != nil {
		return tool.Fail("failed to get grades: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Grades for course %s:\n", courseID)
	for _, enrollment := range enrollments {
		grades, _ := enrollment["grades"].(map[string]interface{})
		if grades == nil {
			grades = map[string]interface{}{}
		}
		fmt.Fprintf(&b, "current grade: %s\n", fieldString(grades, "current_grade", "none"))
		fmt.Fprintf(&b, "current score: %g\n", fieldNumber(grades, "current_score"))
		fmt.Fprintf(&b, "final grade: %s\n", fieldString(grades, "final_grade", "none"))
		fmt.Fprintf(&b, "final score: %g\n", fieldNumber(grades, "final_score"))
	}
	return tool.Ok(b.String())
}

type getPagesTool struct {
	client *Client
}

func (t *getPagesTool) Name() string { return "canvas_get_pages" }

func (t *getPagesTool) Description() string {
	return "List a course's wiki pages"
}

func (t *getPagesTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "course_id", Type: "string", Description: "Course id", Required: true},
	}
}

func (t *getPagesTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	courseID := stringArg(args, "course_id")

	var pages []map[string]interface{}
	if err := t.client.getJSON(ctx, "courses/"+courseID+"/pages", url.Values{"per_page": {"50"}}, &pages); err != nil {
		return tool.Fail("failed to get pages: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Pages of course %s:\n", courseID)
	for _, page := range pages {
		fmt.Fprintf(&b, "- %s (url: %s, updated: %s)\n",
			fieldString(page, "title", "untitled"),
			fieldString(page, "url", "?"),
			fieldString(page, "updated_at", "unknown"))
	}
	return tool.Ok(b.String())
}

type getPageContentTool struct {
	client *Client
}

func (t *getPageContentTool) Name() string { return "canvas_get_page_content" }

func (t *getPageContentTool) Description() string {
	return "Get the full body of one wiki page"
}

func (t *getPageContentTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "course_id", Type: "string", Description: "Course id", Required: true},
		{Name: "page_url", Type: "string", Description: "Page URL slug or title", Required: true},
	}
}

func (t *getPageContentTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	courseID := stringArg(args, "course_id")
	pageURL := stringArg(args, "page_url")

	var page map[string]interface{}
	if err := t.client.getJSON(ctx, "courses/"+courseID+"/pages/"+pageURL, nil, &page); err != nil {
		return tool.Fail("failed to get page content: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Page: %s\n", fieldString(page, "title", "untitled"))
	fmt.Fprintf(&b, "Updated: %s\n\n", fieldString(page, "updated_at", "unknown"))
	fmt.Fprintf(&b, "Content:\n%s\n", fieldString(page, "body", "no content"))
	return tool.Ok(b.String())
}

type getQuizzesTool struct {
	client *Client
}

func (t *getQuizzesTool) Name() string { return "canvas_get_quizzes" }

func (t *getQuizzesTool) Description() string {
	return "List a course's quizzes with their type, points and due dates"
}

func (t *getQuizzesTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "course_id", Type: "string", Description: "Course id", Required: true},
	}
}

func (t *getQuizzesTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	courseID := stringArg(args, "course_id")

	var quizzes []map[string]interface{}
	if err := t.client.getJSON(ctx, "courses/"+courseID+"/quizzes", url.Values{"per_page": {"50"}}, &quizzes); err != nil {
		return tool.Fail("failed to get quizzes: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Quizzes of course %s:\n", courseID)
	for _, quiz := range quizzes {
		fmt.Fprintf(&b, "- [%s] %s (type: %s, points: %g, due: %s)\n",
			fieldID(quiz, "id"),
			fieldString(quiz, "title", "untitled"),
			fieldString(quiz, "quiz_type", "unknown"),
			fieldNumber(quiz, "points_possible"),
			fieldString(quiz, "due_at", "no due date"))
	}
	return tool.Ok(b.String())
}
