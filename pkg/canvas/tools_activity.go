package canvas

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/avasquez/canvasagent/pkg/tool"
)

type getDiscussionsTool struct {
	client *Client
}

func (t *getDiscussionsTool) Name() string { return "canvas_get_discussions" }

func (t *getDiscussionsTool) Description() string {
	return "List a course's discussion topics"
}

func (t *getDiscussionsTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "course_id", Type: "string", Description: "Course id", Required: true},
	}
}

func (t *getDiscussionsTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	courseID := stringArg(args, "course_id")

	var topics []map[string]interface{}
	if err := t.client.getJSON(ctx, "courses/"+courseID+"/discussion_topics", url.Values{"per_page": {"50"}}, &topics); err != nil {
		return tool.Fail("failed to get discussions: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Discussions of course %s:\n", courseID)
	for _, topic := range topics {
		fmt.Fprintf(&b, "- [%s] %s (posted: %s, replies: %.0f)\n",
			fieldID(topic, "id"),
			fieldString(topic, "title", "untitled"),
			fieldString(topic, "posted_at", "unknown"),
			fieldNumber(topic, "discussion_subentry_count"))
	}
	return tool.Ok(b.String())
}

type getAnnouncementsTool struct {
	client *Client
}

func (t *getAnnouncementsTool) Name() string { return "canvas_get_announcements" }

func (t *getAnnouncementsTool) Description() string {
	return "Get the latest announcements across courses"
}

func (t *getAnnouncementsTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "context_codes", Type: "string", Description: "Comma separated course contexts like course_123,course_456; leave empty for all courses", Nullable: true},
	}
}

func (t *getAnnouncementsTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	params := url.Values{"per_page": {"20"}}
	if codes := stringArg(args, "context_codes"); codes != "" {
		for _, code := range strings.Split(codes, ",") {
			params.Add("context_codes[]", strings.TrimSpace(code))
		}
	}

	var announcements []map[string]interface{}
	if err := t.client.getJSON(ctx, "announcements", params, &announcements); err != nil {
		return tool.Fail("failed to get announcements: %v", err)
	}

	var b strings.Builder
	b.WriteString("Latest announcements:\n")
	for _, a := range announcements {
		fmt.Fprintf(&b, "\ntitle: %s\n", fieldString(a, "title", "untitled"))
		fmt.Fprintf(&b, "posted: %s\n", fieldString(a, "posted_at", "unknown"))
		fmt.Fprintf(&b, "message: %s\n", truncate(fieldString(a, "message", "no content"), 200))
	}
	return tool.Ok(b.String())
}

type getCalendarEventsTool struct {
	client *Client
}

func (t *getCalendarEventsTool) Name() string { return "canvas_get_calendar_events" }

func (t *getCalendarEventsTool) Description() string {
	return "Get the student's calendar events, including course activities and due dates"
}

func (t *getCalendarEventsTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "start_date", Type: "string", Description: "Start date as YYYY-MM-DD", Nullable: true},
		{Name: "end_date", Type: "string", Description: "End date as YYYY-MM-DD", Nullable: true},
	}
}

func (t *getCalendarEventsTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	params := url.Values{"per_page": {"50"}}
	if start := stringArg(args, "start_date"); start != "" {
		params.Set("start_date", start)
	}
	if end := stringArg(args, "end_date"); end != "" {
		params.Set("end_date", end)
	}

	var events []map[string]interface{}
	if err := t.client.getJSON(ctx, "calendar_events", params, &events); err != nil {
		return tool.Fail("failed to get calendar events: %v", err)
	}

	var b strings.Builder
	b.WriteString("Calendar events:\n")
	for _, event := range events {
		fmt.Fprintf(&b, "\n- %s\n", fieldString(event, "title", "untitled"))
		fmt.Fprintf(&b, "  time: %s\n", fieldString(event, "start_at", "unknown"))
		fmt.Fprintf(&b, "  type: %s\n", fieldString(event, "type", "unknown"))
		if desc := fieldString(event, "description", ""); desc != "" {
			fmt.Fprintf(&b, "  description: %s\n", truncate(desc, 100))
		}
	}
	return tool.Ok(b.String())
}

type getTodoItemsTool struct {
	client *Client
}

func (t *getTodoItemsTool) Name() string { return "canvas_get_todo_items" }

func (t *getTodoItemsTool) Description() string {
	return "Get the student's todo list, including upcoming assignment deadlines"
}

func (t *getTodoItemsTool) Parameters() []tool.Parameter { return nil }

func (t *getTodoItemsTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	var items []map[string]interface{}
	if err := t.client.getJSON(ctx, "users/self/todo", nil, &items); err != nil {
		return tool.Fail("failed to get todo items: %v", err)
	}

	var b strings.Builder
	b.WriteString("Todo items:\n")
	for _, item := range items {
		assignment, _ := item["assignment"].(map[string]interface{})
		if assignment == nil {
			assignment = map[string]interface{}{}
		}
		fmt.Fprintf(&b, "\n- %s\n", fieldString(assignment, "name", "unknown task"))
		fmt.Fprintf(&b, "  course: %s\n", fieldString(item, "context_name", "unknown"))
		fmt.Fprintf(&b, "  due: %s\n", fieldString(assignment, "due_at", "no due date"))
		fmt.Fprintf(&b, "  points: %g\n", fieldNumber(assignment, "points_possible"))
	}
	return tool.Ok(b.String())
}

type getUpcomingEventsTool struct {
	client *Client
}

func (t *getUpcomingEventsTool) Name() string { return "canvas_get_upcoming_events" }

func (t *getUpcomingEventsTool) Description() string {
	return "Get the student's upcoming events and activities"
}

func (t *getUpcomingEventsTool) Parameters() []tool.Parameter { return nil }

func (t *getUpcomingEventsTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	var events []map[string]interface{}
	if err := t.client.getJSON(ctx, "users/self/upcoming_events", nil, &events); err != nil {
		return tool.Fail("failed to get upcoming events: %v", err)
	}

	var b strings.Builder
	b.WriteString("Upcoming events:\n")
	for _, event := range events {
		fmt.Fprintf(&b, "\n- %s\n", fieldString(event, "title", "unknown event"))
		fmt.Fprintf(&b, "  time: %s\n", fieldString(event, "start_at", "unknown"))
		fmt.Fprintf(&b, "  type: %s\n", fieldString(event, "type", "unknown"))
	}
	return tool.Ok(b.String())
}

type getGroupsTool struct {
	client *Client
}

func (t *getGroupsTool) Name() string { return "canvas_get_groups" }

func (t *getGroupsTool) Description() string {
	return "List the groups the student belongs to"
}

func (t *getGroupsTool) Parameters() []tool.Parameter { return nil }

func (t *getGroupsTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	var groups []map[string]interface{}
	if err := t.client.getJSON(ctx, "users/self/groups", nil, &groups); err != nil {
		return tool.Fail("failed to get groups: %v", err)
	}

	var b strings.Builder
	b.WriteString("My groups:\n")
	for _, group := range groups {
		fmt.Fprintf(&b, "\n- [%s] %s\n", fieldID(group, "id"), fieldString(group, "name", "unnamed"))
		fmt.Fprintf(&b, "  members: %.0f\n", fieldNumber(group, "members_count"))
		fmt.Fprintf(&b, "  course: %s\n", fieldID(group, "course_id"))
	}
	return tool.Ok(b.String())
}
