package canvas

import (
	"fmt"

	"github.com/avasquez/canvasagent/pkg/tool"
)

// Tools returns the full student tool set backed by one shared client.
func Tools(client *Client) []tool.Tool {
	return []tool.Tool{
		&listCoursesTool{client: client},
		&getAssignmentsTool{client: client},
		&getModulesTool{client: client},
		&getModuleItemsTool{client: client},
		&getFilesTool{client: client},
		&getFileInfoTool{client: client},
		&getFoldersTool{client: client},
		&getFolderFilesTool{client: client},
		&searchFilesTool{client: client},
		&getDiscussionsTool{client: client},
		&getAnnouncementsTool{client: client},
		&getCalendarEventsTool{client: client},
		&getGradesTool{client: client},
		&getPagesTool{client: client},
		&getPageContentTool{client: client},
		&getQuizzesTool{client: client},
		&getTodoItemsTool{client: client},
		&getUpcomingEventsTool{client: client},
		&getGroupsTool{client: client},
	}
}

// stringArg reads an optional string argument, tolerating null.
func stringArg(args map[string]interface{}, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

// boolArg reads an optional boolean argument with a default.
func boolArg(args map[string]interface{}, key string, def bool) bool {
	if v, ok := args[key].(bool); ok {
		return v
	}
	return def
}

// intArg reads an optional integer argument with a default. JSON numbers
// decode as float64.
func intArg(args map[string]interface{}, key string, def int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return def
	}
}

// fieldString reads a string field from a decoded JSON object.
func fieldString(m map[string]interface{}, key, fallback string) string {
	if v, ok := m[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// fieldNumber reads a numeric field from a decoded JSON object.
func fieldNumber(m map[string]interface{}, key string) float64 {
	if v, ok := m[key].(float64); ok {
		return v
	}
	return 0
}

// fieldID renders the id field of a decoded JSON object.
func fieldID(m map[string]interface{}, key string) string {
	if v, ok := m[key].(float64); ok {
		return fmt.Sprintf("%.0f", v)
	}
	return fieldString(m, key, "?")
}

// truncate shortens s for inline display.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
