package canvas

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/avasquez/canvasagent/pkg/tool"
)

type getFilesTool struct {
	client *Client
}

func (t *getFilesTool) Name() string { return "canvas_get_files" }

func (t *getFilesTool) Description() string {
	return "List a course's files with sizes, content types and download URLs"
}

func (t *getFilesTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "course_id", Type: "string", Description: "Course id", Required: true},
		{Name: "search_term", Type: "string", Description: "Optional filename filter", Nullable: true},
	}
}

func (t *getFilesTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	courseID := stringArg(args, "course_id")
	params := url.Values{"per_page": {"50"}}
	if term := stringArg(args, "search_term"); term != "" {
		params.Set("search_term", term)
	}

	var files []map[string]interface{}
	if err := t.client.getJSON(ctx, "courses/"+courseID+"/files", params, &files); err != nil {
		return tool.Fail("failed to get files: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Files of course %s:\n", courseID)
	for _, file := range files {
		sizeMB := fieldNumber(file, "size") / (1024 * 1024)
		fmt.Fprintf(&b, "- [%s] %s (%.2fMB, %s)\n",
			fieldID(file, "id"),
			fieldString(file, "display_name", "unnamed"),
			sizeMB,
			fieldString(file, "content-type", "unknown type"))
		fmt.Fprintf(&b, "  URL: %s\n", fieldString(file, "url", ""))
	}
	return tool.Ok(b.String())
}

type getFileInfoTool struct {
	client *Client
}

func (t *getFileInfoTool) Name() string { return "canvas_get_file_info" }

func (t *getFileInfoTool) Description() string {
	return "Get one file's details: download URL, size, content type and modification time"
}

func (t *getFileInfoTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "file_id", Type: "string", Description: "File id", Required: true},
	}
}

func (t *getFileInfoTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	fileID := stringArg(args, "file_id")

	var file map[string]interface{}
	if err := t.client.getJSON(ctx, "files/"+fileID, nil, &file); err != nil {
		return tool.Fail("failed to get file info: %v", err)
	}

	var b strings.Builder
	b.WriteString("File info:\n")
	fmt.Fprintf(&b, "name: %s\n", fieldString(file, "display_name", "unnamed"))
	fmt.Fprintf(&b, "id: %s\n", fieldID(file, "id"))
	fmt.Fprintf(&b, "size: %.2f MB\n", fieldNumber(file, "size")/(1024*1024))
	fmt.Fprintf(&b, "type: %s\n", fieldString(file, "content-type", "unknown"))
	fmt.Fprintf(&b, "modified: %s\n", fieldString(file, "modified_at", "unknown"))
	fmt.Fprintf(&b, "download URL: %s\n", fieldString(file, "url", ""))
	return tool.Ok(b.String())
}

type getFoldersTool struct {
	client *Client
}

func (t *getFoldersTool) Name() string { return "canvas_get_folders" }

func (t *getFoldersTool) Description() string {
	return "List a course's folder structure"
}

func (t *getFoldersTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "course_id", Type: "string", Description: "Course id", Required: true},
	}
}

func (t *getFoldersTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	courseID := stringArg(args, "course_id")

	var folders []map[string]interface{}
	if err := t.client.getJSON(ctx, "courses/"+courseID+"/folders", url.Values{"per_page": {"50"}}, &folders); err != nil {
		return tool.Fail("failed to get folders: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Folders of course %s:\n", courseID)
	for _, folder := range folders {
		fmt.Fprintf(&b, "- [%s] %s (%.0f files)\n",
			fieldID(folder, "id"),
			fieldString(folder, "full_name", "unnamed"),
			fieldNumber(folder, "files_count"))
	}
	return tool.Ok(b.String())
}

type getFolderFilesTool struct {
	client *Client
}

func (t *getFolderFilesTool) Name() string { return "canvas_get_folder_files" }

func (t *getFolderFilesTool) Description() string {
	return "List the files inside one folder"
}

func (t *getFolderFilesTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "folder_id", Type: "string", Description: "Folder id", Required: true},
	}
}

func (t *getFolderFilesTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	folderID := stringArg(args, "folder_id")

	var files []map[string]interface{}
	if err := t.client.getJSON(ctx, "folders/"+folderID+"/files", url.Values{"per_page": {"50"}}, &files); err != nil {
		return tool.Fail("failed to get folder files: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Files in folder %s:\n", folderID)
	for _, file := range files {
		fmt.Fprintf(&b, "- [%s] %s (%.2f MB, %s)\n",
			fieldID(file, "id"),
			fieldString(file, "display_name", "unnamed"),
			fieldNumber(file, "size")/(1024*1024),
			fieldString(file, "content-type", "unknown"))
	}
	return tool.Ok(b.String())
}

type searchFilesTool struct {
	client *Client
}

func (t *searchFilesTool) Name() string { return "canvas_search_files" }

func (t *searchFilesTool) Description() string {
	return "Search a course's files by keyword"
}

func (t *searchFilesTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "course_id", Type: "string", Description: "Course id", Required: true},
		{Name: "search_term", Type: "string", Description: "Search keyword", Required: true},
	}
}

func (t *searchFilesTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	courseID := stringArg(args, "course_id")
	term := stringArg(args, "search_term")

	params := url.Values{"search_term": {term}, "per_page": {"50"}}
	var files []map[string]interface{}
	if err := t.client.getJSON(ctx, "courses/"+courseID+"/files", params, &files); err != nil {
		return tool.Fail("failed to search files: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search results for %q:\n", term)
	if len(files) == 0 {
		b.WriteString("no matching files found")
		return tool.Ok(b.String())
	}
	for _, file := range files {
		fmt.Fprintf(&b, "\n- %s\n", fieldString(file, "display_name", "unnamed"))
		fmt.Fprintf(&b, "  file id: %s\n", fieldID(file, "id"))
		fmt.Fprintf(&b, "  size: %.2f KB\n", fieldNumber(file, "size")/1024)
		fmt.Fprintf(&b, "  download: %s\n", fieldString(file, "url", ""))
	}
	return tool.Ok(b.String())
}
