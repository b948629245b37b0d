package vectorstore

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/openai/openai-go"

	"github.com/avasquez/canvasagent/pkg/tool"
)

// Tools returns the knowledge base tool set backed by one OpenAI client.
func Tools(client openai.Client) []tool.Tool {
	return []tool.Tool{
		&listStoresTool{client: client},
		&searchTool{client: client},
		&listFilesTool{client: client},
		&getFileTool{client: client},
	}
}

type listStoresTool struct {
	client openai.Client
}

func (t *listStoresTool) Name() string { return "vector_store_list" }

func (t *listStoresTool) Description() string {
	return "List the available course knowledge bases (vector stores) with their ids, names and file counts"
}

func (t *listStoresTool) Parameters() []tool.Parameter { return nil }

func (t *listStoresTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	page, err := t.client.VectorStores.List(ctx, openai.VectorStoreListParams{
		Limit: openai.Int(100),
	})
	if err != nil {
		return tool.Fail("failed to list vector stores: %v", err)
	}

	if len(page.Data) == 0 {
		return tool.Ok("No knowledge bases available yet. Run the downloader with vector store upload enabled first.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d course knowledge bases:\n\n", len(page.Data))
	for i, vs := range page.Data {
		fmt.Fprintf(&b, "%d. [%s] %s\n", i+1, vs.ID, vs.Name)
		fmt.Fprintf(&b, "   files: %d\n", vs.FileCounts.Total)
		fmt.Fprintf(&b, "   created: %s\n\n", time.Unix(vs.CreatedAt, 0).UTC().Format("2006-01-02 15:04:05"))
	}
	return tool.Ok(b.String())
}

type searchTool struct {
	client openai.Client
}

func (t *searchTool) Name() string { return "vector_store_search" }

func (t *searchTool) Description() string {
	return "Search one course knowledge base for content relevant to a question about course materials, lectures or assignments"
}

func (t *searchTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "vector_store_id", Type: "string", Description: "Vector store id from vector_store_list", Required: true},
		{Name: "query", Type: "string", Description: "Search query, for example a question about the course content", Required: true},
		{Name: "max_results", Type: "integer", Description: "Maximum number of results, defaults to 5", Nullable: true},
	}
}

func (t *searchTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	storeID, _ := args["vector_store_id"].(string)
	query, _ := args["query"].(string)
	maxResults := int64(5)
	if v, ok := args["max_results"].(float64); ok && v > 0 {
		maxResults = int64(v)
	}

	page, err := t.client.VectorStores.Search(ctx, storeID, openai.VectorStoreSearchParams{
		Query:         openai.VectorStoreSearchParamsQueryUnion{OfString: openai.String(query)},
		MaxNumResults: openai.Int(maxResults),
	})
	if err != nil {
		return tool.Fail("vector store search failed: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Search query: %q\n", query)
	if len(page.Data) == 0 {
		b.WriteString("No relevant content found")
		return tool.Ok(b.String())
	}

	fmt.Fprintf(&b, "Found %d relevant results:\n\n", len(page.Data))
	for i, result := range page.Data {
		fmt.Fprintf(&b, "Result %d:\n", i+1)
		fmt.Fprintf(&b, "  relevance: %.2f\n", result.Score)
		fmt.Fprintf(&b, "  source: %s\n", result.Filename)

		var content strings.Builder
		for _, chunk := range result.Content {
			content.WriteString(chunk.Text)
		}
		text := content.String()
		if len(text) > 800 {
			text = text[:800] + "...\n(content truncated)"
		}
		fmt.Fprintf(&b, "  content:\n%s\n\n", text)
	}
	return tool.Ok(b.String())
}

type listFilesTool struct {
	client openai.Client
}

func (t *listFilesTool) Name() string { return "vector_store_list_files" }

func (t *listFilesTool) Description() string {
	return "List the files inside one knowledge base with their ids, names, sizes and processing status"
}

func (t *listFilesTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "vector_store_id", Type: "string", Description: "Vector store id from vector_store_list", Required: true},
		{Name: "limit", Type: "integer", Description: "Maximum number of files, defaults to 100; zero or negative fetches every file", Nullable: true},
	}
}

func (t *listFilesTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	storeID, _ := args["vector_store_id"].(string)
	limit := 100
	if v, ok := args["limit"].(float64); ok {
		limit = int(v)
	}

	var files []openai.VectorStoreFile
	if limit <= 0 {
		iter := t.client.VectorStores.Files.ListAutoPaging(ctx, storeID, openai.VectorStoreFileListParams{
			Limit: openai.Int(100),
		})
		for iter.Next() {
			files = append(files, iter.Current())
		}
		if err := iter.Err(); err != nil {
			return tool.Fail("failed to list vector store files: %v", err)
		}
	} else {
		page, err := t.client.VectorStores.Files.List(ctx, storeID, openai.VectorStoreFileListParams{
			Limit: openai.Int(int64(limit)),
		})
		if err != nil {
			return tool.Fail("failed to list vector store files: %v", err)
		}
		files = page.Data
	}

	if len(files) == 0 {
		return tool.Ok(fmt.Sprintf("Vector store [%s] contains no files", storeID))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Vector store [%s] contains %d files:\n\n", storeID, len(files))
	for i, file := range files {
		fmt.Fprintf(&b, "File %d:\n", i+1)
		fmt.Fprintf(&b, "  file id: %s\n", file.ID)
		fmt.Fprintf(&b, "  status: %s\n", file.Status)
		fmt.Fprintf(&b, "  created: %s\n", time.Unix(file.CreatedAt, 0).UTC().Format("2006-01-02 15:04:05"))

		// File name and size come from the files API, not the store listing.
		if info, err := t.client.Files.Get(ctx, file.ID); err == nil {
			fmt.Fprintf(&b, "  name: %s\n", info.Filename)
			fmt.Fprintf(&b, "  size: %s\n", formatSize(info.Bytes))
		}
		b.WriteString("\n")
	}
	return tool.Ok(b.String())
}

type getFileTool struct {
	client openai.Client
}

func (t *getFileTool) Name() string { return "vector_store_get_file" }

func (t *getFileTool) Description() string {
	return "Fetch one file's details by file id and read its content when it is text"
}

func (t *getFileTool) Parameters() []tool.Parameter {
	return []tool.Parameter{
		{Name: "file_id", Type: "string", Description: "OpenAI file id from vector_store_list_files", Required: true},
		{Name: "max_length", Type: "integer", Description: "Maximum characters to display, defaults to 5000", Nullable: true},
	}
}

func (t *getFileTool) Forward(ctx context.Context, args map[string]interface{}) tool.Result {
	fileID, _ := args["file_id"].(string)
	maxLength := 5000
	if v, ok := args["max_length"].(float64); ok && v > 0 {
		maxLength = int(v)
	}

	info, err := t.client.Files.Get(ctx, fileID)
	if err != nil {
		return tool.Fail("failed to get file %s: %v", fileID, err)
	}

	var b strings.Builder
	b.WriteString("File details:\n")
	fmt.Fprintf(&b, "  file id: %s\n", info.ID)
	fmt.Fprintf(&b, "  name: %s\n", info.Filename)
	fmt.Fprintf(&b, "  purpose: %s\n", info.Purpose)
	fmt.Fprintf(&b, "  size: %s\n", formatSize(info.Bytes))
	fmt.Fprintf(&b, "  created: %s\n", time.Unix(info.CreatedAt, 0).UTC().Format("2006-01-02 15:04:05"))

	resp, err := t.client.Files.Content(ctx, fileID)
	if err != nil {
		fmt.Fprintf(&b, "\nreading content failed: %v\n", err)
		return tool.Ok(b.String())
	}
	defer resp.Body.Close()

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Fprintf(&b, "\nreading content failed: %v\n", err)
		return tool.Ok(b.String())
	}

	if !utf8.Valid(content) {
		fmt.Fprintf(&b, "\nbinary file, content not shown (%d bytes, %s)\n", len(content), binaryKind(content))
		return tool.Ok(b.String())
	}

	text := string(content)
	b.WriteString("\nContent:\n")
	if len(text) > maxLength {
		b.WriteString(text[:maxLength])
		fmt.Fprintf(&b, "\n\n(content truncated, showing %d of %d characters)\n", maxLength, len(text))
	} else {
		b.WriteString(text)
		b.WriteString("\n")
	}
	return tool.Ok(b.String())
}

// formatSize renders a byte count as KB or MB.
func formatSize(n int64) string {
	kb := float64(n) / 1024
	if kb >= 1024 {
		return fmt.Sprintf("%.2f MB", kb/1024)
	}
	return fmt.Sprintf("%.2f KB", kb)
}

// binaryKind guesses a binary file's kind from its magic bytes.
func binaryKind(content []byte) string {
	switch {
	case len(content) >= 4 && string(content[:4]) == "%PDF":
		return "PDF document"
	case len(content) >= 2 && content[0] == 0x50 && content[1] == 0x4b:
		return "ZIP or Office document"
	default:
		return "unknown binary format"
	}
}
