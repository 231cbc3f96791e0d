package mcp

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ahvonen/notesmith/internal/engine"
)

// handleSearchNotes runs a hybrid search over the notes index.
func (s *Server) handleSearchNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	req := engine.SearchRequest{
		Query:     query,
		TopK:      limit,
		TimeRange: request.GetString("time_range", ""),
	}
	if tags := request.GetString("tags", ""); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				req.Tags = append(req.Tags, tag)
			}
		}
	}

	results, err := s.engine.Search(ctx, req)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	if len(results) == 0 {
		return mcp.NewToolResultText("No matching notes found. The index may be empty; run the sync_notes tool first."), nil
	}

	return mcp.NewToolResultText(formatSearchResults(results)), nil
}

// handleSyncNotes re-indexes the note directories.
func (s *Server) handleSyncNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	force := request.GetBool("force", false)

	res, err := s.engine.Sync(ctx, force)
	if err != nil {
		if err == engine.ErrSyncInProgress {
			return mcp.NewToolResultError("a sync is already running; try again shortly"), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("sync failed: %v", err)), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Sync complete: %d added, %d updated, %d deleted (%d chunks, %.1fs).\n",
		res.Added, res.Updated, res.Deleted, res.Chunks, res.Elapsed.Seconds())
	if len(res.Failures) > 0 {
		fmt.Fprintf(&sb, "%d file(s) could not be indexed:\n", len(res.Failures))
		for _, f := range res.Failures {
			fmt.Fprintf(&sb, "  %s: %s\n", f.Path, f.Reason)
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// handleGetNote reads a note's full text by path, restricted to notes the
// index knows about.
func (s *Server) handleGetNote(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: path"), nil
	}

	docs, err := s.engine.Documents(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing documents failed: %v", err)), nil
	}
	known := false
	for _, d := range docs {
		if d.Path == path {
			known = true
			break
		}
	}
	if !known {
		return mcp.NewToolResultError(fmt.Sprintf("%q is not an indexed note", path)), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read note: %v", err)), nil
	}
	return mcp.NewToolResultText(string(content)), nil
}

// handleRecentNotes lists the most recently updated notes.
func (s *Server) handleRecentNotes(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}

	docs, err := s.engine.Recent(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("listing recent notes failed: %v", err)), nil
	}
	if len(docs) == 0 {
		return mcp.NewToolResultText("No notes indexed yet. Run the sync_notes tool first."), nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d recently updated note(s):\n", len(docs))
	for _, d := range docs {
		fmt.Fprintf(&sb, "\n%s\n  %s\n  updated %s\n", d.Title, d.Path, d.UpdatedAt.Format("2006-01-02"))
		if len(d.Tags) > 0 {
			fmt.Fprintf(&sb, "  tags: %s\n", strings.Join(d.Tags, ", "))
		}
	}
	return mcp.NewToolResultText(sb.String()), nil
}

// formatSearchResults renders results as text for agent consumption.
func formatSearchResults(results []engine.SearchResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Found %d note(s):\n", len(results))

	for i, r := range results {
		fmt.Fprintf(&sb, "\n--- Result %d ---\n", i+1)
		fmt.Fprintf(&sb, "Title: %s\n", r.Title)
		fmt.Fprintf(&sb, "Path: %s\n", r.Path)
		if len(r.Tags) > 0 {
			fmt.Fprintf(&sb, "Tags: %s\n", strings.Join(r.Tags, ", "))
		}
		fmt.Fprintf(&sb, "Updated: %s\n", r.UpdatedAt.Format("2006-01-02"))
		fmt.Fprintf(&sb, "Score: %.4f\n\n", r.Score)
		sb.WriteString(r.Excerpt)
		sb.WriteString("\n")
	}

	return sb.String()
}
