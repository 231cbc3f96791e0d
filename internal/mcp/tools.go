package mcp

import "github.com/mark3labs/mcp-go/mcp"

// searchNotesTool defines the search_notes MCP tool.
var searchNotesTool = mcp.NewTool("search_notes",
	mcp.WithDescription("Search the personal notes index with hybrid keyword and semantic retrieval. Returns ranked notes with excerpts."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 10)"),
	),
	mcp.WithString("time_range",
		mcp.Description("Restrict results to recently updated notes"),
		mcp.Enum("today", "week", "month", "year"),
	),
	mcp.WithString("tags",
		mcp.Description("Comma-separated tags; notes must carry at least one"),
	),
)

// syncNotesTool defines the sync_notes MCP tool.
var syncNotesTool = mcp.NewTool("sync_notes",
	mcp.WithDescription("Re-index the note directories. Only changed notes are processed unless force is set."),
	mcp.WithBoolean("force",
		mcp.Description("Rebuild the whole index from scratch"),
	),
)

// getNoteTool defines the get_note MCP tool.
var getNoteTool = mcp.NewTool("get_note",
	mcp.WithDescription("Read the full text of a note by its path."),
	mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Absolute path of the note file"),
	),
)

// recentNotesTool defines the recent_notes MCP tool.
var recentNotesTool = mcp.NewTool("recent_notes",
	mcp.WithDescription("List the most recently updated notes."),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of notes to return (default 10)"),
	),
)
