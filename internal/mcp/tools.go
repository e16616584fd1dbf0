package mcp

import "github.com/mark3labs/mcp-go/mcp"

var initializeToolDef = mcp.NewTool(
	"planet_initialize",
	mcp.WithDescription("Open the local cache and return its planets. Fetches the first page only when the cache is empty."),
)

var fetchPageToolDef = mcp.NewTool(
	"planet_fetch_page",
	mcp.WithDescription("Fetch the page the stored cursor points at, append its planets to the cache and advance the cursor. After the last page the cursor wraps to the first page."),
	mcp.WithDestructiveHintAnnotation(false),
)

var listToolDef = mcp.NewTool(
	"planet_list",
	mcp.WithDescription("List every cached planet in insertion order. Never fetches."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var getToolDef = mcp.NewTool(
	"planet_get",
	mcp.WithDescription("Get one cached planet by id."),
	mcp.WithReadOnlyHintAnnotation(true),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Planet id assigned by the cache"),
		mcp.Min(1),
	),
)

var enrichToolDef = mcp.NewTool(
	"planet_enrich",
	mcp.WithDescription("Resolve the resident names of a cached planet and store them. Nothing is stored if any lookup fails."),
	mcp.WithNumber("id",
		mcp.Required(),
		mcp.Description("Planet id assigned by the cache"),
		mcp.Min(1),
	),
)

var cursorToolDef = mcp.NewTool(
	"planet_cursor",
	mcp.WithDescription("Show the stored next-page cursor and the URL the next fetch would use."),
	mcp.WithReadOnlyHintAnnotation(true),
)

var destroyToolDef = mcp.NewTool(
	"planet_destroy",
	mcp.WithDescription("Delete the local cache. The next operation starts from an empty store."),
	mcp.WithDestructiveHintAnnotation(true),
)
