package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

func listTargetsTool() mcp.Tool {
	return mcp.NewTool("list_targets",
		mcp.WithDescription("Lists the built-in export targets with their output file names"),
	)
}

func resolveTokenTool() mcp.Tool {
	return mcp.NewTool("resolve_token",
		mcp.WithDescription("Resolves a token path through its alias chain, optionally under a theme"),
		mcp.WithString("path", mcp.Required(), mcp.Description("Token path, e.g. color.primary or {color.primary}")),
		mcp.WithString("theme", mcp.Description("Theme ids whose overrides apply, comma-separated; the first listed wins")),
	)
}

func exportTokensTool() mcp.Tool {
	return mcp.NewTool("export_tokens",
		mcp.WithDescription("Exports the workspace tokens in one of the built-in formats"),
		mcp.WithString("target", mcp.Required(), mcp.Description("Export target id, see list_targets")),
		mcp.WithString("theme", mcp.Description("Theme ids whose overrides apply, comma-separated; the first listed wins")),
	)
}

func renderTemplateTool() mcp.Tool {
	return mcp.NewTool("render_template",
		mcp.WithDescription("Renders a custom template: a workspace template by id or name, or inline source"),
		mcp.WithString("template", mcp.Description("Id or name of a workspace template")),
		mcp.WithString("source", mcp.Description("Inline template source, used when template is empty")),
		mcp.WithString("extension", mcp.Description("File extension for inline source")),
		mcp.WithString("theme", mcp.Description("Theme ids whose overrides apply, comma-separated; the first listed wins")),
	)
}

func lintTokensTool() mcp.Tool {
	return mcp.NewTool("lint_tokens",
		mcp.WithDescription("Reports broken references, orphan overrides, template problems and missing sections"),
	)
}
