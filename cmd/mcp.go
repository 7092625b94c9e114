package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"vaultsearch/internal/content"
	"vaultsearch/internal/search"
	"vaultsearch/internal/vault"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server exposing vault search tools",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	if flagInput == "" {
		return fmt.Errorf("--input is required: point it at an export ZIP, folder, or conversations.json")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conversations, err := vault.Load(flagInput)
	if err != nil {
		return err
	}

	s := mcpserver.NewMCPServer("vaultsearch", "1.0.0", mcpserver.WithToolCapabilities(false))

	s.AddTool(searchVaultTool(), makeSearchHandler(conversations, cfg.SnippetLength))
	s.AddTool(listConversationsTool(), makeListHandler(conversations))
	s.AddTool(getConversationTool(), makeGetHandler(conversations))

	return mcpserver.ServeStdio(s)
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

// --- Tool schema builders ---

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(false),
}

func searchVaultTool() mcp.Tool {
	return mcp.NewTool("search_vault",
		mcp.WithDescription("Search conversation titles and messages in the loaded ChatGPT export. Returns matching messages with snippets and any fenced code blocks."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query (literal text unless regex is true)"),
		),
		mcp.WithBoolean("regex",
			mcp.Description("Treat the query as a regular expression"),
		),
		mcp.WithBoolean("case_sensitive",
			mcp.Description("Case-sensitive matching"),
		),
		mcp.WithString("title_contains",
			mcp.Description("Only scan conversations whose title contains this text"),
		),
		mcp.WithString("start_date",
			mcp.Description("Include messages after this date (YYYY-MM-DD or RFC 3339)"),
		),
		mcp.WithString("end_date",
			mcp.Description("Include messages before this date (YYYY-MM-DD or RFC 3339)"),
		),
		mcp.WithBoolean("only_with_code",
			mcp.Description("Only return hits containing fenced code blocks"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of hits to return (default 10)"),
		),
	)
}

func listConversationsTool() mcp.Tool {
	return mcp.NewTool("list_conversations",
		mcp.WithDescription("List conversations in the loaded export with their IDs, titles, and creation times."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("title_contains",
			mcp.Description("Optional case-insensitive title filter"),
		),
	)
}

func getConversationTool() mcp.Tool {
	return mcp.NewTool("get_conversation",
		mcp.WithDescription("Get the full normalized text of one conversation by ID."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("id",
			mcp.Required(),
			mcp.Description("Conversation ID as returned by list_conversations"),
		),
	)
}

// --- Handler factories ---

func makeSearchHandler(conversations []vault.Conversation, snippetLen int) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		queryStr := req.GetString("query", "")
		if queryStr == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		k := req.GetInt("k", 10)
		if k <= 0 {
			k = 10
		}

		query, err := search.Compile(queryStr, req.GetBool("regex", false), req.GetBool("case_sensitive", false))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		opts := search.Options{
			Query:          query,
			SearchTitles:   true,
			SearchMessages: true,
			OnlyWithCode:   req.GetBool("only_with_code", false),
			Start:          search.ParseDate(req.GetString("start_date", "")),
			End:            search.ParseDate(req.GetString("end_date", "")),
			SnippetLen:     snippetLen,
		}
		if tc := req.GetString("title_contains", ""); tc != "" {
			filter, err := search.Compile(tc, false, false)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			opts.TitleFilter = filter
		}

		hits := search.Search(conversations, opts)
		search.SortHits(hits)
		if len(hits) > k {
			hits = hits[:k]
		}

		return mcp.NewToolResultText(formatHits(queryStr, hits)), nil
	}
}

func makeListHandler(conversations []vault.Conversation) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter := strings.ToLower(req.GetString("title_contains", ""))

		var sb strings.Builder
		count := 0
		for _, conv := range conversations {
			if filter != "" && !strings.Contains(strings.ToLower(conv.Title), filter) {
				continue
			}
			count++
			title := conv.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Fprintf(&sb, "- **%s** `%s`\n", title, conv.ID)
		}

		header := fmt.Sprintf("## Conversations (%d)\n\n", count)
		return mcp.NewToolResultText(header + sb.String()), nil
	}
}

func makeGetHandler(conversations []vault.Conversation) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := req.GetString("id", "")
		if id == "" {
			return mcp.NewToolResultError("id is required"), nil
		}

		for _, conv := range conversations {
			if conv.ID != id {
				continue
			}
			var sb strings.Builder
			title := conv.Title
			if title == "" {
				title = "(untitled)"
			}
			fmt.Fprintf(&sb, "# %s\n\n", title)
			for rec := range vault.Records(conv) {
				text := content.Text(rec.Message)
				if text == "" {
					continue
				}
				role := rec.Message.Author.Role
				if role == "" {
					role = "unknown"
				}
				fmt.Fprintf(&sb, "## %s\n\n%s\n\n", role, text)
			}
			return mcp.NewToolResultText(sb.String()), nil
		}

		return mcp.NewToolResultError(fmt.Sprintf("conversation %q not found; call list_conversations to see available IDs", id)), nil
	}
}

// --- Formatting helpers ---

func formatHits(query string, hits []search.Hit) string {
	if len(hits) == 0 {
		return fmt.Sprintf("No results found for query: %q", query)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "## Search results for %q (%d hits)\n\n", query, len(hits))

	for i, h := range hits {
		fmt.Fprintf(&sb, "### Hit %d: %s\n\n", i+1, h.ConversationTitle)
		fmt.Fprintf(&sb, "**Conversation:** `%s`  \n**Message:** `%s`  \n**Role:** %s  \n**Time:** %s\n\n",
			h.ConversationID, h.MessageID, h.AuthorRole, orAbsent(h.MessageTime))
		fmt.Fprintf(&sb, "%s\n\n", h.Snippet)
		for _, b := range h.CodeBlocks {
			fmt.Fprintf(&sb, "```%s\n%s\n```\n\n", b.Language, b.Code)
		}
	}

	return sb.String()
}

func orAbsent(s string) string {
	if s == "" {
		return "absent"
	}
	return s
}
