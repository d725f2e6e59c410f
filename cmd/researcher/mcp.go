package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"researcher/internal/logging"
	"researcher/internal/service"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start an MCP server over stdio exposing research tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		// stdout carries the protocol, so logs never go there
		a, err := setup(nil)
		if err != nil {
			return err
		}
		defer logging.Close()
		if _, err := a.Service.EnsureIndex(cmd.Context(), a.Config.DataDir); err != nil {
			return err
		}
		return mcpserver.ServeStdio(newMCPServer(a.Service, a.Config.Retriever.TopK))
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func newMCPServer(svc *service.ResearchService, defaultK int) *mcpserver.MCPServer {
	s := mcpserver.NewMCPServer("researcher", version, mcpserver.WithToolCapabilities(false))
	s.AddTool(retrieveTool(), makeRetrieveHandler(svc, defaultK))
	s.AddTool(askTool(), makeAskHandler(svc, defaultK))
	s.AddTool(indexStatsTool(), makeStatsHandler(svc))
	return s
}

var readOnlyAnnotation = mcp.ToolAnnotation{
	ReadOnlyHint:    mcp.ToBoolPtr(true),
	DestructiveHint: mcp.ToBoolPtr(false),
	IdempotentHint:  mcp.ToBoolPtr(true),
	OpenWorldHint:   mcp.ToBoolPtr(true),
}

func retrieveTool() mcp.Tool {
	return mcp.NewTool("retrieve",
		mcp.WithDescription("Retrieve the closest chunks from the local document index plus a short Wikipedia summary."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural language query"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of local chunks to return"),
		),
	)
}

func askTool() mcp.Tool {
	return mcp.NewTool("ask",
		mcp.WithDescription("Research a question across local documents and Wikipedia and return a Markdown report with sources."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The research question"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of local chunks to use"),
		),
	)
}

func indexStatsTool() mcp.Tool {
	return mcp.NewTool("index_stats",
		mcp.WithDescription("Describe the local index: entry count, vector dimension, embedding model and indexed sources."),
		mcp.WithToolAnnotation(readOnlyAnnotation),
	)
}

func makeRetrieveHandler(svc *service.ResearchService, defaultK int) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query := strings.TrimSpace(req.GetString("query", ""))
		if query == "" {
			return mcp.NewToolResultError("query is required"), nil
		}
		k := req.GetInt("k", defaultK)
		if k <= 0 {
			k = defaultK
		}
		res := svc.Search(ctx, query, k)
		text := formatHits(query, res.Hits)
		for _, w := range res.Warnings {
			text += fmt.Sprintf("> warning: %v\n", w)
		}
		return mcp.NewToolResultText(text), nil
	}
}

func makeAskHandler(svc *service.ResearchService, defaultK int) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question := req.GetString("question", "")
		k := req.GetInt("k", defaultK)
		if k <= 0 {
			k = defaultK
		}
		ans, err := svc.Ask(ctx, question, k)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(ans.Report), nil
	}
}

func makeStatsHandler(svc *service.ResearchService) mcpserver.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		st := svc.Stats()
		if st.Entries == 0 {
			return mcp.NewToolResultText("The local index is empty. Run 'researcher index' to build it."), nil
		}
		var sb strings.Builder
		fmt.Fprintf(&sb, "## Index\n\n**Entries:** %d  \n**Dimension:** %d  \n**Model:** %s\n\n", st.Entries, st.Dimension, st.Model)
		sb.WriteString("### Sources\n\n")
		for _, s := range st.Sources {
			fmt.Fprintf(&sb, "- %s\n", s)
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}
