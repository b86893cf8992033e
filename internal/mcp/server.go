package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"neurograph/internal/graph"
)

// GraphStore is the slice of the graph store client the tool surface uses.
// The tools add no data-model behavior of their own.
type GraphStore interface {
	SearchContent(ctx context.Context, query string, limit int) ([]graph.Content, error)
	ListCategories(ctx context.Context) ([]graph.Category, error)
	ContentByCategory(ctx context.Context, categoryID string, limit int) ([]graph.Content, error)
	ContentByID(ctx context.Context, id string) (*graph.Content, error)
	Stats(ctx context.Context) (*graph.ContentStats, error)
}

// SearchMemoryParams are the arguments for the search_memory tool.
type SearchMemoryParams struct {
	Query    string `json:"query"`
	Limit    int    `json:"limit,omitempty"`
	Category string `json:"category,omitempty"`
}

// GetByCategoryParams are the arguments for the get_by_category tool.
type GetByCategoryParams struct {
	CategoryID string `json:"category_id"`
	Limit      int    `json:"limit,omitempty"`
}

// GetConversationParams are the arguments for the get_conversation tool.
type GetConversationParams struct {
	ID string `json:"id"`
}

// GetCategoriesParams are the arguments for the get_categories tool.
type GetCategoriesParams struct{}

// NewServer builds the MCP server with the four tools and two resources
// registered over the given graph store.
func NewServer(store GraphStore, version string) *mcpsdk.Server {
	impl := &mcpsdk.Implementation{
		Name:    "neurograph-mcp",
		Version: version,
	}
	server := mcpsdk.NewServer(impl, nil)

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "search_memory",
		Description: "Full-text search across stored memories. Arguments: query (required), limit (default 10), category (optional filter applied to the returned results).",
	}, func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[SearchMemoryParams]) (*mcpsdk.CallToolResultFor[any], error) {
		args := params.Arguments
		if args.Query == "" {
			return errorResult("query is required"), nil
		}

		results, err := store.SearchContent(ctx, args.Query, args.Limit)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		if args.Category != "" {
			filtered := results[:0]
			for _, r := range results {
				if r.Category == args.Category {
					filtered = append(filtered, r)
				}
			}
			results = filtered
		}
		return textResult(FormatSearchResults(args.Query, results)), nil
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get_by_category",
		Description: "List the most recent contents of a category. Arguments: category_id (required), limit (default 20).",
	}, func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[GetByCategoryParams]) (*mcpsdk.CallToolResultFor[any], error) {
		args := params.Arguments
		if args.CategoryID == "" {
			return errorResult("category_id is required"), nil
		}

		contents, err := store.ContentByCategory(ctx, args.CategoryID, args.Limit)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return textResult(FormatCategoryContents(args.CategoryID, contents)), nil
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get_conversation",
		Description: "Retrieve one stored conversation in full by id.",
	}, func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[GetConversationParams]) (*mcpsdk.CallToolResultFor[any], error) {
		args := params.Arguments
		if args.ID == "" {
			return errorResult("id is required"), nil
		}

		content, err := store.ContentByID(ctx, args.ID)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return textResult(FormatConversation(content)), nil
	})

	mcpsdk.AddTool(server, &mcpsdk.Tool{
		Name:        "get_categories",
		Description: "List all categories with their content counts.",
	}, func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.CallToolParamsFor[GetCategoriesParams]) (*mcpsdk.CallToolResultFor[any], error) {
		categories, err := store.ListCategories(ctx)
		if err != nil {
			return errorResult(err.Error()), nil
		}
		return textResult(FormatCategories(categories)), nil
	})

	server.AddResource(&mcpsdk.Resource{
		URI:         "neurograph://categories",
		Name:        "categories",
		Description: "The full category list with content counts, as JSON",
		MIMEType:    "application/json",
	}, jsonResource(func(ctx context.Context) (interface{}, error) {
		return store.ListCategories(ctx)
	}))

	server.AddResource(&mcpsdk.Resource{
		URI:         "neurograph://stats",
		Name:        "stats",
		Description: "Aggregate content statistics, as JSON",
		MIMEType:    "application/json",
	}, jsonResource(func(ctx context.Context) (interface{}, error) {
		return store.Stats(ctx)
	}))

	return server
}

func textResult(text string) *mcpsdk.CallToolResultFor[any] {
	return &mcpsdk.CallToolResultFor[any]{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: text}},
	}
}

func errorResult(message string) *mcpsdk.CallToolResultFor[any] {
	return &mcpsdk.CallToolResultFor[any]{
		Content: []mcpsdk.Content{&mcpsdk.TextContent{Text: FormatError(message)}},
		IsError: true,
	}
}

// jsonResource adapts a fetch function into an MCP resource handler.
func jsonResource(fetch func(ctx context.Context) (interface{}, error)) mcpsdk.ResourceHandler {
	return func(ctx context.Context, ss *mcpsdk.ServerSession, params *mcpsdk.ReadResourceParams) (*mcpsdk.ReadResourceResult, error) {
		data, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		body, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal resource: %w", err)
		}
		return &mcpsdk.ReadResourceResult{
			Contents: []*mcpsdk.ResourceContents{
				{
					URI:      params.URI,
					MIMEType: "application/json",
					Text:     string(body),
				},
			},
		}, nil
	}
}
