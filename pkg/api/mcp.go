package api

import (
	"github.com/hazyhaar/tagnorm/pkg/kit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterMCPTools registers the tagnorm MCP tools on the server. check_tag
// is only registered when the service has a tag store.
func (s *Service) RegisterMCPTools(srv *server.MCPServer) {
	kit.RegisterMCPTool(srv, mcp.NewTool("normalize_tag",
		mcp.WithDescription("Normalize a free-text tag to its canonical form (e.g. \"React.js\" -> \"react\", \"go\" -> \"golang\")."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("The tag to normalize")),
	), s.normalize, decodeTag)

	kit.RegisterMCPTool(srv, mcp.NewTool("find_similar_tag",
		mcp.WithDescription("Find the first existing tag that is a near-duplicate of a new tag: a typo or plural whose normalized form contains, or is contained in, the other and differs in length by at most 2 (1 for tags of 3 characters or less). Existing tags with the same canonical as the new tag, and version variants such as vue2/vue3, are not reported."),
		mcp.WithString("tag", mcp.Required(), mcp.Description("The new tag")),
		mcp.WithString("existing", mcp.Required(), mcp.Description("Comma-separated list of existing tags")),
	), s.similar, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		tag, err := kit.StringArg(args, "tag")
		if err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &similarReq{Tag: tag, Existing: kit.StringsArg(args, "existing")}}, nil
	})

	kit.RegisterMCPTool(srv, mcp.NewTool("get_aliases",
		mcp.WithDescription("List the known aliases of a canonical tag, the canonical itself included."),
		mcp.WithString("canonical", mcp.Required(), mcp.Description("Canonical tag, e.g. javascript")),
	), s.aliases, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		canonical, err := kit.StringArg(req.GetArguments(), "canonical")
		if err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &canonicalNameReq{Canonical: canonical}}, nil
	})

	kit.RegisterMCPTool(srv, mcp.NewTool("prepare_tags",
		mcp.WithDescription("Normalize, deduplicate and validate a tag list (at most 5 tags of up to 20 characters)."),
		mcp.WithString("tags", mcp.Required(), mcp.Description("Comma-separated list of tags")),
	), s.prepare, func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: &tagsReq{Tags: kit.StringsArg(req.GetArguments(), "tags")}}, nil
	})

	if s.store != nil {
		kit.RegisterMCPTool(srv, mcp.NewTool("check_tag",
			mcp.WithDescription("Check a candidate tag against the tag catalog: whether it exists, which catalog tag it duplicates, and whether it is valid."),
			mcp.WithString("tag", mcp.Required(), mcp.Description("The candidate tag")),
		), s.checkTag, decodeTag)
	}

	kit.RegisterMCPTool(srv, mcp.NewTool("list_dicts",
		mcp.WithDescription("List all loaded tag dictionaries with metadata (source, license, group and alias counts)."),
	), s.listDicts, func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}

func decodeTag(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	tag, err := kit.StringArg(req.GetArguments(), "tag")
	if err != nil {
		return nil, err
	}
	return &kit.MCPDecodeResult{Request: &tagReq{Tag: tag}}, nil
}
