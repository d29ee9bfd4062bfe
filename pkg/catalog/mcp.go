package catalog

import "github.com/modelcontextprotocol/go-sdk/mcp"

// MCPTool converts the tool definition into the MCP SDK's tool shape so a
// provider adapter can expose it over the protocol. The handler is not
// carried across; invocation stays with the agent runtime.
func (t *Tool) MCPTool() *mcp.Tool {
	return &mcp.Tool{
		Name:        t.Name,
		Description: t.Description,
		InputSchema: t.InputSchema,
	}
}

// MCPTools converts a selection of tools into MCP definitions.
func MCPTools(tools []*Tool) []*mcp.Tool {
	result := make([]*mcp.Tool, 0, len(tools))
	for _, tool := range tools {
		result = append(result, tool.MCPTool())
	}
	return result
}
