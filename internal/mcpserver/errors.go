package mcpserver

type ErrorCode string

const (
	CodeUnknownTool     ErrorCode = "unknown_tool"
	CodeInvalidParams   ErrorCode = "invalid_params"
	CodeLocalValidation ErrorCode = "local_validation"
)

// ToolError is raised by the adapter itself, before any upstream call.
// Upstream failures stay *render.Error.
type ToolError struct {
	Code    ErrorCode
	Message string
}

func (e *ToolError) Error() string {
	return e.Message
}

func unknownTool(name string) *ToolError {
	return &ToolError{Code: CodeUnknownTool, Message: "Unknown tool: " + name}
}

func invalidParams(msg string) *ToolError {
	return &ToolError{Code: CodeInvalidParams, Message: msg}
}

func localValidation(msg string) *ToolError {
	return &ToolError{Code: CodeLocalValidation, Message: msg}
}
