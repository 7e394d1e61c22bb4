package domain

import "strings"

// ToolOther is the tool choice that requires a custom tool name.
const ToolOther = "Other"

// ToolAll disables tool filtering on the listing.
const ToolAll = "all"

// Tools lists the AI tools a submission can target, in form order.
var Tools = []string{
	"ChatGPT",
	"GPT-4",
	"Claude",
	"DeepSeek",
	"Grok",
	"Perplexity",
	"Midjourney",
	"Runway",
	"v0",
	"Cursor",
	ToolOther,
}

// DisplayTool returns the custom tool name when "Other" was chosen and a
// name was given, otherwise the selected tool.
func DisplayTool(aiTool, customAITool string) string {
	custom := strings.TrimSpace(customAITool)
	if aiTool == ToolOther && custom != "" {
		return custom
	}
	return aiTool
}

// IsAllTools reports whether tool means "no tool filter".
func IsAllTools(tool string) bool {
	tool = strings.TrimSpace(tool)
	return tool == "" || strings.EqualFold(tool, ToolAll)
}
