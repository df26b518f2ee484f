package domain

// WorkspaceSettings are the tuning knobs sent when creating a workspace.
// Profiles (see adapters/profiles) supply named presets of these.
type WorkspaceSettings struct {
	SimilarityThreshold  float64
	OpenAITemp           float64
	OpenAIHistory        int
	OpenAIPrompt         string
	QueryRefusalResponse string
	ChatMode             string
	TopN                 int
}

// DefaultWorkspaceSettings matches the platform's conversational defaults.
func DefaultWorkspaceSettings() WorkspaceSettings {
	return WorkspaceSettings{
		SimilarityThreshold:  0.25,
		OpenAITemp:           0.7,
		OpenAIHistory:        20,
		OpenAIPrompt:         "You are a helpful assistant for a temporary demo workspace.",
		QueryRefusalResponse: "There is no relevant information in this workspace to answer your question.",
		ChatMode:             "chat",
		TopN:                 4,
	}
}
