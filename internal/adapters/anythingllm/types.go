package anythingllm

import "encoding/json"

type multiUserModeResponse struct {
	IsMultiUser bool `json:"isMultiUser"`
}

type newUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type newUserResponse struct {
	User *struct {
		ID json.Number `json:"id"`
	} `json:"user"`
}

type newWorkspaceRequest struct {
	Name                 string  `json:"name"`
	SimilarityThreshold  float64 `json:"similarityThreshold"`
	OpenAITemp           float64 `json:"openAiTemp"`
	OpenAIHistory        int     `json:"openAiHistory"`
	OpenAIPrompt         string  `json:"openAiPrompt"`
	QueryRefusalResponse string  `json:"queryRefusalResponse"`
	ChatMode             string  `json:"chatMode"`
	TopN                 int     `json:"topN"`
}

type newWorkspaceResponse struct {
	Workspace *struct {
		Slug string      `json:"slug"`
		ID   json.Number `json:"id"`
	} `json:"workspace"`
}

type documentFolderResponse struct {
	Documents []struct {
		Name string `json:"name"`
	} `json:"documents"`
}

type updateEmbeddingsRequest struct {
	Adds    []string `json:"adds"`
	Deletes []string `json:"deletes"`
}

type manageUsersRequest struct {
	UserIDs []int64 `json:"userIds"`
	Reset   bool    `json:"reset"`
}

type issueAuthTokenResponse struct {
	Token     string `json:"token"`
	LoginPath string `json:"loginPath"`
}
