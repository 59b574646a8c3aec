package core

// ChatRequest is the inbound chat payload: a single user utterance.
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply returned to the chat client. Reply may be empty
// when the backend produced nothing.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// GenerationOptions holds the sampling parameters sent with every backend
// call. They are fixed per deployment, never per request.
type GenerationOptions struct {
	Temperature float64 `json:"temperature" yaml:"temperature"`
	TopP        float64 `json:"top_p" yaml:"top_p"`
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
}

// DefaultGenerationOptions returns the sampling parameters LiteGPT ships with.
func DefaultGenerationOptions() GenerationOptions {
	return GenerationOptions{
		Temperature: 0.2,
		TopP:        0.9,
		MaxTokens:   100,
	}
}
