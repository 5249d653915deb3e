package openai_tools

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
	"github.com/sashabaranov/go-openai"
)

const (
	tokensPerMessage = 3
	tokensPerName    = 1
	tokensPerReply   = 3
)

// CountToken counts the prompt tokens messages will cost for model. Models unknown to tiktoken are
// counted with cl100k_base.
func CountToken(messages []openai.ChatCompletionMessage, model string) (int, error) {
	tkm, err := tiktoken.EncodingForModel(model)
	if err != nil {
		tkm, err = tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err != nil {
			return 0, fmt.Errorf("failed to get encoding for model %s: %w", model, err)
		}
	}

	numTokens := 0
	for _, message := range messages {
		numTokens += tokensPerMessage
		numTokens += len(tkm.Encode(message.Content, nil, nil))
		numTokens += len(tkm.Encode(message.Role, nil, nil))
		if message.Name != "" {
			numTokens += tokensPerName
			numTokens += len(tkm.Encode(message.Name, nil, nil))
		}
	}
	return numTokens + tokensPerReply, nil
}

// EstimateTokens is a rough count used when no encoding is available: the mean of a word count and
// a four-characters-per-token count.
func EstimateTokens(messages []openai.ChatCompletionMessage) int {
	numTokens := tokensPerReply
	for _, message := range messages {
		words := len(strings.Fields(message.Content))
		chars := len(message.Content)
		numTokens += tokensPerMessage + (words+chars/4)/2
	}
	return numTokens
}
