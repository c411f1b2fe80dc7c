package openai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// answerPromptTemplate grounds the model on retrieved document text. The two
// substitution points are the context block and the user question, in that
// order.
const answerPromptTemplate = `Bạn là một trợ lý ảo chuyên về ISTQB. Hãy trả lời câu hỏi sau dựa trên thông tin được cung cấp bên dưới.

Context:
%s

Question:
%s

Answer:`

type ChatClient struct {
	client *openai.Client
	model  string
}

func NewChatClient(apiKey, model string) *ChatClient {
	return &ChatClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// GenerateAnswer asks the model to answer the question strictly from the
// supplied context. Single synchronous call, no retries.
func (c *ChatClient) GenerateAnswer(ctx context.Context, question, contextBlock string) (string, error) {
	prompt := fmt.Sprintf(answerPromptTemplate, contextBlock, question)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.7,
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate answer: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	return resp.Choices[0].Message.Content, nil
}
