package azureopenai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Hmv123/ragbot"
)

func (a *Adapter) Generate(ctx context.Context, question string, history []ragbot.Message, documents []ragbot.Document) (ragbot.Answer, error) {
	// History first, then the system instruction, then the question with
	// retrieved context attached.
	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	for _, aMessage := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    chatRole(aMessage.Role),
			Content: aMessage.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt(question, documents),
	})

	a.logger.Sugar().Infow("generating answer",
		"question", question,
		"history", len(history),
		"documents", len(documents),
	)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.generativeModel,
		Messages:    messages,
		Temperature: a.temperature,
		MaxTokens:   a.maxTokens,
	})
	if err != nil {
		return ragbot.Answer{}, fmt.Errorf("calling generative model: %w", err)
	}
	if len(resp.Choices) < 1 {
		return ragbot.Answer{}, fmt.Errorf("got %v choices, expected at least 1", len(resp.Choices))
	}

	return ragbot.Answer{
		Text:      resp.Choices[0].Message.Content,
		Documents: documents,
	}, nil
}

func chatRole(role ragbot.Role) string {
	if role == ragbot.RoleAssistant {
		return openai.ChatMessageRoleAssistant
	}
	return openai.ChatMessageRoleUser
}
