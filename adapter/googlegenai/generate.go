package googlegenai

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/Hmv123/ragbot"
)

const systemPrompt = `You are a helpful assistant. Use the provided context to answer questions accurately. If the context is insufficient, give the most careful, concise answer possible. Always cite the sources when available. Do not hallucinate beyond the context.`

func (a *Adapter) Generate(ctx context.Context, question string, history []ragbot.Message, documents []ragbot.Document) (ragbot.Answer, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, aMessage := range history {
		contents = append(contents, genai.NewContentFromText(aMessage.Content, chatRole(aMessage.Role)))
	}

	var prompt string
	if len(documents) > 0 {
		prompt = fmt.Sprintf("Context:\n%s\n\nQuestion: %s", ragbot.ContextText(documents), question)
	} else {
		prompt = fmt.Sprintf("Question: %s", question)
	}
	contents = append(contents, genai.NewContentFromText(prompt, genai.RoleUser))

	a.logger.Sugar().Infow("generating answer",
		"question", question,
		"history", len(history),
		"documents", len(documents),
	)

	temperature := a.temperature
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		Temperature:       &temperature,
		MaxOutputTokens:   a.maxOutputTokens,
	}

	resp, err := a.client.Models.GenerateContent(
		ctx,
		a.generativeModel,
		contents,
		config,
	)
	if err != nil {
		return ragbot.Answer{}, fmt.Errorf("calling generative model: %w", err)
	}
	if len(resp.Candidates) < 1 {
		return ragbot.Answer{}, fmt.Errorf("got %v candidates, expected at least 1", len(resp.Candidates))
	}

	return ragbot.Answer{
		Text:      resp.Text(),
		Documents: documents,
	}, nil
}

func chatRole(role ragbot.Role) genai.Role {
	if role == ragbot.RoleAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}
