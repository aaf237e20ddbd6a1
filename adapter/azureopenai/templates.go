package azureopenai

import (
	"fmt"

	"github.com/Hmv123/ragbot"
)

const systemPrompt = `You are a helpful assistant. Use the provided context to answer questions accurately. If the context is insufficient, give the most careful, concise answer possible. Always cite the sources when available. Do not hallucinate beyond the context.`

func userPrompt(question string, documents []ragbot.Document) string {
	if len(documents) == 0 {
		return fmt.Sprintf("Question: %s", question)
	}
	return fmt.Sprintf("Context:\n%s\n\nQuestion: %s", ragbot.ContextText(documents), question)
}
