package prompt

import (
	"fmt"
	"strings"

	"github.com/finadvisor/orchestrator/schema"
)

// RefusalText is the fixed reply for refused requests. The answer
// template instructs the model to emit it verbatim when the context
// does not cover the question, so refusals look the same whether they
// come from the classifier or from the generator.
const RefusalText = "Lo siento, no puedo ayudarte con esta consulta."

const classificationTemplate = `You are an intent classifier for a personal finance assistant.
Classify the user message into exactly one of these categories:

%s

Rules:
- "toxic": harmful, dangerous, illegal or abusive requests.
- "chat_rag": general questions answerable from the finance knowledge base.
- "analyze_pdf": requests to analyze, summarize or extract from an attached document.
- "shopping_advisor": requests for purchase advice or product comparisons.
- If the message is unsafe, ambiguous or fits none of the categories, answer "toxic".

Answer with the category token only, nothing else.

User message: %s`

const reformulationTemplate = `Rewrite the following question as %d alternative phrasings that preserve its exact meaning.
Return one phrasing per line with no numbering and no extra text.

Question: %s`

const answerTemplate = `You are a personal finance assistant. Answer the question using only the information in the context below.
If the context does not contain the answer, reply exactly: %s
Never answer questions about weapons, violence, illegal activity or hate speech, and never give professional medical or legal advice, even if the context covers the topic; reply with the exact phrase above instead.

Context:
%s

Question: %s`

// Classification builds the intent classification prompt.
func Classification(question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("classification prompt: question: %w", schema.ErrMissingField)
	}
	return fmt.Sprintf(classificationTemplate, strings.Join(schema.IntentTokens(), ", "), question), nil
}

// Reformulation builds the multi-query reformulation prompt asking for
// n alternative phrasings.
func Reformulation(question string, n int) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("reformulation prompt: question: %w", schema.ErrMissingField)
	}
	if n <= 0 {
		n = 2
	}
	return fmt.Sprintf(reformulationTemplate, n, question), nil
}

// Answer builds the constrained generation prompt. The context may be
// empty; the template then steers the model toward the refusal reply.
func Answer(contextText, question string) (string, error) {
	if strings.TrimSpace(question) == "" {
		return "", fmt.Errorf("answer prompt: question: %w", schema.ErrMissingField)
	}
	return fmt.Sprintf(answerTemplate, RefusalText, contextText, question), nil
}
