package schema

import "strings"

// IntentLabel is the closed set of intents the classifier may emit.
// The zero value is IntentToxic so that any unset or failed decision
// resolves to the refusing branch.
type IntentLabel int

const (
	IntentToxic IntentLabel = iota
	IntentChatRAG
	IntentAnalyzePDF
	IntentShoppingAdvisor
)

const (
	tokenToxic           = "toxic"
	tokenChatRAG         = "chat_rag"
	tokenAnalyzePDF      = "analyze_pdf"
	tokenShoppingAdvisor = "shopping_advisor"
)

// String returns the canonical wire token for the label.
func (l IntentLabel) String() string {
	switch l {
	case IntentChatRAG:
		return tokenChatRAG
	case IntentAnalyzePDF:
		return tokenAnalyzePDF
	case IntentShoppingAdvisor:
		return tokenShoppingAdvisor
	default:
		return tokenToxic
	}
}

// ParseIntent maps a raw model output to a label. Matching is exact on
// the canonical token after trimming and lowercasing; anything else is
// rejected so the caller can fall back to IntentToxic.
func ParseIntent(raw string) (IntentLabel, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case tokenToxic:
		return IntentToxic, true
	case tokenChatRAG:
		return IntentChatRAG, true
	case tokenAnalyzePDF:
		return IntentAnalyzePDF, true
	case tokenShoppingAdvisor:
		return IntentShoppingAdvisor, true
	}
	return IntentToxic, false
}

// IntentTokens lists the canonical tokens in declaration order, for
// building classification prompts.
func IntentTokens() []string {
	return []string{tokenToxic, tokenChatRAG, tokenAnalyzePDF, tokenShoppingAdvisor}
}
