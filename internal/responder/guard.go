package responder

import (
	"regexp"
	"strings"
)

// GuardResult reports why a reply was refused.
type GuardResult struct {
	Blocked bool
	Reasons []string
}

type leakPattern struct {
	re     *regexp.Regexp
	reason string
}

var leakPatterns = []leakPattern{
	// Instruction leaks
	{regexp.MustCompile(`(?i)\b(mes|les) (instructions|consignes|directives)\b`), "leak:instructions"},
	{regexp.MustCompile(`(?i)\b(prompt|invite) (syst[eè]me|initial)`), "leak:system_prompt"},
	{regexp.MustCompile(`(?i)my (system\s+)?(prompt|instructions?)`), "leak:system_prompt"},
	{regexp.MustCompile(`(?i)(je suis|j'ai été) (programm[ée]|configur[ée]|con[çc]u)e? pour`), "leak:programming"},

	// Machine identity
	{regexp.MustCompile(`(?i)je suis (une |un )?(intelligence artificielle|ia|robot|programme|assistant virtuel|agent virtuel|mod[eè]le de langage|chatbot|agent conversationnel)\b`), "leak:ai_identity"},
	{regexp.MustCompile(`(?i)en tant qu'(ia|intelligence artificielle|assistant virtuel|mod[eè]le de langage)\b`), "leak:ai_identity"},
	{regexp.MustCompile(`(?i)i('m| am) (a|an) (ai|artificial intelligence|language model|llm|chatbot)\b`), "leak:ai_identity"},
	{regexp.MustCompile(`(?i)\b(chatgpt|gpt-?\d\w*|openai|anthropic|bedrock|llama)\b|\bclaude (ai|\d)|\bgoogle gemini\b`), "leak:tech_stack"},

	// Infrastructure
	{regexp.MustCompile(`(?i)(api[_\s]?key|secret[_\s]?key|access[_\s]?token|auth[_\s]?token)\s*[:=]\s*\S+`), "leak:credential"},
	{regexp.MustCompile(`AKIA[A-Z0-9]{16}`), "leak:aws_key"},
	{regexp.MustCompile(`(?i)(postgres|redis|https?)://\S+`), "leak:url"},
}

// GuardReply scans a model reply for anything a caller must never hear.
// A blocked reply counts as a failed tier.
func GuardReply(reply string) GuardResult {
	if strings.TrimSpace(reply) == "" {
		return GuardResult{}
	}
	var reasons []string
	for _, p := range leakPatterns {
		if p.re.MatchString(reply) {
			reasons = append(reasons, p.reason)
		}
	}
	return GuardResult{Blocked: len(reasons) > 0, Reasons: reasons}
}
