package synthesis

import (
	"fmt"
	"strings"

	"github.com/akolanti/CommunityRAG/internal/rag/conversation"
	"github.com/akolanti/CommunityRAG/internal/rag/llm"
)

const systemTemplate = `You are the property management assistant for the %[1]s community.
Answer only from the passages under DOCUMENTS. Do not use outside knowledge and do not guess.
If the passages do not answer the question, say plainly that the documents do not cover it.
Passages tagged AUTHORITATIVE come from the %[2]s. They apply to every community and prevail
over community documents when the two conflict.
Address the reader as a %[3]s and keep the answer short.`

func buildPrompt(a conversation.Analysis, globalName, context string, notices []string) llm.Prompt {
	system := fmt.Sprintf(systemTemplate, a.Tenant, globalName, strings.ToLower(a.Role))
	if len(notices) > 0 {
		system += "\n\nThe reader will already see this notice above your answer, so build on it and do not repeat it:\n" +
			strings.Join(notices, "\n")
	}

	var sb strings.Builder
	sb.WriteString("DOCUMENTS:\n")
	sb.WriteString(context)
	sb.WriteString("\n\nQUESTION:\n")
	sb.WriteString(a.CoreQuestion)
	return llm.Prompt{System: system, User: sb.String()}
}
