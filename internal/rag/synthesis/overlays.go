package synthesis

import (
	"fmt"
	"strings"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/rag/conversation"
)

// relevant keeps matches within cutoff. A cutoff of zero or less keeps everything.
func relevant(matches []commonModels.ChunkMatch, cutoff float64) []commonModels.ChunkMatch {
	if cutoff <= 0 {
		return matches
	}
	kept := make([]commonModels.ChunkMatch, 0, len(matches))
	for _, m := range matches {
		if m.Distance <= cutoff {
			kept = append(kept, m)
		}
	}
	return kept
}

// NotFoundReply is sent instead of a generated answer when retrieval produced nothing usable.
func NotFoundReply(tenant, globalName string) string {
	return fmt.Sprintf("I couldn't find anything about that in the documents for %s or in the %s. "+
		"Please reach out to your community manager and they can help.", tenant, globalName)
}

// renderContext formats matches for the prompt. Global passages carry the AUTHORITATIVE tag.
func renderContext(matches []commonModels.ChunkMatch) string {
	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		header := fmt.Sprintf("[SOURCE: %s]", m.Partition)
		if m.IsGlobal {
			header = fmt.Sprintf("[SOURCE: %s | AUTHORITATIVE]", m.Partition)
		}
		blocks = append(blocks, header+"\n"+strings.TrimSpace(m.Content))
	}
	return strings.Join(blocks, "\n\n")
}

// termGaps returns the rules whose broader term the question asks about while the local
// passages only mention a narrower one.
func termGaps(question string, matches []commonModels.ChunkMatch, gaps []config.TermGap) []config.TermGap {
	var local []string
	for _, m := range matches {
		if !m.IsGlobal {
			local = append(local, m.Content)
		}
	}
	localText := strings.Join(local, "\n")

	var fired []config.TermGap
	for _, g := range gaps {
		if mentionsAny(question, g.Broader) && mentionsAny(localText, g.Narrower) && !mentionsAny(localText, g.Broader) {
			fired = append(fired, g)
		}
	}
	return fired
}

// escalate is true only when the question describes an urgent condition and the passages
// place the repair on the association.
func escalate(question string, matches []commonModels.ChunkMatch, rule config.EmergencyRule) bool {
	if rule.Link == "" || !mentionsAny(question, rule.UrgentConditions) {
		return false
	}
	for _, m := range matches {
		if mentionsAny(m.Content, rule.ResponsibilityPhrases) {
			return true
		}
	}
	return false
}

func mentionsAny(text string, phrases []string) bool {
	for _, p := range phrases {
		if conversation.Mentions(text, p) {
			return true
		}
	}
	return false
}
