package conversation

import (
	"fmt"
	"strings"
)

func ambiguousFollowUp(candidates []string) string {
	bold := make([]string, len(candidates))
	for i, c := range candidates {
		bold[i] = "**" + c + "**"
	}
	if len(bold) == 2 {
		return fmt.Sprintf("We manage both %s and %s. Which one are you referring to?", bold[0], bold[1])
	}
	return fmt.Sprintf("We manage %s. Which one are you referring to?", joinList(bold))
}

func unknownFollowUp(tenants []string) string {
	if len(tenants) == 0 {
		return "Which community do you live in?"
	}
	return "Which community do you live in? We currently serve " + joinList(tenants) + "."
}

// ReadyWithoutQuestion is the reply when every slot is filled but the user has not asked anything yet.
func ReadyWithoutQuestion(tenant string) string {
	return fmt.Sprintf("Thanks! What would you like to know about %s?", tenant)
}

// Greeting opens a chat, asking for the two slots up front.
func Greeting() string {
	return "Hi! I can answer questions about your community's governing documents. " +
		"Which community do you live in, and are you a homeowner, tenant or board member?"
}

func joinList(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}
