package conversation

import (
	"slices"
	"strings"
	"unicode"
)

// normalize lowercases s and turns every run of non alphanumeric runes into one space.
func normalize(s string) string {
	var sb strings.Builder
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			space = false
			continue
		}
		if !space {
			sb.WriteByte(' ')
			space = true
		}
	}
	return strings.TrimSpace(sb.String())
}

// containsPhrase reports whether phrase occurs in text on token boundaries. Both sides must
// already be normalised.
func containsPhrase(text, phrase string) bool {
	if phrase == "" {
		return false
	}
	return strings.Contains(" "+text+" ", " "+phrase+" ")
}

// removePhrase blanks every token aligned occurrence of phrase.
func removePhrase(text, phrase string) string {
	if phrase == "" {
		return text
	}
	padded := strings.ReplaceAll(" "+text+" ", " "+phrase+" ", "  ")
	return strings.Join(strings.Fields(padded), " ")
}

// precededByMy reports whether every occurrence of phrase in text is directly preceded by "my".
// "my tenant" is said by landlords, not tenants.
func precededByMy(text, phrase string) bool {
	padded := " " + text + " "
	needle := " " + phrase + " "
	found := false
	for i := 0; ; {
		j := strings.Index(padded[i:], needle)
		if j < 0 {
			break
		}
		found = true
		if !strings.HasSuffix(padded[:i+j], " my") {
			return false
		}
		i += j + 1
	}
	return found
}

// precededBy reports whether some occurrence of phrase in text directly follows one of words.
func precededBy(text, phrase string, words map[string]bool) bool {
	tokens := strings.Fields(text)
	want := strings.Fields(phrase)
	for i := 1; i+len(want) <= len(tokens); i++ {
		if words[tokens[i-1]] && slices.Equal(tokens[i:i+len(want)], want) {
			return true
		}
	}
	return false
}

// firstPerson keywords identify the speaker on their own, e.g. "i rent" or "on the board".
func firstPerson(keyword string) bool {
	first, _, _ := strings.Cut(keyword, " ")
	return first == "i" || first == "im" || first == "my" || first == "on"
}

var selfCues = []string{
	"i m a", "i m an", "i m the", "i am a", "i am an", "i am the", "im a", "im an", "im the",
	"as a", "as an", "as the",
}

// modalWords turn a first person keyword into a question, as in "can i rent my unit".
var modalWords = set("can", "could", "may", "should", "would", "do")

// tenantCues introduce a community inside a question, e.g. "I'm in Oakwood, ...".
var tenantCues = set("in", "at", "with", "from")

var genericNameWords = set(
	"the", "a", "an", "of", "at", "on", "in", "and",
	"hoa", "association", "homeowners", "homeowner", "owners", "community", "communities",
	"condominium", "condominiums", "condos", "condo", "townhomes", "townhouses", "inc",
	"master", "property", "properties", "poa",
)

// slotFiller are words that carry no question on their own, e.g. "yes I'm with oakwood".
var slotFiller = set(
	"i", "im", "m", "s", "re", "ve", "am", "a", "an", "the", "with", "in", "at", "of", "for", "from",
	"live", "living", "lives", "reside", "we", "my", "our", "us", "me", "is", "are", "it", "its", "that",
	"this", "one", "and", "or", "yes", "yeah", "yep", "no", "nope", "sure", "ok", "okay", "right",
	"correct", "community", "hoa", "association", "neighborhood", "hi", "hello", "hey", "thanks",
	"thank", "you", "please", "actually", "oh", "sorry", "just", "here", "there", "part", "called",
	"named", "member", "resident", "belong", "to", "as", "well", "so", "um", "uh",
)

var searchFiller = set(
	"hi", "hello", "hey", "please", "thanks", "thank", "ok", "okay", "um", "uh", "so", "well", "just",
)

func set(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

func onlyFiller(text string, filler map[string]bool) bool {
	for _, tok := range strings.Fields(text) {
		if !filler[tok] {
			return false
		}
	}
	return true
}

func dropFiller(text string, filler map[string]bool) string {
	var kept []string
	for _, tok := range strings.Fields(text) {
		if !filler[tok] {
			kept = append(kept, tok)
		}
	}
	return strings.Join(kept, " ")
}

// Mentions reports whether text contains phrase as whole words, ignoring case and punctuation.
func Mentions(text, phrase string) bool {
	return containsPhrase(normalize(text), normalize(phrase))
}
