// Package conversation derives the dialogue state of a chat from its transcript. Nothing is
// stored between turns: every call re-reads the whole transcript.
package conversation

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
	"github.com/akolanti/CommunityRAG/internal/domain/communityModel"
)

type Input struct {
	Transcript []commonModels.Turn
	// ExplicitTenant comes from a community picker in the UI and skips tenant resolution.
	ExplicitTenant string
	// Tenants are the active community names.
	Tenants []string
}

type Analysis struct {
	State         State        `json:"state"`
	TenantStatus  TenantStatus `json:"tenant_status"`
	Tenant        string       `json:"tenant,omitempty"`
	Candidates    []string     `json:"candidates,omitempty"`
	Role          string       `json:"role,omitempty"`
	RoleDefaulted bool         `json:"role_defaulted,omitempty"`
	CoreQuestion  string       `json:"core_question,omitempty"`
	SearchQuery   string       `json:"search_query,omitempty"`
	// FollowUp is the question to send back when State is not Ready.
	FollowUp string `json:"follow_up,omitempty"`
}

type alias struct {
	phrase    string
	community string
}

type roleRule struct {
	name     string
	keywords []string
}

type Analyzer struct {
	globalName  string
	defaultRole string
	aliases     []alias
	roles       []roleRule
}

func NewAnalyzer(k config.Knowledge) *Analyzer {
	a := &Analyzer{globalName: k.GlobalPartition, defaultRole: k.DefaultRole}
	for _, al := range k.Aliases {
		a.aliases = append(a.aliases, alias{phrase: normalize(al.Alias), community: strings.TrimSpace(al.Community)})
	}
	for _, r := range k.Roles {
		rule := roleRule{name: r.Name}
		for _, kw := range r.Keywords {
			if n := normalize(kw); n != "" {
				rule.keywords = append(rule.keywords, n)
			}
		}
		a.roles = append(a.roles, rule)
	}
	return a
}

// tenantDecision is the outcome of reading one user turn for a community.
type tenantDecision struct {
	status     TenantStatus
	candidates []string
	// phrases are the normalised mentions that produced the decision
	phrases []string
}

// Analyze runs the slot filling machine over the transcript. The only error is an
// ExplicitTenant that is not an active community.
func (a *Analyzer) Analyze(in Input) (Analysis, error) {
	tenants := a.offeredTenants(in.Tenants)
	userTurns := newestUserTurns(in.Transcript)
	slotPhrases := append(a.mentionPhrases(tenants), a.allRoleKeywords()...)

	out := Analysis{TenantStatus: TenantUnknown}
	m := newMachine(NeedTenant)
	var tenantPhrases []string

	if strings.TrimSpace(in.ExplicitTenant) != "" {
		name, ok := findName(tenants, in.ExplicitTenant)
		if !ok {
			return out, fmt.Errorf("%w: %q is not an active community", commonModels.ErrValidation, in.ExplicitTenant)
		}
		out.Tenant, out.TenantStatus = name, TenantResolved
		tenantPhrases = []string{normalize(name)}
		m.fire(tenantResolved)
	} else {
		d := a.resolveTenant(userTurns, tenants, slotPhrases)
		out.TenantStatus = d.status
		switch d.status {
		case TenantResolved:
			out.Tenant = d.candidates[0]
			tenantPhrases = d.phrases
			m.fire(tenantResolved)
		case TenantAmbiguous:
			out.Candidates = d.candidates
			out.FollowUp = ambiguousFollowUp(d.candidates)
		default:
			out.FollowUp = unknownFollowUp(tenants)
		}
	}

	role, rolePhrase := a.resolveRole(userTurns, slotPhrases)
	if role == "" {
		out.Role, out.RoleDefaulted = a.defaultRole, true
		m.fire(roleDefaulted)
	} else {
		out.Role = role
		m.fire(roleResolved)
	}
	out.State = m.state
	if out.State != Ready {
		return out, nil
	}

	queryStrip := append(tenantPhrases, a.aliasesOf(out.Tenant)...)
	if rolePhrase != "" {
		queryStrip = append(queryStrip, rolePhrase)
	}
	slotStrip := append(append(a.mentionPhrases(tenants), queryStrip...), a.allRoleKeywords()...)
	out.CoreQuestion, out.SearchQuery = question(userTurns, slotStrip, queryStrip)
	return out, nil
}

// offeredTenants drops the global partition and blank names, then sorts.
func (a *Analyzer) offeredTenants(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" || communityModel.SameName(n, a.globalName) {
			continue
		}
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// resolveTenant replays the user turns oldest first. A turn that only answers slots may set or
// change the community through any kind of mention. A turn that asks something changes a
// resolved community only by its full name, and a partial name in it counts only after a cue
// such as "in" or "at" while no community is known yet.
func (a *Analyzer) resolveTenant(userTurns, tenants, slotPhrases []string) tenantDecision {
	cur := tenantDecision{status: TenantUnknown}
	for i := len(userTurns) - 1; i >= 0; i-- {
		text := normalize(userTurns[i])
		if d := matchFullNames(text, tenants); d.status != TenantUnknown {
			cur = d
			continue
		}
		slotAnswer := onlyFiller(stripAll(text, slotPhrases), slotFiller)
		d := a.matchAliases(text, tenants)
		if d.status == TenantUnknown {
			if !slotAnswer && cur.status != TenantUnknown {
				continue
			}
			d = matchPartialNames(text, tenants, !slotAnswer)
		}
		if d.status != TenantUnknown {
			cur = keepResolved(cur, d, slotAnswer)
		}
	}
	return cur
}

// keepResolved decides whether a later alias or partial mention replaces the current decision.
func keepResolved(cur, next tenantDecision, slotAnswer bool) tenantDecision {
	if cur.status != TenantResolved {
		return next
	}
	if next.status == TenantAmbiguous && slices.Contains(next.candidates, cur.candidates[0]) {
		return cur
	}
	if !slotAnswer {
		return cur
	}
	return next
}

func matchFullNames(text string, tenants []string) tenantDecision {
	var hits []string
	for _, t := range tenants {
		if containsPhrase(text, normalize(t)) {
			hits = append(hits, t)
		}
	}
	// "4100 Five Oaks" also contains "Five Oaks" when that is a tenant of its own
	var kept, phrases []string
	for _, h := range hits {
		shadowed := false
		for _, other := range hits {
			if other != h && len(other) > len(h) && containsPhrase(normalize(other), normalize(h)) {
				shadowed = true
				break
			}
		}
		if !shadowed {
			kept = append(kept, h)
			phrases = append(phrases, normalize(h))
		}
	}
	return decide(kept, phrases)
}

func (a *Analyzer) matchAliases(text string, tenants []string) tenantDecision {
	candidates := map[string]bool{}
	var phrases []string
	for _, al := range a.aliases {
		if !containsPhrase(text, al.phrase) {
			continue
		}
		phrases = append(phrases, al.phrase)
		if canonical, ok := findName(tenants, al.community); ok {
			candidates[canonical] = true
		}
		for _, t := range tenants {
			if !communityModel.SameName(t, al.community) && containsPhrase(normalize(t), al.phrase) {
				candidates[t] = true
			}
		}
	}
	return decide(keys(candidates), phrases)
}

// matchPartialNames matches leading or trailing runs of a name. With needCue the run must
// directly follow a tenantCue word.
func matchPartialNames(text string, tenants []string, needCue bool) tenantDecision {
	var hits, phrases []string
	for _, t := range tenants {
		for _, p := range partialPhrases(t) {
			if containsPhrase(text, p) && (!needCue || precededBy(text, p, tenantCues)) {
				hits = append(hits, t)
				phrases = append(phrases, p)
				break
			}
		}
	}
	return decide(hits, phrases)
}

// partialPhrases lists the proper leading and trailing token runs of a name that contain at
// least one significant word, longest first.
func partialPhrases(name string) []string {
	tokens := strings.Fields(normalize(name))
	var out []string
	for n := len(tokens) - 1; n >= 1; n-- {
		for _, run := range [][]string{tokens[:n], tokens[len(tokens)-n:]} {
			if significant(run) {
				out = append(out, strings.Join(run, " "))
			}
		}
	}
	return out
}

func significant(tokens []string) bool {
	for _, t := range tokens {
		if !genericNameWords[t] && len([]rune(t)) > 2 {
			return true
		}
	}
	return false
}

func decide(candidates, phrases []string) tenantDecision {
	candidates = dedupe(candidates)
	switch len(candidates) {
	case 0:
		return tenantDecision{status: TenantUnknown}
	case 1:
		return tenantDecision{status: TenantResolved, candidates: candidates, phrases: phrases}
	default:
		return tenantDecision{status: TenantAmbiguous, candidates: candidates, phrases: phrases}
	}
}

// resolveRole returns the role of the newest turn in which the user identifies as one, and the
// phrase that matched. Inside a question only first person phrases count, so "can a homeowner
// rent to a tenant" names no role. A bare keyword counts when the turn only answers slots.
func (a *Analyzer) resolveRole(userTurns []string, slotPhrases []string) (string, string) {
	for _, turn := range userTurns {
		text := normalize(turn)
		if role, phrase := a.selfIdentified(text); role != "" {
			return role, phrase
		}
		for _, rule := range a.roles {
			for _, kw := range rule.keywords {
				if firstPerson(kw) && containsPhrase(text, kw) && !precededBy(text, kw, modalWords) {
					return rule.name, kw
				}
			}
		}
		if !onlyFiller(stripAll(text, slotPhrases), slotFiller) {
			continue
		}
		for _, rule := range a.roles {
			for _, kw := range rule.keywords {
				if containsPhrase(text, kw) && !precededByMy(text, kw) {
					return rule.name, kw
				}
			}
		}
	}
	return "", ""
}

// selfIdentified finds "I'm a tenant" style statements.
func (a *Analyzer) selfIdentified(text string) (string, string) {
	for _, rule := range a.roles {
		for _, kw := range rule.keywords {
			if firstPerson(kw) {
				continue
			}
			for _, cue := range selfCues {
				if phrase := cue + " " + kw; containsPhrase(text, phrase) {
					return rule.name, phrase
				}
			}
		}
	}
	return "", ""
}

func (a *Analyzer) allRoleKeywords() []string {
	var out []string
	for _, r := range a.roles {
		out = append(out, r.keywords...)
	}
	return out
}

func (a *Analyzer) aliasesOf(tenant string) []string {
	out := []string{normalize(tenant)}
	for _, al := range a.aliases {
		if communityModel.SameName(al.community, tenant) {
			out = append(out, al.phrase)
		}
	}
	return out
}

// mentionPhrases are every way a tenant can be named, used to strip slot answers from questions.
func (a *Analyzer) mentionPhrases(tenants []string) []string {
	var out []string
	for _, t := range tenants {
		out = append(out, normalize(t))
		out = append(out, partialPhrases(t)...)
	}
	for _, al := range a.aliases {
		out = append(out, al.phrase)
	}
	return out
}

// question picks the newest user turn that is more than a slot answer and derives the search
// query from it. Only the phrases that filled a slot are cut from the query.
func question(userTurns []string, slotStrip, queryStrip []string) (string, string) {
	for _, turn := range userTurns {
		text := normalize(turn)
		if onlyFiller(stripAll(text, slotStrip), slotFiller) {
			continue
		}
		query := dropFiller(stripAll(text, queryStrip), searchFiller)
		if query == "" {
			query = text
		}
		return strings.TrimSpace(turn), query
	}
	return "", ""
}

// stripAll removes phrases longest first so "4100 five oaks" goes before "five oaks".
func stripAll(text string, phrases []string) string {
	sorted := append([]string{}, phrases...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	for _, p := range sorted {
		text = removePhrase(text, p)
	}
	return text
}

func newestUserTurns(transcript []commonModels.Turn) []string {
	var out []string
	for i := len(transcript) - 1; i >= 0; i-- {
		t := transcript[i]
		if t.Role == commonModels.RoleUser && strings.TrimSpace(t.Text) != "" {
			out = append(out, t.Text)
		}
	}
	return out
}

func findName(names []string, want string) (string, bool) {
	for _, n := range names {
		if communityModel.SameName(n, want) {
			return n, true
		}
	}
	return "", false
}

func dedupe(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

func keys(m map[string]bool) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
