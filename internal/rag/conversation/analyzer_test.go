package conversation

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/akolanti/CommunityRAG/internal/config"
	"github.com/akolanti/CommunityRAG/internal/domain/commonModels"
)

const global = "North Carolina General Statutes"

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	k, err := config.LoadKnowledge("")
	if err != nil {
		t.Fatalf("embedded knowledge: %v", err)
	}
	return NewAnalyzer(k)
}

func user(text string) commonModels.Turn {
	return commonModels.Turn{Role: commonModels.RoleUser, Text: text}
}

func assistant(text string) commonModels.Turn {
	return commonModels.Turn{Role: commonModels.RoleAssistant, Text: text}
}

func TestAnalyze_FiveOaksAmbiguity(t *testing.T) {
	a := newTestAnalyzer(t)
	tenants := []string{"Five Oaks Lakeside", "4100 Five Oaks", global}
	transcript := []commonModels.Turn{user("I'm with Five Oaks. Can I put up a fence?")}

	got, err := a.Analyze(Input{Transcript: transcript, Tenants: tenants})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.State != NeedTenant || got.TenantStatus != TenantAmbiguous {
		t.Fatalf("state = %s/%s, want need_tenant/ambiguous", got.State, got.TenantStatus)
	}
	wantCandidates := []string{"4100 Five Oaks", "Five Oaks Lakeside"}
	if !reflect.DeepEqual(got.Candidates, wantCandidates) {
		t.Errorf("Candidates = %v, want %v", got.Candidates, wantCandidates)
	}
	wantFollowUp := "We manage both **4100 Five Oaks** and **Five Oaks Lakeside**. Which one are you referring to?"
	if got.FollowUp != wantFollowUp {
		t.Errorf("FollowUp = %q, want %q", got.FollowUp, wantFollowUp)
	}

	transcript = append(transcript, assistant(got.FollowUp), user("4100 Five Oaks"))
	got, err = a.Analyze(Input{Transcript: transcript, Tenants: tenants})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.State != Ready || got.Tenant != "4100 Five Oaks" {
		t.Fatalf("got %s tenant %q, want ready with 4100 Five Oaks", got.State, got.Tenant)
	}
	if got.Role != "Homeowner" || !got.RoleDefaulted {
		t.Errorf("Role = %q defaulted=%v, want defaulted Homeowner", got.Role, got.RoleDefaulted)
	}
	if got.CoreQuestion != "I'm with Five Oaks. Can I put up a fence?" {
		t.Errorf("CoreQuestion = %q", got.CoreQuestion)
	}
	if !strings.Contains(got.SearchQuery, "put up a fence") || strings.Contains(got.SearchQuery, "five oaks") {
		t.Errorf("SearchQuery = %q", got.SearchQuery)
	}
}

func TestAnalyze_SingleTurn(t *testing.T) {
	a := newTestAnalyzer(t)
	tenants := []string{"4100 Five Oaks", "Oakwood Commons", global}

	tests := []struct {
		name          string
		turns         []commonModels.Turn
		wantTenant    string
		wantRole      string
		wantDefaulted bool
		wantQuestion  string
	}{
		{
			name:         "alias without competitor",
			turns:        []commonModels.Turn{user("We're at 4100. Are pets allowed? I'm a tenant")},
			wantTenant:   "4100 Five Oaks",
			wantRole:     "Tenant",
			wantQuestion: "We're at 4100. Are pets allowed? I'm a tenant",
		},
		{
			name:          "partial name",
			turns:         []commonModels.Turn{user("I'm in Oakwood, what are the pool hours?")},
			wantTenant:    "Oakwood Commons",
			wantRole:      "Homeowner",
			wantDefaulted: true,
			wantQuestion:  "I'm in Oakwood, what are the pool hours?",
		},
		{
			name:         "my tenant is not a role",
			turns:        []commonModels.Turn{user("Oakwood Commons here. I own the unit and my tenant keeps parking on the lawn, what can I do?")},
			wantTenant:   "Oakwood Commons",
			wantRole:     "Homeowner",
			wantQuestion: "Oakwood Commons here. I own the unit and my tenant keeps parking on the lawn, what can I do?",
		},
		{
			name: "question from an earlier turn",
			turns: []commonModels.Turn{
				user("Can I install solar panels?"),
				assistant("Which community do you live in?"),
				user("Oakwood, I'm on the board"),
			},
			wantTenant:   "Oakwood Commons",
			wantRole:     "Board Member",
			wantQuestion: "Can I install solar panels?",
		},
		{
			name:          "slots only",
			turns:         []commonModels.Turn{user("Oakwood Commons")},
			wantTenant:    "Oakwood Commons",
			wantRole:      "Homeowner",
			wantDefaulted: true,
			wantQuestion:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Analyze(Input{Transcript: tt.turns, Tenants: tenants})
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if got.State != Ready {
				t.Fatalf("State = %s, want ready (follow up %q)", got.State, got.FollowUp)
			}
			if got.Tenant != tt.wantTenant {
				t.Errorf("Tenant = %q, want %q", got.Tenant, tt.wantTenant)
			}
			if got.Role != tt.wantRole || got.RoleDefaulted != tt.wantDefaulted {
				t.Errorf("Role = %q defaulted=%v, want %q defaulted=%v", got.Role, got.RoleDefaulted, tt.wantRole, tt.wantDefaulted)
			}
			if got.CoreQuestion != tt.wantQuestion {
				t.Errorf("CoreQuestion = %q, want %q", got.CoreQuestion, tt.wantQuestion)
			}
		})
	}
}

func TestAnalyze_SearchQueryDropsSlots(t *testing.T) {
	a := newTestAnalyzer(t)
	got, err := a.Analyze(Input{
		Transcript: []commonModels.Turn{
			user("Can I install solar panels?"),
			assistant("Which community do you live in?"),
			user("Oakwood Commons"),
		},
		Tenants: []string{"Oakwood Commons"},
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.SearchQuery != "can i install solar panels" {
		t.Errorf("SearchQuery = %q", got.SearchQuery)
	}
}

func TestAnalyze_UnknownTenant(t *testing.T) {
	a := newTestAnalyzer(t)
	got, err := a.Analyze(Input{
		Transcript: []commonModels.Turn{user("What do the statutes say about fences?")},
		Tenants:    []string{"Oakwood Commons", global, "Brier Creek"},
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.State != NeedTenant || got.TenantStatus != TenantUnknown {
		t.Fatalf("got %s/%s, want need_tenant/unknown", got.State, got.TenantStatus)
	}
	want := "Which community do you live in? We currently serve Brier Creek and Oakwood Commons."
	if got.FollowUp != want {
		t.Errorf("FollowUp = %q, want %q", got.FollowUp, want)
	}
	if got.CoreQuestion != "" {
		t.Errorf("CoreQuestion = %q, want empty before the tenant is known", got.CoreQuestion)
	}
}

func TestAnalyze_ExplicitTenant(t *testing.T) {
	a := newTestAnalyzer(t)
	tenants := []string{"Oakwood Commons", "Brier Creek", global}
	transcript := []commonModels.Turn{user("Can I paint my front door?")}

	got, err := a.Analyze(Input{Transcript: transcript, Tenants: tenants, ExplicitTenant: "oakwood commons"})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.State != Ready || got.Tenant != "Oakwood Commons" {
		t.Errorf("got %s tenant %q, want ready with Oakwood Commons", got.State, got.Tenant)
	}
	if got.CoreQuestion != "Can I paint my front door?" {
		t.Errorf("CoreQuestion = %q", got.CoreQuestion)
	}

	for _, bad := range []string{"Nowhere Estates", global} {
		_, err = a.Analyze(Input{Transcript: transcript, Tenants: tenants, ExplicitTenant: bad})
		if !errors.Is(err, commonModels.ErrValidation) {
			t.Errorf("ExplicitTenant %q: error = %v, want ErrValidation", bad, err)
		}
	}
}

func TestAnalyze_IgnoresAssistantTurns(t *testing.T) {
	a := newTestAnalyzer(t)
	got, err := a.Analyze(Input{
		Transcript: []commonModels.Turn{
			assistant("We manage Oakwood Commons and Brier Creek."),
			user("What are the quiet hours?"),
		},
		Tenants: []string{"Oakwood Commons", "Brier Creek"},
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if got.TenantStatus != TenantUnknown {
		t.Errorf("TenantStatus = %s, want unknown", got.TenantStatus)
	}
}

func TestFollowUpText(t *testing.T) {
	got := ambiguousFollowUp([]string{"A", "B", "C"})
	want := "We manage **A**, **B** and **C**. Which one are you referring to?"
	if got != want {
		t.Errorf("ambiguousFollowUp = %q, want %q", got, want)
	}
	if got := unknownFollowUp(nil); got != "Which community do you live in?" {
		t.Errorf("unknownFollowUp(nil) = %q", got)
	}
	if got := ReadyWithoutQuestion("Brier Creek"); got != "Thanks! What would you like to know about Brier Creek?" {
		t.Errorf("ReadyWithoutQuestion = %q", got)
	}
}

func TestTextHelpers(t *testing.T) {
	if got := normalize("  We're at 4100-Five  Oaks!! "); got != "we re at 4100 five oaks" {
		t.Errorf("normalize = %q", got)
	}
	if containsPhrase("oakwood commons", "oak") {
		t.Error("containsPhrase matched inside a word")
	}
	if !precededByMy("my tenant and my tenant", "tenant") {
		t.Error("precededByMy: every occurrence follows my")
	}
	if precededByMy("my tenant says the tenant pays", "tenant") {
		t.Error("precededByMy: second occurrence does not follow my")
	}
	if m := newMachine(NeedTenant); m.fire(roleResolved) != NeedTenant {
		t.Error("role event must not skip the tenant slot")
	}
}

func TestAnalyze_ResolvedTenantSurvivesLaterQuestions(t *testing.T) {
	a := newTestAnalyzer(t)
	tenants := []string{"4100 Five Oaks", "Five Oaks Lakeside", "Brier Creek", global}

	tests := []struct {
		name       string
		turns      []commonModels.Turn
		wantState  State
		wantTenant string
	}{
		{
			name: "common word from a name",
			turns: []commonModels.Turn{
				user("I live in Five Oaks Lakeside"),
				assistant("Thanks! What would you like to know about Five Oaks Lakeside?"),
				user("Can I cut down the oaks in my yard?"),
			},
			wantState:  Ready,
			wantTenant: "Five Oaks Lakeside",
		},
		{
			name: "number word from a name",
			turns: []commonModels.Turn{
				user("I'm with 4100 Five Oaks"),
				assistant("Thanks! What would you like to know about 4100 Five Oaks?"),
				user("Can I have five guests at the pool?"),
			},
			wantState:  Ready,
			wantTenant: "4100 Five Oaks",
		},
		{
			name: "landmark shared with another community",
			turns: []commonModels.Turn{
				user("I'm with 4100 Five Oaks"),
				assistant("Thanks! What would you like to know about 4100 Five Oaks?"),
				user("Is there a setback from the creek for fences?"),
			},
			wantState:  Ready,
			wantTenant: "4100 Five Oaks",
		},
		{
			name: "ambiguous alias that includes the resolved community",
			turns: []commonModels.Turn{
				user("I'm with 4100 Five Oaks"),
				assistant("Thanks! What would you like to know about 4100 Five Oaks?"),
				user("Do the Five Oaks pool rules allow glass?"),
			},
			wantState:  Ready,
			wantTenant: "4100 Five Oaks",
		},
		{
			name: "full name in a later question switches",
			turns: []commonModels.Turn{
				user("I'm with 4100 Five Oaks"),
				assistant("Thanks! What would you like to know about 4100 Five Oaks?"),
				user("Actually what are the Brier Creek pool hours?"),
			},
			wantState:  Ready,
			wantTenant: "Brier Creek",
		},
		{
			name: "slot answer with a partial name switches",
			turns: []commonModels.Turn{
				user("I'm with 4100 Five Oaks"),
				assistant("Thanks! What would you like to know about 4100 Five Oaks?"),
				user("sorry, I'm in Lakeside"),
			},
			wantState:  Ready,
			wantTenant: "Five Oaks Lakeside",
		},
		{
			name: "partial name in a question needs a cue",
			turns: []commonModels.Turn{
				user("Is there a setback from the creek for fences?"),
			},
			wantState: NeedTenant,
		},
		{
			name: "ambiguity is answered by a slot turn",
			turns: []commonModels.Turn{
				user("I'm with Five Oaks"),
				assistant("We manage both **4100 Five Oaks** and **Five Oaks Lakeside**. Which one are you referring to?"),
				user("Lakeside"),
			},
			wantState:  Ready,
			wantTenant: "Five Oaks Lakeside",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Analyze(Input{Transcript: tt.turns, Tenants: tenants})
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if got.State != tt.wantState {
				t.Fatalf("State = %s, want %s (follow up %q)", got.State, tt.wantState, got.FollowUp)
			}
			if got.Tenant != tt.wantTenant {
				t.Errorf("Tenant = %q, want %q", got.Tenant, tt.wantTenant)
			}
			if tt.wantState == Ready && got.FollowUp != "" {
				t.Errorf("FollowUp = %q, want none once the community is known", got.FollowUp)
			}
		})
	}
}

func TestAnalyze_RoleNeedsSelfIdentification(t *testing.T) {
	a := newTestAnalyzer(t)
	tenants := []string{"Oakwood Commons"}

	tests := []struct {
		name          string
		turns         []commonModels.Turn
		wantRole      string
		wantDefaulted bool
	}{
		{
			name:          "roles mentioned in a question",
			turns:         []commonModels.Turn{user("Oakwood Commons: can a homeowner rent to a tenant?")},
			wantRole:      "Homeowner",
			wantDefaulted: true,
		},
		{
			name:     "self identified beats a later noun",
			turns:    []commonModels.Turn{user("Oakwood Commons. I'm a homeowner, can I lease to a tenant?")},
			wantRole: "Homeowner",
		},
		{
			name:          "can i rent is a question",
			turns:         []commonModels.Turn{user("Oakwood Commons: can I rent out my garage?")},
			wantRole:      "Homeowner",
			wantDefaulted: true,
		},
		{
			name:     "first person phrase",
			turns:    []commonModels.Turn{user("Oakwood Commons. I rent my unit, who fixes the AC?")},
			wantRole: "Tenant",
		},
		{
			name: "bare keyword as a slot answer",
			turns: []commonModels.Turn{
				user("Oakwood Commons: who fixes the gate?"),
				assistant("Are you a homeowner or a tenant?"),
				user("renter"),
			},
			wantRole: "Tenant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := a.Analyze(Input{Transcript: tt.turns, Tenants: tenants})
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if got.Role != tt.wantRole || got.RoleDefaulted != tt.wantDefaulted {
				t.Errorf("Role = %q defaulted=%v, want %q defaulted=%v", got.Role, got.RoleDefaulted, tt.wantRole, tt.wantDefaulted)
			}
		})
	}
}
