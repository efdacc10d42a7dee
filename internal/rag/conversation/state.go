package conversation

// State is the slot filling stage of a conversation.
type State string

const (
	NeedTenant State = "need_tenant"
	NeedRole   State = "need_role"
	Ready      State = "ready"
)

type event int

const (
	tenantResolved event = iota
	roleResolved
	roleDefaulted
)

var transitions = map[State]map[event]State{
	NeedTenant: {tenantResolved: NeedRole},
	NeedRole:   {roleResolved: Ready, roleDefaulted: Ready},
}

// machine walks the transition table. Events that do not apply to the current state are ignored.
type machine struct {
	state State
}

func newMachine(start State) *machine {
	return &machine{state: start}
}

func (m *machine) fire(e event) State {
	if next, ok := transitions[m.state][e]; ok {
		m.state = next
	}
	return m.state
}

type TenantStatus string

const (
	TenantUnknown   TenantStatus = "unknown"
	TenantAmbiguous TenantStatus = "ambiguous"
	TenantResolved  TenantStatus = "resolved"
)
