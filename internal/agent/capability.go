package agent

type Capability string

const (
	CapabilityValidate Capability = "validate"
	CapabilityMatch    Capability = "match"
	CapabilityRoute    Capability = "route"
	CapabilityChat     Capability = "chat"
)

type FieldKind int

const (
	KindBool FieldKind = iota
	KindNumber
	KindString
	KindArray
	KindObject
)

func (k FieldKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// Field is a key a capability result must carry, with its JSON type.
type Field struct {
	Name string
	Kind FieldKind
}

// Spec describes where a capability's result usually lives inside an agent
// envelope and what a usable result must contain.
type Spec struct {
	Capability Capability
	ResultKey  string
	Required   []Field
}

var specs = map[Capability]Spec{
	CapabilityValidate: {
		Capability: CapabilityValidate,
		ResultKey:  "validation_result",
		Required: []Field{
			{Name: "isValid", Kind: KindBool},
			{Name: "confidence", Kind: KindNumber},
			{Name: "issues", Kind: KindArray},
		},
	},
	CapabilityMatch: {
		Capability: CapabilityMatch,
		ResultKey:  "matching_result",
		Required: []Field{
			{Name: "matches", Kind: KindArray},
		},
	},
	CapabilityRoute: {
		Capability: CapabilityRoute,
		ResultKey:  "routing_result",
		Required: []Field{
			{Name: "assignedVolunteer", Kind: KindObject},
			{Name: "simpleRoute", Kind: KindObject},
		},
	},
	CapabilityChat: {
		Capability: CapabilityChat,
		ResultKey:  "chat_result",
		Required: []Field{
			{Name: "response", Kind: KindString},
		},
	},
}

func SpecFor(c Capability) (Spec, bool) {
	s, ok := specs[c]
	return s, ok
}

// Capabilities lists every capability the client knows how to normalize.
func Capabilities() []Capability {
	return []Capability{CapabilityValidate, CapabilityMatch, CapabilityRoute, CapabilityChat}
}
