package world

// Kind tags a requirement node
type Kind int

// Requirement kinds. The set is closed; evaluators switch over all of them.
const (
	And Kind = iota
	Or
	Not
	HasItem
	Count
	CanAccess
	Setting
	Macro
	Impossible
)

var kindNames = [...]string{
	And:        "and",
	Or:         "or",
	Not:        "not",
	HasItem:    "has_item",
	Count:      "count",
	CanAccess:  "can_access",
	Setting:    "setting",
	Macro:      "macro",
	Impossible: "impossible",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// LocationID indexes a world's location table
type LocationID int

// SettingID indexes a world's declared setting flags
type SettingID int

// MacroIndex indexes a world's macro table
type MacroIndex int

// Requirement is a node of a logical requirement expression.
// Only the fields relevant to Kind are set.
type Requirement struct {
	Kind     Kind
	Args     []Requirement
	Count    int
	Item     ItemID
	Location LocationID
	Setting  SettingID
	Macro    MacroIndex
}

// AllOf builds an And node
func AllOf(args ...Requirement) Requirement {
	return Requirement{Kind: And, Args: args}
}

// AnyOf builds an Or node
func AnyOf(args ...Requirement) Requirement {
	return Requirement{Kind: Or, Args: args}
}

// NotReq builds a Not node
func NotReq(arg Requirement) Requirement {
	return Requirement{Kind: Not, Args: []Requirement{arg}}
}

// Has builds a HasItem node
func Has(id ItemID) Requirement {
	return Requirement{Kind: HasItem, Item: id}
}

// CountOf builds a Count node
func CountOf(n int, id ItemID) Requirement {
	return Requirement{Kind: Count, Count: n, Item: id}
}

// Access builds a CanAccess node
func Access(loc LocationID) Requirement {
	return Requirement{Kind: CanAccess, Location: loc}
}

// Flag builds a Setting node
func Flag(s SettingID) Requirement {
	return Requirement{Kind: Setting, Setting: s}
}

// MacroRef builds a Macro node
func MacroRef(idx MacroIndex) Requirement {
	return Requirement{Kind: Macro, Macro: idx}
}

// Free is the requirement that is always met
func Free() Requirement {
	return Has(Nothing)
}

// Never is the requirement that is never met
func Never() Requirement {
	return Requirement{Kind: Impossible}
}
