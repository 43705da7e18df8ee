package prim

// RawRecord is one primitive as read from a table source, before any
// expression is parsed. It carries no format-specific detail beyond line
// numbers for error reporting.
type RawRecord struct {
	Name    string
	Line    int
	Entries []RawEntry
}

// RawEntry is one key/value pair of a record. For KeyFunction the value is
// the whole "PIN=EXPR" text; for every other key it is a single signal token.
type RawEntry struct {
	Key   Key
	Value string
	Line  int
}

// Key names an attribute kind.
type Key string

const (
	KeyFunction   Key = "function"
	KeyThreeState Key = "three_state"
	KeyEnable     Key = "enable"
	KeyDataIn     Key = "data_in"
	KeyClear      Key = "clear"
	KeyPreset     Key = "preset"
	KeyClockedOn  Key = "clocked_on"
	KeyNextState  Key = "next_state"
)

var knownKeys = map[Key]struct{}{
	KeyFunction:   {},
	KeyThreeState: {},
	KeyEnable:     {},
	KeyDataIn:     {},
	KeyClear:      {},
	KeyPreset:     {},
	KeyClockedOn:  {},
	KeyNextState:  {},
}

// ParseKey reports whether s is a recognised attribute key.
func ParseKey(s string) (Key, bool) {
	k := Key(s)
	_, ok := knownKeys[k]
	return k, ok
}
