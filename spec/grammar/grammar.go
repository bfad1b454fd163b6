package grammar

type CompiledGrammar struct {
	Name      string         `json:"name"`
	Lexical   *LexicalSpec   `json:"lexical,omitempty"`
	Syntactic *SyntacticSpec `json:"syntactic"`
}

// StateNil represents an empty entry of a transition table. It is the implicit dead state;
// a lexer reading it stops matching.
const StateNil = -1

type RowDisplacementTable struct {
	OriginalRowCount int   `json:"original_row_count"`
	OriginalColCount int   `json:"original_col_count"`
	EmptyValue       int   `json:"empty_value"`
	Entries          []int `json:"entries"`
	Bounds           []int `json:"bounds"`
	RowDisplacement  []int `json:"row_displacement"`
}

type UniqueEntriesTable struct {
	UniqueEntries             *RowDisplacementTable `json:"unique_entries,omitempty"`
	UncompressedUniqueEntries []int                 `json:"uncompressed_unique_entries,omitempty"`
	RowNums                   []int                 `json:"row_nums"`
	OriginalRowCount          int                   `json:"original_row_count"`
	OriginalColCount          int                   `json:"original_col_count"`
	EmptyValue                int                   `json:"empty_value"`
}

// TransitionTable is a dense DFA table. Rows are DFA states and columns are character classes.
// Exactly one of Transition and UncompressedTransition is set, depending on the compression level.
type TransitionTable struct {
	InitialState int `json:"initial_state"`

	// AcceptingStates maps a state to the index of the lexical kind it accepts, or -1.
	AcceptingStates        []int               `json:"accepting_states"`
	RowCount               int                 `json:"row_count"`
	ColCount               int                 `json:"col_count"`
	Transition             *UniqueEntriesTable `json:"transition,omitempty"`
	UncompressedTransition []int               `json:"uncompressed_transition,omitempty"`
}

// Interval is a closed range of code points belonging to a character class.
type Interval struct {
	From  rune `json:"from"`
	To    rune `json:"to"`
	Class int  `json:"class"`
}

type LexicalSpec struct {
	KindNames []string `json:"kind_names"`

	// Ignore lists the indexes of kinds whose tokens a lexer discards.
	Ignore   []int `json:"ignore"`
	EOFToken int   `json:"eof_token"`

	// Intervals are sorted and disjoint. A code point not covered by any interval has no class.
	Intervals []*Interval `json:"intervals"`

	// ByteClass maps each code point below 256 to its class, or -1.
	ByteClass        []int            `json:"byte_class"`
	CompressionLevel int              `json:"compression_level"`
	DFA              *TransitionTable `json:"dfa"`
}

type SyntacticSpec struct {
	Class                   string   `json:"class"`
	Action                  []int    `json:"action"`
	GoTo                    []int    `json:"goto"`
	StateCount              int      `json:"state_count"`
	InitialState            int      `json:"initial_state"`
	StartProduction         int      `json:"start_production"`
	LHSSymbols              []int    `json:"lhs_symbols"`
	AlternativeSymbolCounts []int    `json:"alternative_symbol_counts"`
	Terminals               []string `json:"terminals"`
	TerminalCount           int      `json:"terminal_count"`
	KindToTerminal          []int    `json:"kind_to_terminal"`
	NonTerminals            []string `json:"non_terminals"`
	NonTerminalCount        int      `json:"non_terminal_count"`
	EOFSymbol               int      `json:"eof_symbol"`
	First                   [][]int  `json:"first"`
	Follow                  [][]int  `json:"follow"`
}
