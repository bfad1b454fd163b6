package symbol

import (
	"fmt"
	"sort"
)

type SymbolNum uint16

func (n SymbolNum) Int() int {
	return int(n)
}

// Symbol identifies a grammar symbol by its kind and its registration number. Two symbols
// registered with the same text are still distinct symbols.
//
// A symbol packs three fields into 16 bits:
//
//	bit 15     1 for terminals, 0 for non-terminals
//	bit 14     marks the augmented start symbol (non-terminals) or EOF (terminals)
//	bits 0-13  the number, unique per kind
type Symbol uint16

const (
	bitTerminal  = uint16(0x8000)
	bitReserved  = uint16(0x4000)
	maskNumber   = uint16(0x3fff)
	symbolNumMax = SymbolNum(maskNumber)

	SymbolNil   = Symbol(0)
	symbolStart = Symbol(bitReserved | 1)
	SymbolEOF   = Symbol(bitTerminal | bitReserved | 1)

	// SymbolNameEOF is enclosed in `<` and `>` so that no user-defined name can collide with it.
	SymbolNameEOF = "<eof>"

	// Number 1 belongs to the start symbol and to EOF.
	nonTerminalNumMin = SymbolNum(2)
	terminalNumMin    = SymbolNum(2)
)

func newSymbol(terminal bool, num SymbolNum) (Symbol, error) {
	if num > symbolNumMax {
		return SymbolNil, fmt.Errorf("a symbol number exceeds the limit; limit: %v, passed: %v", symbolNumMax, num)
	}
	if terminal {
		return Symbol(bitTerminal | uint16(num)), nil
	}
	return Symbol(num), nil
}

func (s Symbol) String() string {
	switch {
	case s.IsNil():
		return "?0"
	case s.IsStart():
		return fmt.Sprintf("s%v", s.Num())
	case s.IsEOF():
		return fmt.Sprintf("e%v", s.Num())
	case s.IsTerminal():
		return fmt.Sprintf("t%v", s.Num())
	}
	return fmt.Sprintf("n%v", s.Num())
}

func (s Symbol) Num() SymbolNum {
	return SymbolNum(uint16(s) & maskNumber)
}

// Byte returns the big-endian encoding of the symbol.
func (s Symbol) Byte() []byte {
	return []byte{byte(uint16(s) >> 8), byte(s)}
}

func (s Symbol) IsNil() bool {
	return s.Num() == 0
}

func (s Symbol) IsStart() bool {
	return !s.IsNil() && uint16(s)&(bitTerminal|bitReserved) == bitReserved
}

func (s Symbol) IsEOF() bool {
	return !s.IsNil() && uint16(s)&(bitTerminal|bitReserved) == bitTerminal|bitReserved
}

func (s Symbol) IsNonTerminal() bool {
	return !s.IsNil() && uint16(s)&bitTerminal == 0
}

func (s Symbol) IsTerminal() bool {
	return !s.IsNil() && uint16(s)&bitTerminal != 0
}

// SymbolTable hands out symbols. Registration never unifies: each call yields a new symbol,
// and a text lookup resolves to the first symbol registered under that text.
type SymbolTable struct {
	text2Sym     map[string]Symbol
	sym2Text     map[Symbol]string
	nonTermTexts []string
	termTexts    []string
	nonTermNum   SymbolNum
	termNum      SymbolNum
	hasStart     bool
}

type SymbolTableWriter struct {
	*SymbolTable
}

type SymbolTableReader struct {
	*SymbolTable
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{
		text2Sym: map[string]Symbol{
			SymbolNameEOF: SymbolEOF,
		},
		sym2Text: map[Symbol]string{
			SymbolEOF: SymbolNameEOF,
		},
		termTexts: []string{
			"",            // Nil
			SymbolNameEOF, // EOF
		},
		nonTermTexts: []string{
			"", // Nil
			"", // Start Symbol
		},
		nonTermNum: nonTerminalNumMin,
		termNum:    terminalNumMin,
	}
}

func (t *SymbolTable) Writer() *SymbolTableWriter {
	return &SymbolTableWriter{
		SymbolTable: t,
	}
}

func (t *SymbolTable) Reader() *SymbolTableReader {
	return &SymbolTableReader{
		SymbolTable: t,
	}
}

func (w *SymbolTableWriter) RegisterStartSymbol(text string) (Symbol, error) {
	if w.hasStart {
		return SymbolNil, fmt.Errorf("a start symbol is already registered: %v", w.nonTermTexts[symbolStart.Num().Int()])
	}
	w.hasStart = true
	w.nonTermTexts[symbolStart.Num()] = text
	w.bind(symbolStart, text)
	return symbolStart, nil
}

func (w *SymbolTableWriter) RegisterNonTerminalSymbol(text string) (Symbol, error) {
	sym, err := newSymbol(false, w.nonTermNum)
	if err != nil {
		return SymbolNil, err
	}
	w.nonTermNum++
	w.nonTermTexts = append(w.nonTermTexts, text)
	w.bind(sym, text)
	return sym, nil
}

func (w *SymbolTableWriter) RegisterTerminalSymbol(text string) (Symbol, error) {
	sym, err := newSymbol(true, w.termNum)
	if err != nil {
		return SymbolNil, err
	}
	w.termNum++
	w.termTexts = append(w.termTexts, text)
	w.bind(sym, text)
	return sym, nil
}

// bind records the text of sym. A text keeps resolving to the first symbol bound to it.
func (w *SymbolTableWriter) bind(sym Symbol, text string) {
	if _, ok := w.text2Sym[text]; !ok {
		w.text2Sym[text] = sym
	}
	w.sym2Text[sym] = text
}

func (r *SymbolTableReader) ToSymbol(text string) (Symbol, bool) {
	if sym, ok := r.text2Sym[text]; ok {
		return sym, true
	}
	return SymbolNil, false
}

func (r *SymbolTableReader) ToText(sym Symbol) (string, bool) {
	text, ok := r.sym2Text[sym]
	return text, ok
}

// Contains reports whether the symbol was handed out by this table.
func (r *SymbolTableReader) Contains(sym Symbol) bool {
	_, ok := r.sym2Text[sym]
	return ok
}

// TerminalSymbols returns all terminal symbols, including EOF, in number order.
func (r *SymbolTableReader) TerminalSymbols() []Symbol {
	return r.symbols(Symbol.IsTerminal)
}

func (r *SymbolTableReader) TerminalTexts() ([]string, error) {
	if r.termNum == terminalNumMin {
		return nil, fmt.Errorf("symbol table has no terminals")
	}
	return r.termTexts, nil
}

// TerminalCount returns the width of a table indexed by terminal numbers.
func (r *SymbolTableReader) TerminalCount() int {
	return r.termNum.Int()
}

// NonTerminalSymbols returns all non-terminal symbols, including the start symbol, in number order.
func (r *SymbolTableReader) NonTerminalSymbols() []Symbol {
	return r.symbols(Symbol.IsNonTerminal)
}

func (r *SymbolTableReader) symbols(pred func(Symbol) bool) []Symbol {
	var syms []Symbol
	for sym := range r.sym2Text {
		if pred(sym) {
			syms = append(syms, sym)
		}
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i].Num() < syms[j].Num()
	})
	return syms
}

func (r *SymbolTableReader) NonTerminalTexts() ([]string, error) {
	if r.nonTermNum == nonTerminalNumMin || !r.hasStart {
		return nil, fmt.Errorf("symbol table has no non-terminals or no start symbol")
	}
	return r.nonTermTexts, nil
}

// NonTerminalCount returns the width of a table indexed by non-terminal numbers.
func (r *SymbolTableReader) NonTerminalCount() int {
	return r.nonTermNum.Int()
}
