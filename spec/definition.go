package spec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	verr "github.com/nihei9/tabula/error"
)

// Definition is the input of the generator: token patterns, ignored patterns, and production rules.
//
//	{
//	  "name": "expr",
//	  "start": "expr",
//	  "tokens": [{"name": "id", "pattern": "[a-z]+"}, {"name": "add", "pattern": "\\+"}],
//	  "ignore": [{"name": "ws", "pattern": "[ \\t\\n]+"}],
//	  "rules": [{"lhs": "expr", "rhs": ["expr", "add", "id"]}, {"lhs": "expr", "rhs": ["id"]}]
//	}
//
// Names in "rhs" that match a token name are terminals; all other names are non-terminals. The
// start symbol defaults to the LHS of the first rule.
type Definition struct {
	Name   string      `json:"name"`
	Start  string      `json:"start,omitempty"`
	Tokens []*TokenDef `json:"tokens"`
	Ignore []*TokenDef `json:"ignore,omitempty"`
	Rules  []*RuleDef  `json:"rules"`

	Pos Position `json:"-"`
}

type TokenDef struct {
	Name    string `json:"name"`
	Pattern string `json:"pattern"`

	Pos Position `json:"-"`
}

type RuleDef struct {
	LHS string   `json:"lhs"`
	RHS []string `json:"rhs"`

	Pos Position `json:"-"`
}

type Position struct {
	Row int
	Col int
}

func (p Position) String() string {
	return fmt.Sprintf("%v:%v", p.Row, p.Col)
}

// StartSymbol returns the designated start symbol or the LHS of the first rule.
func (d *Definition) StartSymbol() string {
	if d.Start != "" {
		return d.Start
	}
	if len(d.Rules) == 0 {
		return ""
	}
	return d.Rules[0].LHS
}

// Parse reads a definition. Malformed JSON and structurally invalid definitions are reported as
// verr.SpecErrors with the row and column of the offending value.
func Parse(src io.Reader) (*Definition, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	def := &Definition{}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	err = dec.Decode(def)
	if err != nil {
		return nil, verr.SpecErrors{decodeError(b, err)}
	}
	if dec.More() {
		offset := int(dec.InputOffset())
		row, col := position(b, offset+leadingSpace(b[offset:]))
		return nil, verr.SpecErrors{
			&verr.SpecError{
				Cause: synErrTrailingValue,
				Row:   row,
				Col:   col,
			},
		}
	}

	locs, err := locate(b)
	if err != nil {
		return nil, verr.SpecErrors{decodeError(b, err)}
	}
	def.Pos = locs.pos(b, "")
	var errs verr.SpecErrors
	nullElem := func(path string) {
		pos := locs.pos(b, path)
		errs = append(errs, &verr.SpecError{
			Cause:  synErrNullElement,
			Detail: path,
			Row:    pos.Row,
			Col:    pos.Col,
		})
	}
	for i, t := range def.Tokens {
		path := fmt.Sprintf("tokens[%v]", i)
		if t == nil {
			nullElem(path)
			continue
		}
		t.Pos = locs.pos(b, path)
	}
	for i, t := range def.Ignore {
		path := fmt.Sprintf("ignore[%v]", i)
		if t == nil {
			nullElem(path)
			continue
		}
		t.Pos = locs.pos(b, path)
	}
	for i, r := range def.Rules {
		path := fmt.Sprintf("rules[%v]", i)
		if r == nil {
			nullElem(path)
			continue
		}
		r.Pos = locs.pos(b, path)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	errs = validate(def)
	if len(errs) > 0 {
		return nil, errs
	}

	return def, nil
}

func validate(def *Definition) verr.SpecErrors {
	var errs verr.SpecErrors
	if def.Name == "" {
		errs = append(errs, &verr.SpecError{
			Cause: synErrNoName,
			Row:   def.Pos.Row,
			Col:   def.Pos.Col,
		})
	}
	if len(def.Tokens) == 0 {
		errs = append(errs, &verr.SpecError{
			Cause: synErrNoToken,
			Row:   def.Pos.Row,
			Col:   def.Pos.Col,
		})
	}
	if len(def.Rules) == 0 {
		errs = append(errs, &verr.SpecError{
			Cause: synErrNoProduction,
			Row:   def.Pos.Row,
			Col:   def.Pos.Col,
		})
	}

	names := map[string]struct{}{}
	checkToken := func(t *TokenDef) {
		if t == nil {
			return
		}
		if t.Name == "" {
			errs = append(errs, &verr.SpecError{
				Cause: synErrNoTokenName,
				Row:   t.Pos.Row,
				Col:   t.Pos.Col,
			})
			return
		}
		if t.Pattern == "" {
			errs = append(errs, &verr.SpecError{
				Cause:  synErrNoPattern,
				Detail: t.Name,
				Row:    t.Pos.Row,
				Col:    t.Pos.Col,
			})
		}
		if _, ok := names[t.Name]; ok {
			errs = append(errs, &verr.SpecError{
				Cause:  synErrDuplicateToken,
				Detail: t.Name,
				Row:    t.Pos.Row,
				Col:    t.Pos.Col,
			})
			return
		}
		names[t.Name] = struct{}{}
	}
	for _, t := range def.Tokens {
		checkToken(t)
	}
	for _, t := range def.Ignore {
		checkToken(t)
	}

	for _, r := range def.Rules {
		if r == nil {
			continue
		}
		if r.LHS == "" {
			errs = append(errs, &verr.SpecError{
				Cause: synErrNoProductionName,
				Row:   r.Pos.Row,
				Col:   r.Pos.Col,
			})
		}
		for _, s := range r.RHS {
			if strings.TrimSpace(s) == "" {
				errs = append(errs, &verr.SpecError{
					Cause:  synErrEmptySymbolName,
					Detail: r.LHS,
					Row:    r.Pos.Row,
					Col:    r.Pos.Col,
				})
				break
			}
		}
	}

	return errs
}

func decodeError(src []byte, err error) *verr.SpecError {
	var synErr *json.SyntaxError
	if errors.As(err, &synErr) {
		row, col := position(src, int(synErr.Offset))
		return &verr.SpecError{
			Cause:  synErrInvalidJSON,
			Detail: synErr.Error(),
			Row:    row,
			Col:    col,
		}
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		row, col := position(src, int(typeErr.Offset))
		return &verr.SpecError{
			Cause:  synErrInvalidType,
			Detail: fmt.Sprintf("%v: %v", typeErr.Field, typeErr.Value),
			Row:    row,
			Col:    col,
		}
	}
	if strings.HasPrefix(err.Error(), "json: unknown field") {
		return &verr.SpecError{
			Cause:  synErrUnknownField,
			Detail: strings.TrimPrefix(err.Error(), "json: unknown field "),
		}
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		row, col := position(src, len(src))
		return &verr.SpecError{
			Cause:  synErrInvalidJSON,
			Detail: "unexpected end of input",
			Row:    row,
			Col:    col,
		}
	}
	return &verr.SpecError{
		Cause:  synErrInvalidJSON,
		Detail: err.Error(),
	}
}

// position converts a byte offset into a 1-based row and column. Columns count runes.
func position(src []byte, offset int) (int, int) {
	if offset > len(src) {
		offset = len(src)
	}
	row, col := 1, 1
	for _, r := range string(src[:offset]) {
		if r == '\n' {
			row++
			col = 1
			continue
		}
		col++
	}
	return row, col
}

type locations map[string]int

func (l locations) pos(src []byte, path string) Position {
	offset, ok := l[path]
	if !ok {
		return Position{}
	}
	row, col := position(src, offset)
	return Position{
		Row: row,
		Col: col,
	}
}

// locate records the offset of the opening brace of the root object and of every object inside
// the top-level arrays. Keys look like "tokens[0]"; the root object has the empty key.
func locate(src []byte) (locations, error) {
	locs := locations{}
	dec := json.NewDecoder(bytes.NewReader(src))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return locs, nil
	}
	locs[""] = int(dec.InputOffset()) - 1

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)

		tok, err = dec.Token()
		if err != nil {
			return nil, err
		}
		d, ok := tok.(json.Delim)
		if !ok {
			continue
		}
		if d != '[' {
			if err := skip(dec); err != nil {
				return nil, err
			}
			continue
		}
		for i := 0; dec.More(); i++ {
			offset := int(dec.InputOffset())
			var elem json.RawMessage
			if err := dec.Decode(&elem); err != nil {
				return nil, err
			}
			locs[fmt.Sprintf("%v[%v]", key, i)] = offset + leadingSpace(src[offset:])
		}
		if _, err := dec.Token(); err != nil {
			return nil, err
		}
	}

	return locs, nil
}

// skip consumes the rest of a value whose opening delimiter was already read.
func skip(dec *json.Decoder) error {
	depth := 1
	for depth > 0 {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		if d, ok := tok.(json.Delim); ok {
			switch d {
			case '{', '[':
				depth++
			case '}', ']':
				depth--
			}
		}
	}
	return nil
}

func leadingSpace(b []byte) int {
	n := 0
	for _, c := range b {
		switch c {
		case ' ', '\t', '\n', '\r', ',':
			n++
			continue
		}
		break
	}
	return n
}
