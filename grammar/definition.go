package grammar

import (
	verr "github.com/nihei9/tabula/error"
	"github.com/nihei9/tabula/grammar/lexical"
	"github.com/nihei9/tabula/grammar/symbol"
	"github.com/nihei9/tabula/spec"
)

// GrammarBuilder converts a definition into a grammar. Tokens become terminals in declaration
// order, and the token patterns followed by the ignored patterns become the lexical kinds.
type GrammarBuilder struct {
	Def *spec.Definition

	errs verr.SpecErrors
}

func (b *GrammarBuilder) Build() (*Grammar, error) {
	def := b.Def

	tokens := map[string]*spec.TokenDef{}
	for _, t := range def.Tokens {
		tokens[t.Name] = t
	}
	ignored := map[string]*spec.TokenDef{}
	for _, t := range def.Ignore {
		ignored[t.Name] = t
	}

	lhsPos := map[string]*spec.RuleDef{}
	var lhsNames []string
	for _, r := range def.Rules {
		if _, ok := lhsPos[r.LHS]; ok {
			continue
		}
		lhsPos[r.LHS] = r
		lhsNames = append(lhsNames, r.LHS)

		if _, ok := tokens[r.LHS]; ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  ErrDuplicateName,
				Detail: r.LHS,
				Row:    r.Pos.Row,
				Col:    r.Pos.Col,
			})
		}
		if _, ok := ignored[r.LHS]; ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  ErrDuplicateName,
				Detail: r.LHS,
				Row:    r.Pos.Row,
				Col:    r.Pos.Col,
			})
		}
	}

	usedTerms := map[string]struct{}{}
	for _, r := range def.Rules {
		for _, name := range r.RHS {
			if _, ok := ignored[name]; ok {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  ErrTermCannotBeIgnored,
					Detail: name,
					Row:    r.Pos.Row,
					Col:    r.Pos.Col,
				})
				continue
			}
			if _, ok := tokens[name]; ok {
				usedTerms[name] = struct{}{}
				continue
			}
			if _, ok := lhsPos[name]; !ok {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  ErrUndefinedSymbol,
					Detail: name,
					Row:    r.Pos.Row,
					Col:    r.Pos.Col,
				})
			}
		}
	}

	start := def.StartSymbol()
	if _, ok := lhsPos[start]; !ok {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  ErrNoStartProduction,
			Detail: start,
			Row:    def.Pos.Row,
			Col:    def.Pos.Col,
		})
	}

	if len(b.errs) > 0 {
		return nil, b.errs
	}

	for _, t := range def.Tokens {
		if _, ok := usedTerms[t.Name]; !ok {
			tracer().Infof("%v: a token is not used in any production: %v", def.Name, t.Name)
		}
	}

	gb := NewBuilder(def.Name)
	name2Sym := map[string]symbol.Symbol{}
	lexSpec := &lexical.LexSpec{}
	var kindToTerm []int
	for _, t := range def.Tokens {
		sym, err := gb.Terminal(t.Name)
		if err != nil {
			return nil, err
		}
		name2Sym[t.Name] = sym
		lexSpec.Entries = append(lexSpec.Entries, &lexical.LexEntry{
			Kind:    t.Name,
			Pattern: t.Pattern,
		})
		kindToTerm = append(kindToTerm, sym.Num().Int())
	}
	for _, t := range def.Ignore {
		lexSpec.Entries = append(lexSpec.Entries, &lexical.LexEntry{
			Kind:    t.Name,
			Pattern: t.Pattern,
			Ignore:  true,
		})
		kindToTerm = append(kindToTerm, 0)
	}
	for _, name := range lhsNames {
		sym, err := gb.NonTerminal(name)
		if err != nil {
			return nil, err
		}
		name2Sym[name] = sym
	}

	for _, r := range def.Rules {
		rhs := make([]symbol.Symbol, len(r.RHS))
		for i, name := range r.RHS {
			rhs[i] = name2Sym[name]
		}
		err := gb.Rule(name2Sym[r.LHS], rhs...)
		if err != nil {
			return nil, b.withPos(err, r)
		}
	}
	err := gb.SetStart(name2Sym[start])
	if err != nil {
		return nil, err
	}

	gram, err := gb.Build()
	if err != nil {
		if gErr, ok := err.(*GrammarError); ok && gErr.Cause == ErrDuplicateProduction {
			return nil, verr.SpecErrors{
				&verr.SpecError{
					Cause:  gErr.Cause,
					Detail: gErr.Detail,
				},
			}
		}
		return nil, err
	}
	gram.lexSpec = lexSpec
	gram.kindToTerminal = kindToTerm

	return gram, nil
}

func (b *GrammarBuilder) withPos(err error, r *spec.RuleDef) error {
	gErr, ok := err.(*GrammarError)
	if !ok {
		return err
	}
	return verr.SpecErrors{
		&verr.SpecError{
			Cause:  gErr.Cause,
			Detail: gErr.Detail,
			Row:    r.Pos.Row,
			Col:    r.Pos.Col,
		},
	}
}
