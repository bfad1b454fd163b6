package crosscheck

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nihei9/tabula/grammar/lexical/charset"
	"github.com/nihei9/tabula/grammar/lexical/regex"
)

// ErrUnrenderable means that a pattern has no counterpart over the compared alphabet.
var ErrUnrenderable = errors.New("a pattern cannot be rendered over the compared alphabet")

// Alphabet is the set of characters input is restricted to: tab, LF, CR, and printable ASCII.
var Alphabet = charset.NewSet(
	charset.Range{From: '\t', To: '\n'},
	charset.Range{From: '\r', To: '\r'},
	charset.Range{From: ' ', To: '~'},
)

// syntax describes how an engine writes characters.
type syntax struct {
	char      func(c rune) string
	classChar func(c rune) string
}

var maleeniSyntax = &syntax{
	char: func(c rune) string {
		return fmt.Sprintf(`\u{%04X}`, c)
	},
	classChar: func(c rune) string {
		return fmt.Sprintf(`\u{%04X}`, c)
	},
}

var lexmachineSyntax = &syntax{
	char:      lexmachineChar,
	classChar: lexmachineChar,
}

func lexmachineChar(c rune) string {
	switch {
	case c == '\t':
		return `\t`
	case c == '\n':
		return `\n`
	case c == '\r':
		return `\r`
	case c == ' ',
		c >= '0' && c <= '9',
		c >= 'A' && c <= 'Z',
		c >= 'a' && c <= 'z':
		return string(c)
	}
	return `\` + string(c)
}

// render writes a tree in the syntax of an engine. Characters outside Alphabet are dropped from
// classes, which keeps the language over Alphabet unchanged.
func render(n regex.Node, syn *syntax) (string, error) {
	var b strings.Builder
	err := renderNode(&b, n, syn)
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderNode(b *strings.Builder, n regex.Node, syn *syntax) error {
	switch n := n.(type) {
	case *regex.Literal:
		if !Alphabet.Contains(n.Char) {
			return fmt.Errorf("%w: %q", ErrUnrenderable, n.Char)
		}
		b.WriteString(syn.char(n.Char))
	case *regex.CharClass:
		set := n.Set.Intersect(Alphabet)
		if set.IsEmpty() {
			return fmt.Errorf("%w: %v", ErrUnrenderable, n.Source)
		}
		b.WriteString("[")
		for _, r := range set {
			b.WriteString(syn.classChar(r.From))
			if r.To > r.From {
				b.WriteString("-")
				b.WriteString(syn.classChar(r.To))
			}
		}
		b.WriteString("]")
	case *regex.Group:
		return renderGroup(b, n.Operand, syn)
	case *regex.Concat:
		if err := renderNode(b, n.Left, syn); err != nil {
			return err
		}
		return renderNode(b, n.Right, syn)
	case *regex.Alt:
		b.WriteString("(")
		if err := renderNode(b, n.Left, syn); err != nil {
			return err
		}
		b.WriteString("|")
		if err := renderNode(b, n.Right, syn); err != nil {
			return err
		}
		b.WriteString(")")
	case *regex.Star:
		return renderPostfix(b, n.Operand, "*", syn)
	case *regex.Plus:
		return renderPostfix(b, n.Operand, "+", syn)
	case *regex.Optional:
		return renderPostfix(b, n.Operand, "?", syn)
	case *regex.Repeat:
		// Bounded repetitions are expanded into copies.
		for i := 0; i < n.Min; i++ {
			if err := renderGroup(b, n.Operand, syn); err != nil {
				return err
			}
		}
		if n.Max < 0 {
			return renderPostfix(b, n.Operand, "*", syn)
		}
		for i := n.Min; i < n.Max; i++ {
			if err := renderPostfix(b, n.Operand, "?", syn); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown node: %T", n)
	}
	return nil
}

func renderGroup(b *strings.Builder, n regex.Node, syn *syntax) error {
	b.WriteString("(")
	if err := renderNode(b, n, syn); err != nil {
		return err
	}
	b.WriteString(")")
	return nil
}

func renderPostfix(b *strings.Builder, operand regex.Node, op string, syn *syntax) error {
	if err := renderGroup(b, operand, syn); err != nil {
		return err
	}
	b.WriteString(op)
	return nil
}
