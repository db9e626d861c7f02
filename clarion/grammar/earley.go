package grammar

import (
	"fmt"
	"sort"

	"golang.org/x/exp/ebnf"
)

// symbol is a terminal token kind or a nonterminal name.
type symbol struct {
	name     string
	terminal bool
}

type rule struct {
	lhs string
	rhs []symbol
}

// Recognizer decides membership in the language of an EBNF grammar. The
// grammar is rewritten to plain BNF once: groups, options and repetitions
// become generated nonterminals.
type Recognizer struct {
	start    string
	rules    map[string][]*rule
	nullable map[string]bool
	fresh    int
}

// NewRecognizer prepares g for recognizing sentences derived from start.
// Character ranges are not supported; they only occur in lexical grammars.
func NewRecognizer(g ebnf.Grammar, start string) (*Recognizer, error) {
	if err := ebnf.Verify(g, start); err != nil {
		return nil, err
	}
	r := &Recognizer{
		start: start,
		rules: make(map[string][]*rule),
	}

	names := make([]string, 0, len(g))
	for name := range g {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		alts, err := r.alternatives(g[name].Expr)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		r.add(name, alts)
	}
	r.computeNullable()
	return r, nil
}

func (r *Recognizer) add(lhs string, alts [][]symbol) {
	for _, rhs := range alts {
		r.rules[lhs] = append(r.rules[lhs], &rule{lhs: lhs, rhs: rhs})
	}
}

func (r *Recognizer) alternatives(expr ebnf.Expression) ([][]symbol, error) {
	switch x := expr.(type) {
	case nil:
		return [][]symbol{nil}, nil
	case ebnf.Alternative:
		var out [][]symbol
		for _, e := range x {
			alts, err := r.alternatives(e)
			if err != nil {
				return nil, err
			}
			out = append(out, alts...)
		}
		return out, nil
	case ebnf.Sequence:
		seq := make([]symbol, 0, len(x))
		for _, e := range x {
			s, err := r.symbol(e)
			if err != nil {
				return nil, err
			}
			seq = append(seq, s)
		}
		return [][]symbol{seq}, nil
	case *ebnf.Group:
		return r.alternatives(x.Body)
	}
	s, err := r.symbol(expr)
	if err != nil {
		return nil, err
	}
	return [][]symbol{{s}}, nil
}

func (r *Recognizer) symbol(expr ebnf.Expression) (symbol, error) {
	switch x := expr.(type) {
	case *ebnf.Name:
		return symbol{name: x.String}, nil
	case *ebnf.Token:
		return symbol{name: x.String, terminal: true}, nil
	case *ebnf.Group:
		return r.generated(x.Body, false, false)
	case *ebnf.Option:
		return r.generated(x.Body, true, false)
	case *ebnf.Repetition:
		return r.generated(x.Body, true, true)
	case ebnf.Alternative, ebnf.Sequence:
		return r.generated(x, false, false)
	case *ebnf.Range:
		return symbol{}, fmt.Errorf("character range %q … %q is not supported", x.Begin.String, x.End.String)
	}
	return symbol{}, fmt.Errorf("unsupported expression %T", expr)
}

// generated adds a nonterminal for body. An optional one also derives the
// empty string; a repeated one derives any number of body sentences.
func (r *Recognizer) generated(body ebnf.Expression, optional, repeated bool) (symbol, error) {
	r.fresh++
	name := fmt.Sprintf("#%d", r.fresh)
	alts, err := r.alternatives(body)
	if err != nil {
		return symbol{}, err
	}
	if repeated {
		self := symbol{name: name}
		for i, alt := range alts {
			alts[i] = append(alt[:len(alt):len(alt)], self)
		}
	}
	if optional {
		alts = append(alts, nil)
	}
	r.add(name, alts)
	return symbol{name: name}, nil
}

func (r *Recognizer) computeNullable() {
	r.nullable = make(map[string]bool)
	for changed := true; changed; {
		changed = false
		for lhs, rules := range r.rules {
			if r.nullable[lhs] {
				continue
			}
			for _, rl := range rules {
				if r.allNullable(rl.rhs) {
					r.nullable[lhs] = true
					changed = true
					break
				}
			}
		}
	}
}

func (r *Recognizer) allNullable(rhs []symbol) bool {
	for _, s := range rhs {
		if s.terminal || !r.nullable[s.name] {
			return false
		}
	}
	return true
}

// item is an Earley item: a rule, how much of it was matched and the
// chart position where the match started.
type item struct {
	rule   *rule
	dot    int
	origin int
}

func (it item) complete() bool {
	return it.dot == len(it.rule.rhs)
}

func (it item) next() symbol {
	return it.rule.rhs[it.dot]
}

func (it item) advance() item {
	it.dot++
	return it
}

type itemSet struct {
	items []item
	seen  map[item]bool
}

func (s *itemSet) add(it item) {
	if s.seen[it] {
		return
	}
	s.seen[it] = true
	s.items = append(s.items, it)
}

// Accepts reports whether the sequence of terminals is a sentence of the
// start production. Nullable nonterminals are advanced over while
// predicting, so empty rules need no special completion pass.
func (r *Recognizer) Accepts(terminals []string) bool {
	n := len(terminals)
	chart := make([]*itemSet, n+1)
	for i := range chart {
		chart[i] = &itemSet{seen: make(map[item]bool)}
	}
	for _, rl := range r.rules[r.start] {
		chart[0].add(item{rule: rl})
	}

	for i := 0; i <= n; i++ {
		set := chart[i]
		for j := 0; j < len(set.items); j++ {
			it := set.items[j]
			switch {
			case it.complete():
				origin := chart[it.origin]
				for k := 0; k < len(origin.items); k++ {
					waiting := origin.items[k]
					if !waiting.complete() && !waiting.next().terminal && waiting.next().name == it.rule.lhs {
						set.add(waiting.advance())
					}
				}
			case it.next().terminal:
				if i < n && terminals[i] == it.next().name {
					chart[i+1].add(it.advance())
				}
			default:
				name := it.next().name
				for _, rl := range r.rules[name] {
					set.add(item{rule: rl, origin: i})
				}
				if r.nullable[name] {
					set.add(it.advance())
				}
			}
		}
	}

	for _, it := range chart[n].items {
		if it.origin == 0 && it.complete() && it.rule.lhs == r.start {
			return true
		}
	}
	return false
}
