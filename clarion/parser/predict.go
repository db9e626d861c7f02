package parser

import (
	"slices"
	"sync"
	"sync/atomic"
)

// DefaultMaxLookahead bounds how many tokens a decision may examine.
const DefaultMaxLookahead = 4096

// maxCachedWindow is the longest token-kind window stored in a
// PredictionCache.
const maxCachedWindow = 64

type patternOp int

const (
	opTok patternOp = iota
	opNotOf
	opAny
	opSeq
	opAlt
	opOpt
	opStar
	opPlus
)

// pattern is a regular expression over token kinds.
type pattern struct {
	op    patternOp
	kinds []TokenKind
	subs  []pattern
}

func tok(kinds ...TokenKind) pattern   { return pattern{op: opTok, kinds: kinds} }
func notOf(kinds ...TokenKind) pattern { return pattern{op: opNotOf, kinds: kinds} }
func anyTok() pattern                  { return pattern{op: opAny} }
func seq(ps ...pattern) pattern        { return pattern{op: opSeq, subs: ps} }
func alt(ps ...pattern) pattern        { return pattern{op: opAlt, subs: ps} }
func opt(p pattern) pattern            { return pattern{op: opOpt, subs: []pattern{p}} }
func star(p pattern) pattern           { return pattern{op: opStar, subs: []pattern{p}} }
func plus(p pattern) pattern           { return pattern{op: opPlus, subs: []pattern{p}} }

type stateKind int

const (
	stateMatch stateKind = iota
	stateSplit
	stateAccept
)

type nfaState struct {
	kind   stateKind
	set    [tokenKindCount]bool
	out    int
	splits []int
}

type nfa struct {
	states []nfaState
	start  int
}

const acceptState = 0

func compile(p pattern) *nfa {
	n := &nfa{states: []nfaState{{kind: stateAccept}}}
	n.start = n.compile(p, acceptState)
	return n
}

func (n *nfa) add(s nfaState) int {
	n.states = append(n.states, s)
	return len(n.states) - 1
}

// compile adds the states for p in front of next and returns p's entry.
func (n *nfa) compile(p pattern, next int) int {
	switch p.op {
	case opTok, opNotOf, opAny:
		s := nfaState{kind: stateMatch, out: next}
		for k := range s.set {
			switch p.op {
			case opAny:
				s.set[k] = true
			case opTok:
				s.set[k] = slices.Contains(p.kinds, TokenKind(k))
			case opNotOf:
				s.set[k] = !slices.Contains(p.kinds, TokenKind(k))
			}
		}
		return n.add(s)
	case opSeq:
		for i := len(p.subs) - 1; i >= 0; i-- {
			next = n.compile(p.subs[i], next)
		}
		return next
	case opAlt:
		var outs []int
		for _, sub := range p.subs {
			outs = append(outs, n.compile(sub, next))
		}
		return n.add(nfaState{kind: stateSplit, splits: outs})
	case opOpt:
		body := n.compile(p.subs[0], next)
		return n.add(nfaState{kind: stateSplit, splits: []int{body, next}})
	case opStar, opPlus:
		loop := n.add(nfaState{kind: stateSplit})
		body := n.compile(p.subs[0], loop)
		n.states[loop].splits = []int{body, next}
		if p.op == opPlus {
			return body
		}
		return loop
	}
	panic("unknown pattern op")
}

// closure expands split states reachable from seeds. The result holds only
// match and accept states, in ascending order.
func (n *nfa) closure(seeds []int) []int {
	seen := make([]bool, len(n.states))
	var out []int
	stack := slices.Clone(seeds)
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[s] {
			continue
		}
		seen[s] = true
		if n.states[s].kind == stateSplit {
			stack = append(stack, n.states[s].splits...)
			continue
		}
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

func (n *nfa) step(set []int, kind TokenKind) []int {
	var seeds []int
	for _, s := range set {
		st := &n.states[s]
		if st.kind == stateMatch && st.set[kind] {
			seeds = append(seeds, st.out)
		}
	}
	if len(seeds) == 0 {
		return nil
	}
	return n.closure(seeds)
}

func (n *nfa) live(set []int) bool {
	for _, s := range set {
		if n.states[s].kind == stateMatch {
			return true
		}
	}
	return false
}

func (n *nfa) accepts(set []int) bool {
	return slices.Contains(set, acceptState)
}

type alternative struct {
	name    string
	pattern pattern
}

func choice(name string, p pattern) alternative {
	return alternative{name: name, pattern: p}
}

// Decision is a grammar fork resolved by simulating its alternatives over
// the upcoming tokens. Decisions are built once at package init and never
// change afterwards.
type Decision struct {
	Name string
	Mode Mode
	// Contextual decisions look at tokens in the mode of the rule that
	// consults them instead of Mode.
	Contextual bool
	alts       []alternative
	progs      []*nfa
}

func newDecision(name string, mode Mode, alts ...alternative) *Decision {
	d := &Decision{Name: name, Mode: mode, alts: alts}
	for _, a := range alts {
		d.progs = append(d.progs, compile(a.pattern))
	}
	return d
}

func newContextualDecision(name string, alts ...alternative) *Decision {
	d := newDecision(name, SkipBreaks, alts...)
	d.Contextual = true
	return d
}

// Alternatives returns the alternative names in priority order.
func (d *Decision) Alternatives() []string {
	names := make([]string, len(d.alts))
	for i, a := range d.alts {
		names[i] = a.name
	}
	return names
}

// prediction is the outcome of one simulation. It depends only on the
// token kinds in window, which makes it reusable at any position showing
// the same kinds.
type prediction struct {
	alt       int
	window    string
	ambiguous bool
	fullDepth bool
	viable    []int
}

// simulate runs every alternative in lock-step from the cursor position,
// looking at tokens visible in mode. The cursor is restored before
// returning.
func (d *Decision) simulate(c *Cursor, mode Mode, maxDepth int) prediction {
	m := c.Mark()
	defer c.Rewind(m)

	sets := make([][]int, len(d.progs))
	accepted := make([]bool, len(d.progs))
	for i, prog := range d.progs {
		sets[i] = prog.closure([]int{prog.start})
		accepted[i] = prog.accepts(sets[i])
	}

	var window []byte
	atEOF := false
	for {
		var viable, live []int
		for i, prog := range d.progs {
			isLive := !atEOF && prog.live(sets[i])
			if isLive {
				live = append(live, i)
			}
			if isLive || accepted[i] {
				viable = append(viable, i)
			}
		}
		switch {
		case len(viable) == 0:
			return prediction{alt: -1, window: string(window)}
		case len(viable) == 1:
			return prediction{alt: viable[0], window: string(window)}
		case len(live) == 0:
			return prediction{alt: viable[0], window: string(window), ambiguous: true, viable: viable}
		case len(window) >= maxDepth:
			pick := live[0]
			for _, i := range viable {
				if accepted[i] {
					pick = i
					break
				}
			}
			return prediction{alt: pick, window: string(window), fullDepth: true, viable: viable}
		}

		tok, err := c.Consume(mode)
		window = append(window, byte(tok.Kind))
		if err != nil {
			atEOF = true
		}
		for _, i := range live {
			sets[i] = d.progs[i].step(sets[i], tok.Kind)
			if d.progs[i].accepts(sets[i]) {
				accepted[i] = true
			}
		}
	}
}

type cacheKey struct {
	decision string
	mode     Mode
	window   string
}

type lengthKey struct {
	decision string
	mode     Mode
}

// PredictionCache memoizes decision outcomes by decision and the kinds of
// the tokens the simulation examined. Entries are inserted once and never
// change, so one cache can serve concurrent parses.
type PredictionCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]prediction
	lengths map[lengthKey][]int

	hits   atomic.Int64
	misses atomic.Int64
}

func NewPredictionCache() *PredictionCache {
	return &PredictionCache{
		entries: make(map[cacheKey]prediction),
		lengths: make(map[lengthKey][]int),
	}
}

// Len returns the number of cached outcomes.
func (c *PredictionCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns the number of lookups served from and missed by the cache.
func (c *PredictionCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *PredictionCache) lookup(d *Decision, mode Mode, cur *Cursor) (prediction, bool) {
	c.mu.RLock()
	lengths := c.lengths[lengthKey{d.Name, mode}]
	c.mu.RUnlock()
	if len(lengths) == 0 {
		c.misses.Add(1)
		return prediction{}, false
	}

	m := cur.Mark()
	defer cur.Rewind(m)

	buf := make([]byte, 0, lengths[len(lengths)-1])
	atEOF := false
	for _, n := range lengths {
		for !atEOF && len(buf) < n {
			tok, err := cur.Consume(mode)
			buf = append(buf, byte(tok.Kind))
			atEOF = err != nil
		}
		if len(buf) < n {
			break
		}
		c.mu.RLock()
		p, ok := c.entries[cacheKey{d.Name, mode, string(buf)}]
		c.mu.RUnlock()
		if ok {
			c.hits.Add(1)
			return p, true
		}
	}
	c.misses.Add(1)
	return prediction{}, false
}

func (c *PredictionCache) store(d *Decision, mode Mode, p prediction) {
	if p.fullDepth || len(p.window) > maxCachedWindow {
		return
	}
	key := cacheKey{d.Name, mode, p.window}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	c.entries[key] = p
	lk := lengthKey{d.Name, mode}
	lengths := c.lengths[lk]
	n := len(p.window)
	if i, found := slices.BinarySearch(lengths, n); !found {
		c.lengths[lk] = slices.Insert(slices.Clone(lengths), i, n)
	}
}
