package parser

import (
	"strings"
	"sync"
	"testing"
)

func cursorFor(src string) *Cursor {
	return NewCursor(Tokenize([]byte(src), "test.clw"))
}

func TestDecisionSimulate(t *testing.T) {
	plusOrMinus := newDecision("plusOrMinus", SkipBreaks,
		choice("plus", seq(star(tok(TokenIdent)), tok(TokenPlus))),
		choice("minus", seq(star(tok(TokenIdent)), tok(TokenMinus))),
	)
	tests := []struct {
		name   string
		src    string
		alt    int
		window int
	}{
		{"short plus", "a +", 0, 2},
		{"short minus", "a -", 1, 2},
		{"no names", "-", 1, 1},
		{"line breaks skipped", "a\nb\n+", 0, 3},
		{"no match", "a *", -1, 2},
		{"end of input", "a b", -1, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := cursorFor(tt.src)
			pred := plusOrMinus.simulate(c, SkipBreaks, DefaultMaxLookahead)
			if pred.alt != tt.alt {
				t.Errorf("alt = %d, want %d", pred.alt, tt.alt)
			}
			if len(pred.window) != tt.window {
				t.Errorf("window = %d tokens, want %d", len(pred.window), tt.window)
			}
			if c.Index() != 0 {
				t.Errorf("cursor moved to %d", c.Index())
			}
		})
	}
}

func TestDecisionUnboundedLookahead(t *testing.T) {
	d := newDecision("long", SkipBreaks,
		choice("plus", seq(star(tok(TokenIdent)), tok(TokenPlus))),
		choice("minus", seq(star(tok(TokenIdent)), tok(TokenMinus))),
	)
	src := strings.Repeat("a ", 500) + "-"
	pred := d.simulate(cursorFor(src), SkipBreaks, DefaultMaxLookahead)
	if pred.alt != 1 || len(pred.window) != 501 {
		t.Errorf("got alt %d after %d tokens, want 1 after 501", pred.alt, len(pred.window))
	}
	if pred.ambiguous || pred.fullDepth {
		t.Errorf("unexpected flags %+v", pred)
	}
}

func TestDecisionFullDepth(t *testing.T) {
	d := newDecision("deep", SkipBreaks,
		choice("plus", seq(star(tok(TokenIdent)), tok(TokenPlus))),
		choice("minus", seq(star(tok(TokenIdent)), tok(TokenMinus))),
	)
	pred := d.simulate(cursorFor(strings.Repeat("a ", 20)+"-"), SkipBreaks, 5)
	if !pred.fullDepth {
		t.Fatal("expected the depth limit to be hit")
	}
	if pred.alt != 0 {
		t.Errorf("alt = %d, want the first live alternative", pred.alt)
	}
	if len(pred.viable) != 2 {
		t.Errorf("viable = %v", pred.viable)
	}
}

func TestDecisionAmbiguity(t *testing.T) {
	d := newDecision("twins", SkipBreaks,
		choice("first", tok(TokenIdent)),
		choice("second", seq(tok(TokenIdent), opt(tok(TokenPlus)))),
	)
	pred := d.simulate(cursorFor("a b"), SkipBreaks, DefaultMaxLookahead)
	if !pred.ambiguous {
		t.Fatalf("expected ambiguity, got %+v", pred)
	}
	if pred.alt != 0 {
		t.Errorf("alt = %d, want the first listed alternative", pred.alt)
	}

	longer := newDecision("longer", SkipBreaks,
		choice("minus", seq(tok(TokenIdent), tok(TokenMinus))),
		choice("plus", seq(tok(TokenIdent), opt(tok(TokenPlus)))),
	)
	pred = longer.simulate(cursorFor("a +"), SkipBreaks, DefaultMaxLookahead)
	if pred.ambiguous || pred.alt != 1 {
		t.Errorf("a + resolved to %+v, want the second alternative", pred)
	}
}

func TestDecisionModes(t *testing.T) {
	d := newDecision("lines", HonorBreaks,
		choice("break", seq(tok(TokenIdent), tok(TokenNewline))),
		choice("joined", seq(tok(TokenIdent), tok(TokenIdent))),
	)
	if got := d.simulate(cursorFor("a\nb"), HonorBreaks, DefaultMaxLookahead).alt; got != 0 {
		t.Errorf("honor breaks: alt = %d, want 0", got)
	}
	if got := d.simulate(cursorFor("a\nb"), SkipBreaks, DefaultMaxLookahead).alt; got != 1 {
		t.Errorf("skip breaks: alt = %d, want 1", got)
	}
}

func TestPredictionCache(t *testing.T) {
	d := newDecision("cached", SkipBreaks,
		choice("plus", seq(star(tok(TokenIdent)), tok(TokenPlus))),
		choice("minus", seq(star(tok(TokenIdent)), tok(TokenMinus))),
	)
	cache := NewPredictionCache()

	c := cursorFor("a b +")
	if _, ok := cache.lookup(d, SkipBreaks, c); ok {
		t.Fatal("empty cache reported a hit")
	}
	pred := d.simulate(c, SkipBreaks, DefaultMaxLookahead)
	cache.store(d, SkipBreaks, pred)

	// Different names, same kinds.
	got, ok := cache.lookup(d, SkipBreaks, cursorFor("x y + z"))
	if !ok || got.alt != 0 {
		t.Errorf("lookup = %+v, %t; want alt 0 hit", got, ok)
	}
	if _, ok := cache.lookup(d, SkipBreaks, cursorFor("x +")); ok {
		t.Error("hit for a window of a different length")
	}
	if _, ok := cache.lookup(d, HonorBreaks, cursorFor("a b +")); ok {
		t.Error("hit for a different mode")
	}
	if cache.Len() != 1 {
		t.Errorf("Len = %d, want 1", cache.Len())
	}
	hits, misses := cache.Stats()
	if hits != 1 || misses != 3 {
		t.Errorf("Stats = %d hits, %d misses; want 1, 3", hits, misses)
	}
}

func TestPredictionCacheSkipsFullDepth(t *testing.T) {
	d := newDecision("deepCached", SkipBreaks,
		choice("plus", seq(star(tok(TokenIdent)), tok(TokenPlus))),
		choice("minus", seq(star(tok(TokenIdent)), tok(TokenMinus))),
	)
	cache := NewPredictionCache()
	cache.store(d, SkipBreaks, d.simulate(cursorFor("a b c d e f"), SkipBreaks, 3))
	cache.store(d, SkipBreaks, d.simulate(cursorFor(strings.Repeat("a ", 80)+"+"), SkipBreaks, DefaultMaxLookahead))
	if cache.Len() != 0 {
		t.Errorf("Len = %d, want 0", cache.Len())
	}
}

func TestPredictReportsAmbiguity(t *testing.T) {
	d := newDecision("twins", SkipBreaks,
		choice("first", tok(TokenIdent)),
		choice("second", tok(TokenIdent)),
	)
	cache := NewPredictionCache()
	for i := range 2 {
		p := newParser([]Option{WithPredictionCache(cache)})
		p.cursor = cursorFor("a")
		if got := p.predict(d); got != 0 {
			t.Errorf("run %d: predict = %d, want 0", i, got)
		}
		amb := p.diags.OfKind(Ambiguity)
		if len(amb) != 1 {
			t.Fatalf("run %d: %d ambiguity diagnostics, want 1", i, len(amb))
		}
		if amb[0].Decision != "twins" || !strings.Contains(amb[0].Message, "chose first") {
			t.Errorf("run %d: diagnostic = %+v", i, amb[0])
		}
		if p.diags.HasErrors() {
			t.Errorf("run %d: ambiguity reported as error", i)
		}
	}
	if hits, _ := cache.Stats(); hits != 1 {
		t.Errorf("second run hits = %d, want 1", hits)
	}
}

func TestDecisionAlternatives(t *testing.T) {
	got := strings.Join(routineShape.Alternatives(), ",")
	if got != "data-code,data,code,statements,empty" {
		t.Errorf("Alternatives = %s", got)
	}
}

func TestSharedCacheConcurrentParses(t *testing.T) {
	tokens := Tokenize([]byte(sampleProgram), "sample.clw")
	want, _ := ParseFile(tokens)

	cache := NewPredictionCache()
	var wg sync.WaitGroup
	trees := make([]string, 8)
	for i := range trees {
		wg.Add(1)
		go func() {
			defer wg.Done()
			root, _ := ParseFile(tokens, WithPredictionCache(cache))
			trees[i] = root.String()
		}()
	}
	wg.Wait()
	for i, tree := range trees {
		if tree != want.String() {
			t.Errorf("parse %d differs from the uncached parse", i)
		}
	}
	if cache.Len() == 0 {
		t.Error("shared cache stayed empty")
	}
}
