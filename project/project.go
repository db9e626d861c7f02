// Package project links the source files of a Clarion application: the
// PROGRAM file, the MEMBER modules it names in its MAP and the files they
// INCLUDE.
package project

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhamidi/clw/clarion/outline"
	"github.com/dhamidi/clw/clarion/parser"
	"github.com/dhamidi/clw/config"
)

type UnitKind int

const (
	// Source is a file without a PROGRAM or MEMBER header, such as an
	// include file of declarations.
	Source UnitKind = iota
	Program
	Member
)

func (k UnitKind) String() string {
	switch k {
	case Program:
		return "program"
	case Member:
		return "member"
	}
	return "source"
}

type RefKind int

const (
	RefMember RefKind = iota
	RefModule
	RefInclude
)

func (k RefKind) String() string {
	switch k {
	case RefMember:
		return "MEMBER"
	case RefModule:
		return "MODULE"
	}
	return "INCLUDE"
}

// Reference is a file named by a MEMBER, MODULE or INCLUDE.
type Reference struct {
	Kind RefKind
	Name string
	From *Unit
	Span parser.Span
}

// Project is the set of units below one root directory.
type Project struct {
	Root  string
	Units []*Unit
}

// Unit is one source file.
type Unit struct {
	Path       string
	Kind       UnitKind
	References []Reference
	Project    *Project
}

func New(root string) *Project {
	return &Project{Root: root}
}

// Load parses every source file below cfg.Root and links the units.
// Files that cannot be read are skipped; syntax errors are not fatal.
func Load(cfg *config.Config) (*Project, error) {
	p := New(cfg.Root)
	err := filepath.WalkDir(cfg.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != cfg.Root && cfg.Excluded(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !cfg.Matches(path) {
			return nil
		}
		src, err := os.ReadFile(path)
		if err != nil {
			return nil
		}
		root, _ := parser.ParseSource(src, cfg.OptionsFor(path)...)
		p.Add(path, root)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", cfg.Root, err)
	}
	return p, nil
}

// Add records the unit parsed from path, replacing an earlier one.
func (p *Project) Add(path string, root *parser.Node) *Unit {
	p.Remove(path)
	u := &Unit{Path: path, Project: p}
	switch {
	case root.Kind == parser.KindProgram:
		u.Kind = Program
	case parser.Keyword(root) == "MEMBER":
		u.Kind = Member
	}

	symbols := outline.Build(root)
	if u.Kind == Member && len(symbols) > 0 && symbols[0].Detail != "" {
		u.References = append(u.References, Reference{Kind: RefMember, Name: symbols[0].Detail, From: u, Span: symbols[0].Span})
	}
	outline.Walk(symbols, func(s outline.Symbol) bool {
		switch s.Kind {
		case outline.KindModule:
			u.References = append(u.References, Reference{Kind: RefModule, Name: s.Name, From: u, Span: s.Span})
		case outline.KindInclude:
			u.References = append(u.References, Reference{Kind: RefInclude, Name: s.Name, From: u, Span: s.Span})
		}
		return true
	})

	p.Units = append(p.Units, u)
	return u
}

func (p *Project) Remove(path string) {
	for i, u := range p.Units {
		if u.Path == path {
			p.Units = append(p.Units[:i], p.Units[i+1:]...)
			return
		}
	}
}

// Unit finds a unit by file name, ignoring directories and case. A name
// without extension is taken as a .clw file, like MEMBER('app').
func (p *Project) Unit(name string) *Unit {
	key := unitKey(name)
	for _, u := range p.Units {
		if unitKey(u.Path) == key {
			return u
		}
	}
	return nil
}

func unitKey(name string) string {
	base := filepath.Base(filepath.FromSlash(strings.ReplaceAll(name, `\`, "/")))
	if filepath.Ext(base) == "" {
		base += ".clw"
	}
	return strings.ToLower(base)
}

// Resolve returns the unit a reference names, or nil.
func (p *Project) Resolve(ref Reference) *Unit {
	return p.Unit(ref.Name)
}

// Programs returns the PROGRAM units.
func (p *Project) Programs() []*Unit {
	var out []*Unit
	for _, u := range p.Units {
		if u.Kind == Program {
			out = append(out, u)
		}
	}
	return out
}

// Unresolved returns the references that name no unit of the project.
func (p *Project) Unresolved() []Reference {
	var out []Reference
	for _, u := range p.Units {
		for _, ref := range u.References {
			if p.Resolve(ref) == nil {
				out = append(out, ref)
			}
		}
	}
	return out
}

// Members returns the units whose MEMBER header names u.
func (u *Unit) Members() []*Unit {
	var out []*Unit
	for _, other := range u.Project.Units {
		for _, ref := range other.References {
			if ref.Kind == RefMember && u.Project.Resolve(ref) == u {
				out = append(out, other)
			}
		}
	}
	return out
}

// Dependencies returns the units named by the MODULE and INCLUDE
// references of u.
func (u *Unit) Dependencies() []*Unit {
	var out []*Unit
	for _, ref := range u.References {
		if ref.Kind == RefMember {
			continue
		}
		if dep := u.Project.Resolve(ref); dep != nil && dep != u {
			out = append(out, dep)
		}
	}
	return out
}

// UnitsInOrder returns units sorted in dependency order (dependencies
// first). When the references form a cycle the units are returned in the
// order they were added.
func (p *Project) UnitsInOrder() []*Unit {
	// Topological sort using Kahn's algorithm
	inDegree := make(map[*Unit]int)
	dependents := make(map[*Unit][]*Unit)
	for _, u := range p.Units {
		deps := u.Dependencies()
		inDegree[u] += len(deps)
		for _, dep := range deps {
			dependents[dep] = append(dependents[dep], u)
		}
	}

	var queue []*Unit
	for _, u := range p.Units {
		if inDegree[u] == 0 {
			queue = append(queue, u)
		}
	}

	var result []*Unit
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		result = append(result, u)

		for _, d := range dependents[u] {
			inDegree[d]--
			if inDegree[d] == 0 {
				queue = append(queue, d)
			}
		}
	}

	if len(result) != len(p.Units) {
		return p.Units
	}
	return result
}
