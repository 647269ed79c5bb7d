package view

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Op é o tipo de operação de um patch
type Op string

const (
	OpReplace  Op = "replace"  // troca o nó inteiro
	OpProps    Op = "props"    // id, classes e atributos
	OpText     Op = "text"     // texto do nó
	OpAppend   Op = "append"   // adiciona filho ao final
	OpTruncate Op = "truncate" // corta filhos até Len
)

// ErrBadPath indica um patch endereçando um nó inexistente
var ErrBadPath = errors.New("view: patch path out of range")

// Patch é uma alteração endereçada pelo caminho de índices de filhos a partir da raiz
type Patch struct {
	Op    Op                `json:"op"`
	Path  []int             `json:"path"`
	Node  *Node             `json:"node,omitempty"`
	ID    string            `json:"id,omitempty"`
	Class []string          `json:"class,omitempty"`
	Attrs map[string]string `json:"attrs,omitempty"`
	Text  string            `json:"text,omitempty"`
	Len   int               `json:"len,omitempty"`
}

// Diff calcula os patches que levam prev até next.
// Apply(prev, Diff(prev, next)) resulta em uma árvore igual a next.
func Diff(prev, next Node) []Patch {
	var out []Patch
	diff(&out, nil, prev, next)
	return out
}

func diff(out *[]Patch, path []int, prev, next Node) {
	if prev.Tag != next.Tag {
		n := next.Clone()
		*out = append(*out, Patch{Op: OpReplace, Path: slices.Clone(path), Node: &n})
		return
	}
	if !sameProps(prev, next) {
		*out = append(*out, Patch{
			Op:    OpProps,
			Path:  slices.Clone(path),
			ID:    next.ID,
			Class: slices.Clone(next.Class),
			Attrs: maps.Clone(next.Attrs),
		})
	}
	if prev.Text != next.Text {
		*out = append(*out, Patch{Op: OpText, Path: slices.Clone(path), Text: next.Text})
	}

	common := min(len(prev.Children), len(next.Children))
	for i := 0; i < common; i++ {
		diff(out, append(path, i), prev.Children[i], next.Children[i])
	}
	for i := common; i < len(next.Children); i++ {
		n := next.Children[i].Clone()
		*out = append(*out, Patch{Op: OpAppend, Path: slices.Clone(path), Node: &n})
	}
	if len(prev.Children) > len(next.Children) {
		*out = append(*out, Patch{Op: OpTruncate, Path: slices.Clone(path), Len: len(next.Children)})
	}
}

// Apply aplica os patches sobre uma cópia de root e retorna a nova árvore
func Apply(root Node, patches []Patch) (Node, error) {
	out := root.Clone()
	for _, p := range patches {
		target, err := locate(&out, p.Path)
		if err != nil {
			return Node{}, fmt.Errorf("%s %v: %w", p.Op, p.Path, err)
		}
		switch p.Op {
		case OpReplace:
			if p.Node == nil {
				return Node{}, fmt.Errorf("replace %v: missing node", p.Path)
			}
			*target = p.Node.Clone()
		case OpProps:
			target.ID = p.ID
			target.Class = slices.Clone(p.Class)
			target.Attrs = maps.Clone(p.Attrs)
		case OpText:
			target.Text = p.Text
		case OpAppend:
			if p.Node == nil {
				return Node{}, fmt.Errorf("append %v: missing node", p.Path)
			}
			target.Children = append(target.Children, p.Node.Clone())
		case OpTruncate:
			if p.Len < 0 || p.Len > len(target.Children) {
				return Node{}, fmt.Errorf("truncate %v: %w", p.Path, ErrBadPath)
			}
			target.Children = target.Children[:p.Len]
		default:
			return Node{}, fmt.Errorf("unknown patch op %q", p.Op)
		}
	}
	return out, nil
}

func locate(root *Node, path []int) (*Node, error) {
	cur := root
	for _, i := range path {
		if i < 0 || i >= len(cur.Children) {
			return nil, ErrBadPath
		}
		cur = &cur.Children[i]
	}
	return cur, nil
}
