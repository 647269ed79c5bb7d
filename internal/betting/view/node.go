// Package view descreve a árvore de visualização produzida pelos componentes.
// Render é sempre puro; o reconciler (Diff/Apply) projeta mudanças de estado
// em patches aplicáveis sobre a árvore anterior.
package view

import (
	"maps"
	"slices"
)

// Node é um elemento da árvore de visualização
type Node struct {
	Tag      string            `json:"tag"`
	ID       string            `json:"id,omitempty"`
	Class    []string          `json:"class,omitempty"`
	Attrs    map[string]string `json:"attrs,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []Node            `json:"children,omitempty"`
}

// El monta um nó com tag e classes
func El(tag string, class ...string) Node {
	return Node{Tag: tag, Class: class}
}

// HasClass indica se o nó carrega a classe c
func (n Node) HasClass(c string) bool {
	return slices.Contains(n.Class, c)
}

// Attr retorna o atributo k (vazio se ausente)
func (n Node) Attr(k string) string {
	return n.Attrs[k]
}

// FindAll percorre a árvore em pré-ordem e retorna os nós aceitos por match
func (n Node) FindAll(match func(Node) bool) []Node {
	var out []Node
	var walk func(Node)
	walk = func(cur Node) {
		if match(cur) {
			out = append(out, cur)
		}
		for _, c := range cur.Children {
			walk(c)
		}
	}
	walk(n)
	return out
}

// Find retorna o primeiro nó aceito por match
func (n Node) Find(match func(Node) bool) (Node, bool) {
	all := n.FindAll(match)
	if len(all) == 0 {
		return Node{}, false
	}
	return all[0], true
}

// Clone faz uma cópia profunda do nó
func (n Node) Clone() Node {
	out := n
	if n.Class != nil {
		out.Class = slices.Clone(n.Class)
	}
	if n.Attrs != nil {
		out.Attrs = maps.Clone(n.Attrs)
	}
	if n.Children != nil {
		out.Children = make([]Node, len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return out
}

// Equal compara duas árvores; slices/maps nil e vazios são equivalentes
func Equal(a, b Node) bool {
	if !sameProps(a, b) || a.Text != b.Text || len(a.Children) != len(b.Children) {
		return false
	}
	for i := range a.Children {
		if !Equal(a.Children[i], b.Children[i]) {
			return false
		}
	}
	return true
}

func sameProps(a, b Node) bool {
	return a.Tag == b.Tag &&
		a.ID == b.ID &&
		slices.Equal(a.Class, b.Class) &&
		maps.Equal(a.Attrs, b.Attrs)
}
