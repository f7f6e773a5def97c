// pkg/model/hierarchy.go
package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrCycle 趋势层级出现环
var ErrCycle = errors.New("趋势层级存在环")

const noParent = -1

type hierarchyNode struct {
	id       uuid.UUID
	parentID *uuid.UUID
	parent   int
	children []int
}

// Hierarchy 趋势层级的内存表示
// 节点存放在切片中，父子关系使用下标表示
type Hierarchy struct {
	nodes []hierarchyNode
	index map[uuid.UUID]int
}

// NewHierarchy 创建空层级
func NewHierarchy() *Hierarchy {
	return &Hierarchy{index: make(map[uuid.UUID]int)}
}

// BuildHierarchy 根据趋势列表构建层级，顺序无关
func BuildHierarchy(trends []*Trend) (*Hierarchy, error) {
	h := NewHierarchy()
	for _, t := range trends {
		if err := h.Add(t.ID, t.ParentTrendID); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// Len 节点数量
func (h *Hierarchy) Len() int {
	return len(h.nodes)
}

// Contains 判断节点是否存在
func (h *Hierarchy) Contains(id uuid.UUID) bool {
	_, ok := h.index[id]
	return ok
}

// Add 添加节点，父节点可以稍后加入
func (h *Hierarchy) Add(id uuid.UUID, parentID *uuid.UUID) error {
	if _, ok := h.index[id]; ok {
		return fmt.Errorf("趋势 %s 已存在于层级中", id)
	}
	slot := len(h.nodes)
	h.nodes = append(h.nodes, hierarchyNode{id: id, parent: noParent})
	h.index[id] = slot
	h.link(slot, parentID)

	// 收养先于父节点加入的子节点
	for i := range h.nodes {
		n := &h.nodes[i]
		if n.parent == noParent && n.parentID != nil && *n.parentID == id {
			n.parent = slot
			h.nodes[slot].children = append(h.nodes[slot].children, i)
		}
	}
	return nil
}

func (h *Hierarchy) link(slot int, parentID *uuid.UUID) {
	n := &h.nodes[slot]
	n.parentID = parentID
	n.parent = noParent
	if parentID == nil {
		return
	}
	if p, ok := h.index[*parentID]; ok {
		n.parent = p
		h.nodes[p].children = append(h.nodes[p].children, slot)
	}
}

func (h *Hierarchy) unlink(slot int) {
	p := h.nodes[slot].parent
	if p == noParent {
		return
	}
	siblings := h.nodes[p].children
	for i, c := range siblings {
		if c == slot {
			h.nodes[p].children = append(siblings[:i], siblings[i+1:]...)
			break
		}
	}
	h.nodes[slot].parent = noParent
}

// SetParent 修改父节点，parentID 为 nil 表示设为根节点
// 会形成环时返回 ErrCycle 且不做修改
func (h *Hierarchy) SetParent(id uuid.UUID, parentID *uuid.UUID) error {
	slot, ok := h.index[id]
	if !ok {
		return fmt.Errorf("趋势 %s 不在层级中", id)
	}
	if parentID != nil && h.WouldCycle(id, *parentID) {
		return fmt.Errorf("设置 %s 的父节点为 %s: %w", id, *parentID, ErrCycle)
	}
	h.unlink(slot)
	h.link(slot, parentID)
	return nil
}

// Parent 返回父节点ID
func (h *Hierarchy) Parent(id uuid.UUID) (uuid.UUID, bool) {
	slot, ok := h.index[id]
	if !ok || h.nodes[slot].parent == noParent {
		return uuid.Nil, false
	}
	return h.nodes[h.nodes[slot].parent].id, true
}

// Children 返回直接子节点ID
func (h *Hierarchy) Children(id uuid.UUID) []uuid.UUID {
	slot, ok := h.index[id]
	if !ok {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(h.nodes[slot].children))
	for _, c := range h.nodes[slot].children {
		ids = append(ids, h.nodes[c].id)
	}
	return ids
}

// Roots 返回所有没有已知父节点的节点
func (h *Hierarchy) Roots() []uuid.UUID {
	var ids []uuid.UUID
	for _, n := range h.nodes {
		if n.parent == noParent {
			ids = append(ids, n.id)
		}
	}
	return ids
}

// Ancestors 返回祖先链，近的在前
// 遇到环时在走完一圈后停止
func (h *Hierarchy) Ancestors(id uuid.UUID) []uuid.UUID {
	slot, ok := h.index[id]
	if !ok {
		return nil
	}
	var ids []uuid.UUID
	for cur := h.nodes[slot].parent; cur != noParent && len(ids) < len(h.nodes); cur = h.nodes[cur].parent {
		ids = append(ids, h.nodes[cur].id)
	}
	return ids
}

// WouldCycle 判断把 parent 设为 child 的父节点是否会形成环
func (h *Hierarchy) WouldCycle(child, parent uuid.UUID) bool {
	if child == parent {
		return true
	}
	for _, a := range h.Ancestors(parent) {
		if a == child {
			return true
		}
	}
	return false
}

// Validate 检查整个层级是否无环
func (h *Hierarchy) Validate() error {
	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(h.nodes))
	for i := range h.nodes {
		var path []int
		cur := i
		for cur != noParent && state[cur] == unvisited {
			state[cur] = visiting
			path = append(path, cur)
			cur = h.nodes[cur].parent
		}
		if cur != noParent && state[cur] == visiting {
			return fmt.Errorf("趋势 %s: %w", h.nodes[cur].id, ErrCycle)
		}
		for _, p := range path {
			state[p] = done
		}
	}
	return nil
}
