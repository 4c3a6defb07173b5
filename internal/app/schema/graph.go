package schema

import (
	"fmt"
	"sort"
)

// Entity names a persisted record type.
type Entity string

const (
	EntityProduct      Entity = "product"
	EntityReview       Entity = "review"
	EntityOrder        Entity = "order"
	EntityOrderProduct Entity = "order_product"
)

// Table describes where an entity lives.
type Table struct {
	Name string
	// Key is the column identifying one row. Join entities without a
	// surrogate id leave it empty and can only be reached as dependents.
	Key string
}

// Dependency says that rows of Child reference their parent through
// Child.Column. Deleting the parent requires deleting those rows first.
type Dependency struct {
	Child  Entity
	Column string
}

// Graph is the ownership structure used by cascading deletes.
type Graph struct {
	tables map[Entity]Table
	edges  map[Entity][]Dependency
}

func NewGraph() *Graph {
	return &Graph{
		tables: make(map[Entity]Table),
		edges:  make(map[Entity][]Dependency),
	}
}

// DefaultGraph is the storefront ownership structure:
// product owns its reviews and order lines, order owns its lines.
func DefaultGraph() *Graph {
	g := NewGraph()
	g.AddEntity(EntityProduct, Table{Name: "products", Key: "id"})
	g.AddEntity(EntityReview, Table{Name: "reviews", Key: "id"})
	g.AddEntity(EntityOrder, Table{Name: "orders", Key: "id"})
	g.AddEntity(EntityOrderProduct, Table{Name: "order_products"})

	g.AddDependency(EntityProduct, Dependency{Child: EntityReview, Column: "product_id"})
	g.AddDependency(EntityProduct, Dependency{Child: EntityOrderProduct, Column: "product_id"})
	g.AddDependency(EntityOrder, Dependency{Child: EntityOrderProduct, Column: "order_id"})
	return g
}

func (g *Graph) AddEntity(e Entity, t Table) {
	g.tables[e] = t
}

func (g *Graph) AddDependency(parent Entity, dep Dependency) {
	g.edges[parent] = append(g.edges[parent], dep)
}

func (g *Graph) Table(e Entity) (Table, bool) {
	t, ok := g.tables[e]
	return t, ok
}

// Dependents returns the direct dependents of e in registration order.
func (g *Graph) Dependents(e Entity) []Dependency {
	return g.edges[e]
}

// Validate rejects edges to unknown entities, dependents without a key that
// own further rows, and cycles.
func (g *Graph) Validate() error {
	parents := make([]Entity, 0, len(g.edges))
	for parent := range g.edges {
		parents = append(parents, parent)
	}
	sort.Slice(parents, func(i, j int) bool { return parents[i] < parents[j] })

	for _, parent := range parents {
		if _, ok := g.tables[parent]; !ok {
			return fmt.Errorf("cascade graph: unknown entity %q", parent)
		}
		for _, dep := range g.edges[parent] {
			if _, ok := g.tables[dep.Child]; !ok {
				return fmt.Errorf("cascade graph: unknown dependent %q of %q", dep.Child, parent)
			}
			if dep.Column == "" {
				return fmt.Errorf("cascade graph: %q -> %q has no column", parent, dep.Child)
			}
			if len(g.edges[dep.Child]) > 0 && g.tables[dep.Child].Key == "" {
				return fmt.Errorf("cascade graph: %q owns rows but has no key", dep.Child)
			}
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make(map[Entity]int, len(g.tables))
	var visit func(e Entity) error
	visit = func(e Entity) error {
		switch state[e] {
		case visiting:
			return fmt.Errorf("cascade graph: cycle through %q", e)
		case done:
			return nil
		}
		state[e] = visiting
		for _, dep := range g.edges[e] {
			if err := visit(dep.Child); err != nil {
				return err
			}
		}
		state[e] = done
		return nil
	}
	for _, parent := range parents {
		if err := visit(parent); err != nil {
			return err
		}
	}
	return nil
}

// DeletionOrder lists the entities touched by deleting root, leaves first and
// root last. Each entity appears once.
func (g *Graph) DeletionOrder(root Entity) []Entity {
	var order []Entity
	seen := make(map[Entity]bool)
	var walk func(e Entity)
	walk = func(e Entity) {
		if seen[e] {
			return
		}
		seen[e] = true
		for _, dep := range g.edges[e] {
			walk(dep.Child)
		}
		order = append(order, e)
	}
	walk(root)
	return order
}
