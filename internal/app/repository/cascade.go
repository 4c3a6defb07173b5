package repository

import (
	"context"
	"fmt"

	"github.com/ikkim/storefront-backend/internal/app/schema"
	apperrors "github.com/ikkim/storefront-backend/internal/errors"
	"github.com/ikkim/storefront-backend/pkg/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Hop is one edge on the way from the cascade root to a dependent table.
// Column lives in the child and references Parent.Key.
type Hop struct {
	Parent schema.Table
	Column string
}

// Step deletes the rows of one entity reachable from the root id. Path is
// empty for the root row itself.
type Step struct {
	Entity schema.Entity
	Table  schema.Table
	Path   []Hop
}

// RowDeleter executes plan steps against a store.
type RowDeleter interface {
	RootExists(ctx context.Context, root schema.Table, id uint) (bool, error)
	DeleteStep(ctx context.Context, step Step, rootID uint) (int64, error)
}

// CascadeResult counts the rows removed per entity.
type CascadeResult struct {
	Deleted map[schema.Entity]int64
}

func (r CascadeResult) Count(e schema.Entity) int64 {
	return r.Deleted[e]
}

func (r CascadeResult) Total() int64 {
	var total int64
	for _, n := range r.Deleted {
		total += n
	}
	return total
}

// CascadeExecutor removes a row together with everything that depends on it,
// dependents first.
type CascadeExecutor struct {
	graph *schema.Graph
}

func NewCascadeExecutor(graph *schema.Graph) (*CascadeExecutor, error) {
	if err := graph.Validate(); err != nil {
		return nil, err
	}
	return &CascadeExecutor{graph: graph}, nil
}

// DefaultCascadeExecutor uses schema.DefaultGraph, which is known to be valid.
func DefaultCascadeExecutor() *CascadeExecutor {
	executor, err := NewCascadeExecutor(schema.DefaultGraph())
	if err != nil {
		panic(err)
	}
	return executor
}

// Plan lists the deletes for removing one root row, leaves first and the
// root last. An entity reachable along two paths gets one step per path.
func (c *CascadeExecutor) Plan(root schema.Entity) ([]Step, error) {
	rootTable, ok := c.graph.Table(root)
	if !ok {
		return nil, fmt.Errorf("cascade: unknown entity %q", root)
	}
	if rootTable.Key == "" {
		return nil, fmt.Errorf("cascade: entity %q has no key and cannot be deleted directly", root)
	}

	var steps []Step
	var walk func(parent schema.Entity, parentTable schema.Table, path []Hop)
	walk = func(parent schema.Entity, parentTable schema.Table, path []Hop) {
		for _, dep := range c.graph.Dependents(parent) {
			childTable, _ := c.graph.Table(dep.Child)
			childPath := make([]Hop, len(path), len(path)+1)
			copy(childPath, path)
			childPath = append(childPath, Hop{Parent: parentTable, Column: dep.Column})

			walk(dep.Child, childTable, childPath)
			steps = append(steps, Step{Entity: dep.Child, Table: childTable, Path: childPath})
		}
	}
	walk(root, rootTable, nil)

	return append(steps, Step{Entity: root, Table: rootTable}), nil
}

// Run executes the plan for root through deleter. It stops at the first
// failing step; atomicity comes from the transaction deleter runs in.
func (c *CascadeExecutor) Run(ctx context.Context, deleter RowDeleter, root schema.Entity, id uint) (CascadeResult, error) {
	steps, err := c.Plan(root)
	if err != nil {
		return CascadeResult{}, err
	}
	rootTable := steps[len(steps)-1].Table

	exists, err := deleter.RootExists(ctx, rootTable, id)
	if err != nil {
		return CascadeResult{}, apperrors.Storage("cascade lookup "+string(root), err)
	}
	if !exists {
		return CascadeResult{}, apperrors.NotFound(string(root), id)
	}

	result := CascadeResult{Deleted: make(map[schema.Entity]int64, len(steps))}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return CascadeResult{}, apperrors.Storage("cascade delete "+string(root), err)
		}
		n, err := deleter.DeleteStep(ctx, step, id)
		if err != nil {
			logger.FromContext(ctx).Error("Cascade step failed", err, map[string]interface{}{
				"root":   root,
				"id":     id,
				"entity": step.Entity,
			})
			return CascadeResult{}, apperrors.Storage("cascade delete "+string(step.Entity), err)
		}
		result.Deleted[step.Entity] += n
	}

	logger.FromContext(ctx).Debug("Cascade delete completed", map[string]interface{}{
		"root":    root,
		"id":      id,
		"deleted": result.Deleted,
	})
	return result, nil
}

// Delete runs the cascade inside a transaction on db. When db is already a
// transaction the cascade becomes a savepoint of it.
func (c *CascadeExecutor) Delete(ctx context.Context, db *gorm.DB, root schema.Entity, id uint) (CascadeResult, error) {
	var result CascadeResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		result, err = c.Run(ctx, &gormDeleter{db: tx}, root, id)
		return err
	})
	if err != nil {
		return CascadeResult{}, apperrors.Storage("cascade delete "+string(root), err)
	}
	return result, nil
}

// gormDeleter turns plan steps into DELETE statements with nested key
// subqueries.
type gormDeleter struct {
	db *gorm.DB
}

func (d *gormDeleter) RootExists(ctx context.Context, root schema.Table, id uint) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Table(root.Name).Where(clause.Eq{Column: clause.Column{Name: root.Key}, Value: id}).Count(&count).Error
	return count > 0, err
}

func (d *gormDeleter) DeleteStep(ctx context.Context, step Step, rootID uint) (int64, error) {
	db := d.db.WithContext(ctx)
	if len(step.Path) == 0 {
		res := db.Exec("DELETE FROM ? WHERE ? = ?",
			clause.Table{Name: step.Table.Name}, clause.Column{Name: step.Table.Key}, rootID)
		return res.RowsAffected, res.Error
	}

	last := step.Path[len(step.Path)-1]
	res := db.Exec("DELETE FROM ? WHERE ? IN (?)",
		clause.Table{Name: step.Table.Name}, clause.Column{Name: last.Column}, d.keys(step.Path, rootID))
	return res.RowsAffected, res.Error
}

// keys selects the keys of the last parent on path that descend from rootID.
func (d *gormDeleter) keys(path []Hop, rootID uint) *gorm.DB {
	session := d.db.Session(&gorm.Session{NewDB: true})
	root := path[0].Parent
	sel := session.Table(root.Name).Select(root.Key).
		Where(clause.Eq{Column: clause.Column{Name: root.Key}, Value: rootID})

	for i := 1; i < len(path); i++ {
		parent := path[i].Parent
		sel = session.Table(parent.Name).Select(parent.Key).
			Where("? IN (?)", clause.Column{Name: path[i-1].Column}, sel)
	}
	return sel
}
