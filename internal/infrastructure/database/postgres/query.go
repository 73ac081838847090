package postgres

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dulanjanabandara/job-recommender-system/pkg/query"
)

// columnMap maps JSON field names to column names. Only mapped fields reach SQL.
type columnMap map[string]string

func (m columnMap) patch(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for field, value := range values {
		if column, ok := m[field]; ok {
			out[column] = value
		}
	}
	return out
}

// applyQuery adds q's filters, ordering, projection and pagination to tx.
// Projected columns always include id.
func applyQuery(tx *gorm.DB, q *query.Query, columns columnMap) *gorm.DB {
	equals := map[string][]any{}
	var order []string

	for _, f := range q.Filters {
		column, ok := columns[f.Field]
		if !ok {
			continue
		}
		col := clause.Column{Name: column}

		switch f.Op {
		case query.OpEq:
			if _, seen := equals[column]; !seen {
				order = append(order, column)
			}
			equals[column] = append(equals[column], f.Value)
		case query.OpNe:
			tx = tx.Where(clause.Neq{Column: col, Value: f.Value})
		case query.OpGt:
			tx = tx.Where(clause.Gt{Column: col, Value: f.Value})
		case query.OpGte:
			tx = tx.Where(clause.Gte{Column: col, Value: f.Value})
		case query.OpLt:
			tx = tx.Where(clause.Lt{Column: col, Value: f.Value})
		case query.OpLte:
			tx = tx.Where(clause.Lte{Column: col, Value: f.Value})
		}
	}

	for _, column := range order {
		values := equals[column]
		if len(values) == 1 {
			tx = tx.Where(clause.Eq{Column: clause.Column{Name: column}, Value: values[0]})
		} else {
			tx = tx.Where(clause.IN{Column: clause.Column{Name: column}, Values: values})
		}
	}

	for _, s := range q.Sort {
		if column, ok := columns[s.Field]; ok {
			tx = tx.Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: s.Desc})
		}
	}

	if len(q.Fields) > 0 {
		selected := []string{"id"}
		for _, f := range q.Fields {
			if column, ok := columns[f]; ok {
				selected = append(selected, column)
			}
		}
		tx = tx.Select(selected)
	}

	return tx.Offset(q.Skip()).Limit(q.Limit)
}
