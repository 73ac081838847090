package mongo

import (
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/dulanjanabandara/job-recommender-system/pkg/query"
)

var mongoOperators = map[query.Operator]string{
	query.OpEq:  "$eq",
	query.OpNe:  "$ne",
	query.OpGt:  "$gt",
	query.OpGte: "$gte",
	query.OpLt:  "$lt",
	query.OpLte: "$lte",
}

// buildFilter merges q's filters into base. Repeated equality filters on one
// field become $in.
func buildFilter(base bson.M, q *query.Query) bson.M {
	filter := bson.M{}
	for k, v := range base {
		filter[k] = v
	}

	equals := map[string][]any{}
	ops := map[string]bson.M{}

	for _, f := range q.Filters {
		if f.Op == query.OpEq {
			equals[f.Field] = append(equals[f.Field], f.Value)
			continue
		}
		if ops[f.Field] == nil {
			ops[f.Field] = bson.M{}
		}
		ops[f.Field][mongoOperators[f.Op]] = f.Value
	}

	for field, values := range equals {
		if ops[field] == nil {
			ops[field] = bson.M{}
		}
		if len(values) == 1 {
			ops[field]["$eq"] = values[0]
		} else {
			ops[field]["$in"] = values
		}
	}

	for field, cond := range ops {
		filter[field] = cond
	}

	return filter
}

// buildFindOptions applies sort, pagination and projection. hidden fields are
// excluded when the caller asked for no projection.
func buildFindOptions(q *query.Query, hidden ...string) *options.FindOptionsBuilder {
	opts := options.Find().
		SetSkip(int64(q.Skip())).
		SetLimit(int64(q.Limit))

	sort := bson.D{}
	for _, s := range q.Sort {
		dir := 1
		if s.Desc {
			dir = -1
		}
		sort = append(sort, bson.E{Key: s.Field, Value: dir})
	}
	if len(sort) > 0 {
		opts.SetSort(sort)
	}

	if projection := buildProjection(q.Fields, hidden); projection != nil {
		opts.SetProjection(projection)
	}

	return opts
}

func buildProjection(fields, hidden []string) bson.D {
	if len(fields) > 0 {
		projection := bson.D{}
		for _, f := range fields {
			projection = append(projection, bson.E{Key: f, Value: 1})
		}
		return projection
	}

	if len(hidden) == 0 {
		return nil
	}

	projection := bson.D{}
	for _, f := range hidden {
		projection = append(projection, bson.E{Key: f, Value: 0})
	}
	return projection
}
