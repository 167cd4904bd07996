package docstore

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// duplicateIndexCode is the server error returned when an equivalent index
// already exists under a different name (IndexOptionsConflict). The engine
// forbids two text indexes over the same field set regardless of name, so
// this outcome is treated as success.
const duplicateIndexCode = 85

// indexSpec is the subset of an index catalog entry the provisioner inspects.
// For text indexes the key is {_fts: "text", _ftsx: 1} and the indexed fields
// appear in the weights document instead.
type indexSpec struct {
	Name    string `bson:"name"`
	Key     bson.D `bson:"key"`
	Weights bson.M `bson:"weights"`
}

func listIndexes(ctx context.Context, coll *mongo.Collection) ([]indexSpec, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list indexes on %s: %w", coll.Name(), err)
	}
	var specs []indexSpec
	if err := cur.All(ctx, &specs); err != nil {
		return nil, fmt.Errorf("decode index catalog of %s: %w", coll.Name(), err)
	}
	return specs, nil
}

// EnsureTextIndex creates a full-text index over field with the given name
// unless the live catalog already contains a text index covering that field,
// under any name. Safe to call any number of times.
func EnsureTextIndex(ctx context.Context, coll *mongo.Collection, field, name string) error {
	specs, err := listIndexes(ctx, coll)
	if err != nil {
		return err
	}
	if hasTextIndexOn(specs, field) {
		return nil
	}

	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: field, Value: "text"}},
		Options: options.Index().SetName(name),
	})
	if isDuplicateIndex(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create text index %s on %s: %w", name, coll.Name(), err)
	}
	return nil
}

// EnsureCompoundIndex creates an index with the given key shape and name
// unless the live catalog already contains an index with exactly that shape.
// Safe to call any number of times.
func EnsureCompoundIndex(ctx context.Context, coll *mongo.Collection, name string, keys bson.D) error {
	specs, err := listIndexes(ctx, coll)
	if err != nil {
		return err
	}
	if hasKeyShape(specs, keys) {
		return nil
	}

	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    keys,
		Options: options.Index().SetName(name),
	})
	if isDuplicateIndex(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("create index %s on %s: %w", name, coll.Name(), err)
	}
	return nil
}

// hasTextIndexOn reports whether any catalog entry is a text index covering
// field, detected through its field-weight descriptor.
func hasTextIndexOn(specs []indexSpec, field string) bool {
	for _, s := range specs {
		if s.Weights == nil {
			continue
		}
		if _, ok := s.Weights[field]; ok {
			return true
		}
	}
	return false
}

// hasKeyShape reports whether any catalog entry has exactly the given key
// shape: same fields, same order, same directions.
func hasKeyShape(specs []indexSpec, keys bson.D) bool {
	for _, s := range specs {
		if len(s.Key) != len(keys) {
			continue
		}
		match := true
		for i, want := range keys {
			got := s.Key[i]
			if got.Key != want.Key || !directionEq(got.Value, want.Value) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// directionEq compares index direction values, which the server reports as
// int32 but callers typically write as untyped int literals.
func directionEq(a, b interface{}) bool {
	ai, aok := toInt64(a)
	bi, bok := toInt64(b)
	return aok && bok && ai == bi
}

func toInt64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func isDuplicateIndex(err error) bool {
	if err == nil {
		return false
	}
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorCode(duplicateIndexCode)
}
