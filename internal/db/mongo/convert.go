package mongo

import (
	"encoding/hex"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kailas-cloud/plasmidq/internal/domain/value"
)

// oidKey is the extended-JSON key a query uses to spell an ObjectId.
const oidKey = "$oid"

// ToBSON converts a query value into driver types. Member order is kept
// (bson.D), integers that fit become int32 like the shell does, and
// {"$oid": "<hex>"} becomes an ObjectID.
func ToBSON(v value.Value) any {
	switch v.Kind() {
	case value.KindNull:
		return nil
	case value.KindBool:
		return v.Bool()
	case value.KindNumber:
		return number(v.NumberLiteral())
	case value.KindText:
		return v.Text()
	case value.KindObjectID:
		return primitive.ObjectID(v.ObjectIDBytes())
	case value.KindSequence:
		items := v.Items()
		out := make(bson.A, len(items))
		for i, it := range items {
			out[i] = ToBSON(it)
		}
		return out
	case value.KindMapping:
		if id, ok := extendedOID(v); ok {
			return id
		}
		members := v.Members()
		out := make(bson.D, len(members))
		for i, m := range members {
			out[i] = bson.E{Key: m.Key, Value: ToBSON(m.Value)}
		}
		return out
	}
	return nil
}

// PipelineToBSON converts aggregation stages.
func PipelineToBSON(stages []value.Value) bson.A {
	out := make(bson.A, len(stages))
	for i, s := range stages {
		out[i] = ToBSON(s)
	}
	return out
}

func number(literal string) any {
	if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
		if i >= math.MinInt32 && i <= math.MaxInt32 {
			return int32(i)
		}
		return i
	}
	// overflow yields ±Inf, which the server rejects with its own message
	f, _ := strconv.ParseFloat(literal, 64)
	return f
}

func extendedOID(v value.Value) (primitive.ObjectID, bool) {
	if v.Len() != 1 {
		return primitive.NilObjectID, false
	}
	hexID, ok := v.Get(oidKey)
	if !ok || hexID.Kind() != value.KindText {
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(hexID.Text())
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}

// FromBSON converts a decoded document (or any field of one) into a value.
// Dates become RFC3339 text in UTC; types without a natural JSON shape
// fall back to their string form.
func FromBSON(x any) value.Value {
	switch t := x.(type) {
	case nil, primitive.Null, primitive.Undefined:
		return value.Null()
	case bson.D:
		members := make([]value.Member, len(t))
		for i, e := range t {
			members[i] = value.Member{Key: e.Key, Value: FromBSON(e.Value)}
		}
		return value.Mapping(members...)
	case bson.M:
		return fromMap(t)
	case map[string]any:
		return fromMap(t)
	case bson.A:
		return fromSlice(t)
	case []any:
		return fromSlice(t)
	case primitive.ObjectID:
		return value.ObjectID(t)
	case string:
		return value.Text(t)
	case bool:
		return value.Bool(t)
	case int32:
		return value.Int(int64(t))
	case int64:
		return value.Int(t)
	case int:
		return value.Int(int64(t))
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) {
			return value.Text(strconv.FormatFloat(t, 'f', -1, 64))
		}
		return value.Float(t)
	case primitive.Decimal128:
		if t.IsNaN() || t.IsInf() != 0 {
			return value.Text(t.String())
		}
		return value.Number(t.String())
	case primitive.DateTime:
		return value.Text(t.Time().UTC().Format(time.RFC3339))
	case time.Time:
		return value.Text(t.UTC().Format(time.RFC3339))
	case primitive.Timestamp:
		return value.Text(time.Unix(int64(t.T), 0).UTC().Format(time.RFC3339))
	case primitive.Regex:
		return value.Mapping(
			value.Member{Key: "$regex", Value: value.Text(t.Pattern)},
			value.Member{Key: "$options", Value: value.Text(t.Options)},
		)
	case primitive.Binary:
		return value.Text(hex.EncodeToString(t.Data))
	default:
		return value.Text(fmt.Sprint(t))
	}
}

func fromMap(m map[string]any) value.Value {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	members := make([]value.Member, len(keys))
	for i, k := range keys {
		members[i] = value.Member{Key: k, Value: FromBSON(m[k])}
	}
	return value.Mapping(members...)
}

func fromSlice(items []any) value.Value {
	out := make([]value.Value, len(items))
	for i, it := range items {
		out[i] = FromBSON(it)
	}
	return value.Sequence(out...)
}
