package document

import (
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// IDField is the key holding the store-assigned identifier.
const IDField = "_id"

// Timestamp fields stamped by the service.
const (
	CreatedAtField = "created_at"
	UpdatedAtField = "updated_at"
)

// TimeLayout is the ISO-8601 form used on the wire. BSON datetimes carry
// millisecond precision, so nothing finer is emitted.
const TimeLayout = "2006-01-02T15:04:05.000Z07:00"

var ErrInvalidID = errors.New("invalid document identifier")

// Document is a schema-less record as exchanged with the store.
type Document map[string]any

// ParseID converts the wire form of an identifier into the store's native type.
func ParseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}

// ID returns the native identifier when present.
func (d Document) ID() (primitive.ObjectID, bool) {
	id, ok := d[IDField].(primitive.ObjectID)
	return id, ok
}

// String returns a string field, or "" when absent or not a string.
func (d Document) String(key string) string {
	s, _ := d[key].(string)
	return s
}

// Clone returns a deep copy so callers never alias store-held maps.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return cloneValue(map[string]any(d)).(map[string]any)
}

// WithoutID returns a copy without the identifier field. Client bodies go
// through this so every stored identifier is store-assigned.
func (d Document) WithoutID() Document {
	out := make(Document, len(d))
	for k, v := range d {
		if k == IDField {
			continue
		}
		out[k] = v
	}
	return out
}

// Project converts a stored document into its wire form: identifiers become
// hex strings and timestamps ISO-8601 strings, at any depth.
func (d Document) Project() map[string]any {
	if d == nil {
		return nil
	}
	return projectValue(map[string]any(d)).(map[string]any)
}

// ProjectAll projects a list of documents.
func ProjectAll(docs []Document) []map[string]any {
	out := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Project())
	}
	return out
}

// FormatTime renders t in the wire timestamp layout.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

func projectValue(v any) any {
	switch x := v.(type) {
	case primitive.ObjectID:
		return x.Hex()
	case time.Time:
		return FormatTime(x)
	case primitive.DateTime:
		return FormatTime(x.Time())
	case primitive.Timestamp:
		return FormatTime(time.Unix(int64(x.T), 0))
	case Document:
		return projectValue(map[string]any(x))
	case bson.M:
		return projectValue(map[string]any(x))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = projectValue(val)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(x))
		for _, e := range x {
			out[e.Key] = projectValue(e.Value)
		}
		return out
	case bson.A:
		return projectValue([]any(x))
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = projectValue(val)
		}
		return out
	case []string:
		return x
	case []map[string]any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = projectValue(val)
		}
		return out
	default:
		return v
	}
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case Document:
		return Document(cloneValue(map[string]any(x)).(map[string]any))
	case bson.M:
		return bson.M(cloneValue(map[string]any(x)).(map[string]any))
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, val := range x {
			out[k] = cloneValue(val)
		}
		return out
	case bson.A:
		return bson.A(cloneValue([]any(x)).([]any))
	case []any:
		out := make([]any, len(x))
		for i, val := range x {
			out[i] = cloneValue(val)
		}
		return out
	case []string:
		return append([]string(nil), x...)
	default:
		return v
	}
}
