package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

const DEFAULT_ELEMENT_ORDER = 1

// Order is the sort position of a rubric element. A missing, null or non-numeric
// value resolves to DEFAULT_ELEMENT_ORDER.
type Order struct {
	n     float64
	valid bool
}

func NewOrder(n float64) Order {
	return Order{n: n, valid: true}
}

func (o Order) Value() float64 {
	if !o.valid {
		return DEFAULT_ELEMENT_ORDER
	}
	return o.n
}

func (o Order) IsSet() bool {
	return o.valid
}

func (o Order) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.n)
}

func (o *Order) UnmarshalJSON(data []byte) error {
	*o = Order{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*o = NewOrder(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*o = parseOrderString(s)
	}
	// anything else (bool, object, array) falls back to the default order
	return nil
}

func (o Order) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if !o.valid {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(o.n)
}

func (o *Order) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	*o = Order{}
	raw := bson.RawValue{Type: t, Value: data}
	switch t {
	case bson.TypeDouble:
		if v, ok := raw.DoubleOK(); ok {
			*o = NewOrder(v)
		}
	case bson.TypeInt32:
		if v, ok := raw.Int32OK(); ok {
			*o = NewOrder(float64(v))
		}
	case bson.TypeInt64:
		if v, ok := raw.Int64OK(); ok {
			*o = NewOrder(float64(v))
		}
	case bson.TypeString:
		if v, ok := raw.StringValueOK(); ok {
			*o = parseOrderString(v)
		}
	}
	return nil
}

func parseOrderString(s string) Order {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return Order{}
	}
	return NewOrder(n)
}
