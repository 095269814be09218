package custom

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Datetime represents a datetime that is stored as an RFC3339 string.
type Datetime time.Time

// Now returns the current UTC time as a Datetime.
func Now() Datetime {
	return Datetime(time.Now().UTC())
}

// MarshalJSON implements the json.Marshaler interface.
func (d Datetime) MarshalJSON() ([]byte, error) {
	if time.Time(d).IsZero() {
		return []byte(`null`), nil
	}
	return []byte(fmt.Sprintf("%q", time.Time(d).UTC().Format(time.RFC3339))), nil
}

// UnmarshalJSON implements the json.Unmarshaler interface.
func (d *Datetime) UnmarshalJSON(text []byte) error {
	s := string(text)
	if s == `null` {
		return nil
	}
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid datetime: %s", s)
	}
	*d = Datetime(t)
	return nil
}

// MarshalBSONValue implements the bson.ValueMarshaler interface.
func (d Datetime) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if time.Time(d).IsZero() {
		return bson.TypeNull, nil, nil
	}
	return bson.MarshalValue(time.Time(d).UTC().Format(time.RFC3339))
}

// UnmarshalBSONValue implements the bson.ValueUnmarshaler interface.
func (d *Datetime) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bson.TypeNull {
		return nil
	}

	var s string
	if err := bson.UnmarshalValue(t, data, &s); err != nil {
		return fmt.Errorf("error unmarshalling datetime: %w", err)
	}

	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid datetime: %s", s)
	}
	*d = Datetime(parsed)
	return nil
}

// Time returns the Datetime as a time.Time.
func (d Datetime) Time() time.Time {
	return time.Time(d)
}

// IsZero reports whether the Datetime is the zero time.
func (d Datetime) IsZero() bool {
	return time.Time(d).IsZero()
}

// String implements the fmt.Stringer interface.
func (d Datetime) String() string {
	return time.Time(d).Format(time.RFC3339)
}
