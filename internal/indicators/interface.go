package indicators

// Value is an indicator reading. Ready is false while the indicator is still
// warming up or when the reading is mathematically undefined; Value is 0 then.
type Value struct {
	Value float64
	Ready bool
}

// Undefined is the reading reported during warmup.
var Undefined = Value{}

// Defined wraps a computed reading.
func Defined(v float64) Value {
	return Value{Value: v, Ready: true}
}

// Indicator is a single-pass indicator fed one price at a time.
type Indicator interface {
	Update(price float64) Value
	Last() Value
	ResetState()
	GetName() string
	GetRequiredPeriods() int
}
