package feature

// Vector is an immutable feature vector. Values are only handed out as copies.
type Vector struct {
	values []float32
}

// NewVector copies values into a new Vector
func NewVector(values []float32) Vector {
	return Vector{values: append([]float32(nil), values...)}
}

// Len returns the dimensionality
func (v Vector) Len() int { return len(v.values) }

// IsZero reports whether the vector holds no values
func (v Vector) IsZero() bool { return len(v.values) == 0 }

// Values returns a copy of the vector's values
func (v Vector) Values() []float32 {
	return append([]float32(nil), v.values...)
}
