// File: lixenwraith/layer/type.go
package layer

// GetAs resolves v and checks that the value has exactly the expected kind.
// Booleans and integers are distinct kinds.
func (v *View) GetAs(expected Kind) (Value, error) {
	val, err := v.Get()
	if err != nil {
		return Value{}, err
	}
	if val.Kind() != expected {
		return Value{}, &ConfigTypeError{Name: v.Name(), Expected: expected, Actual: val.Kind()}
	}
	return val, nil
}

// GetString resolves a string value.
func (v *View) GetString() (string, error) {
	val, err := v.GetAs(KindString)
	if err != nil {
		return "", err
	}
	s, _ := val.Text()
	return s, nil
}

// GetInt resolves an integer value.
func (v *View) GetInt() (int64, error) {
	val, err := v.GetAs(KindInt)
	if err != nil {
		return 0, err
	}
	i, _ := val.Int64()
	return i, nil
}

// GetFloat resolves a float value. Integers are not promoted.
func (v *View) GetFloat() (float64, error) {
	val, err := v.GetAs(KindFloat)
	if err != nil {
		return 0, err
	}
	f, _ := val.Float64()
	return f, nil
}

// GetBool resolves a boolean value.
func (v *View) GetBool() (bool, error) {
	val, err := v.GetAs(KindBool)
	if err != nil {
		return false, err
	}
	b, _ := val.Boolean()
	return b, nil
}

// GetMap resolves the highest-priority mapping, unmerged.
func (v *View) GetMap() (*Map, error) {
	val, err := v.GetAs(KindMap)
	if err != nil {
		return nil, err
	}
	return val.Map(), nil
}

// GetSeq resolves the highest-priority sequence, unmerged.
func (v *View) GetSeq() ([]Value, error) {
	val, err := v.GetAs(KindSeq)
	if err != nil {
		return nil, err
	}
	return val.Elems(), nil
}

// ToString resolves v and renders the scalar as text: integers in decimal,
// floats in shortest form, booleans as true/false, strings unchanged.
// Containers and the absent marker are type errors.
func (v *View) ToString() (string, error) {
	val, err := v.Get()
	if err != nil {
		return "", err
	}
	if s, ok := scalarText(val); ok {
		return s, nil
	}
	return "", &ConfigTypeError{Name: v.Name(), Op: "convert to string", Actual: val.Kind()}
}

// ToBool resolves v as a truth value. Booleans are returned as-is and
// numbers are true when non-zero; other kinds are type errors.
func (v *View) ToBool() (bool, error) {
	val, err := v.Get()
	if err != nil {
		return false, err
	}

	switch val.Kind() {
	case KindBool:
		b, _ := val.Boolean()
		return b, nil
	// Numeric interpretation: 0 is false, non-zero is true
	case KindInt:
		i, _ := val.Int64()
		return i != 0, nil
	case KindFloat:
		f, _ := val.Float64()
		return f != 0, nil
	}

	return false, &ConfigTypeError{Name: v.Name(), Op: "convert to boolean", Actual: val.Kind()}
}
