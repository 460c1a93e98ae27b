package pdata

// MergeFunction resolves a conflict between the values a holder currently has
// (original) and the values a caller offers (replacement). Either argument
// may be nil. The returned manipulator is what gets applied.
//
// Merge functions are always passed explicitly: there is no global default.
type MergeFunction func(original, replacement *Manipulator) *Manipulator

// KeepOriginal keeps the holder's current values and ignores the offered
// ones, unless the holder has none.
func KeepOriginal(original, replacement *Manipulator) *Manipulator {
	if original != nil {
		return original
	}
	return replacement
}

// KeepReplacement applies the offered values, ignoring the current ones.
func KeepReplacement(original, replacement *Manipulator) *Manipulator {
	if replacement != nil {
		return replacement
	}
	return original
}

// MergeWith returns a merge function that combines both manipulators with fn.
// fn is only called when both are present; otherwise the present one wins.
func MergeWith(fn func(original, replacement *Manipulator) *Manipulator) MergeFunction {
	return func(original, replacement *Manipulator) *Manipulator {
		switch {
		case original == nil:
			return replacement
		case replacement == nil:
			return original
		}
		return fn(original, replacement)
	}
}

// merge resolves the values to apply from the holder's current values
// (nil when absent) and the offered ones. It returns nil if fn yields no
// values or values of another trait.
func merge(fn MergeFunction, original, replacement *Manipulator) *Manipulator {
	var merged *Manipulator
	if original != nil {
		merged = fn(original.Copy(), replacement.AsMutable())
	} else {
		merged = fn(nil, replacement.AsMutable())
	}
	if merged == nil || merged.trait != replacement.trait {
		return nil
	}
	return merged
}
