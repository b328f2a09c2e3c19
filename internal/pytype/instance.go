package pytype

// Instance is a runtime-shaped (but purely static) value bound to a Type —
// the result of CreateInstance, or of narrowing an existing value to a
// subtype. Analysis never executes code, so an Instance carries no real
// data, only the type it was constructed as and any narrowing applied to it
//.
type Instance struct {
	TypeRef  Type
	Narrowed Type // set when isinstance() has narrowed this instance's apparent type
}

// ApparentType returns the narrowed type if one has been recorded, else the
// instance's declared type.
func (i *Instance) ApparentType() Type {
	if i.Narrowed != nil {
		return i.Narrowed
	}
	return i.TypeRef
}

// Narrow records t in place as this instance's apparent type.
func (i *Instance) Narrow(t Type) {
	i.Narrowed = t
}

// Widen clears any narrowing recorded by Narrow.
func (i *Instance) Widen() {
	i.Narrowed = nil
}
