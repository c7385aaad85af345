package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Binding tells a reservation state write what to do with the projector
// reference. The zero value keeps the current binding.
type Binding struct {
	Change      bool
	ProjectorID *primitive.ObjectID // nil with Change set clears the binding
}

// KeepBinding leaves the projector reference untouched.
var KeepBinding = Binding{}

// Bind sets the projector reference to id.
func Bind(id primitive.ObjectID) Binding { return Binding{Change: true, ProjectorID: &id} }

// Unbind clears the projector reference.
func Unbind() Binding { return Binding{Change: true} }

// BindTo sets the reference to id, or clears it when id is nil.
func BindTo(id *primitive.ObjectID) Binding {
	if id == nil {
		return Unbind()
	}
	return Bind(*id)
}
