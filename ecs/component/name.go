package component

// Name is the scene-unique name other entities use to reference this one.
type Name struct {
	Value  string
	Prefab string
}

var NameComponent = NewComponent[Name]()
