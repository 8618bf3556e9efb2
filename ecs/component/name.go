package component

// Name is the prefab name an entity was built from, used for lookups and logs.
type Name struct {
	Value string
}

var NameComponent = NewComponent[Name]()
