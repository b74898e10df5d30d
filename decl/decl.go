// Package decl models the class-like declarations extracted from
// documentation pages and the in-memory repository a resolution session
// grows them in.
package decl

// Declaration kinds.
const (
	KindClass     = "class"
	KindNamespace = "namespace"
)

// Method kinds.
const (
	MethodKindMethod = "method"
	MethodKindSlot   = "slot"
)

// Declaration is one documented entity: a class with members, or a
// namespace that only contributes enumerations.
type Declaration struct {
	Name      string
	Namespace string
	FullName  string
	SourceURI string
	Kind      string

	Inherits   []TypedRef
	Properties []Property
	Methods    []Method
	Signals    []Method
	Enums      []Enum
}

// TypedRef is a referenced type with the link its source row carried, if
// any.
type TypedRef struct {
	Type string
	Href string
}

// Property is a documented property with its raw signature text.
type Property struct {
	Name     string
	Type     string
	ReadOnly bool
}

// Method covers functions, slots and signals.
type Method struct {
	Name       string
	ReturnType string
	Params     []Param
	Kind       string
	Const      bool
	Static     bool
}

// Param is one method parameter.
type Param struct {
	Name string
	Type string
}

// Enum is a named enumeration with its documented values.
type Enum struct {
	Name   string
	Values []EnumValue
}

// EnumValue is one enumerator.
type EnumValue struct {
	Name        string
	Value       string
	Description string
}
