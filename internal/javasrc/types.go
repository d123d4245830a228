// SPDX-License-Identifier: MPL-2.0

package javasrc

import "strings"

const (
	// KindClass is a class declaration.
	KindClass Kind = "class"
	// KindInterface is an interface declaration.
	KindInterface Kind = "interface"
	// KindEnum is an enum declaration.
	KindEnum Kind = "enum"
	// KindRecord is a record declaration.
	KindRecord Kind = "record"
)

type (
	// Kind is the declaration keyword of a type.
	Kind string

	// Import is a single import declaration.
	Import struct {
		// Path is the imported name without the trailing ".*".
		Path string
		// Static marks "import static".
		Static bool
		// OnDemand marks a wildcard import ("import a.b.*").
		OnDemand bool
	}

	// File is the declaration surface of one compilation unit.
	File struct {
		Path    string
		Package string
		Imports []Import
		Types   []*TypeDecl
		// HasErrors reports that tree-sitter recovered from syntax errors;
		// the declarations may be incomplete.
		HasErrors bool
	}

	// TypeDecl is a type declaration. Member types carry their enclosing
	// names, as in "Outer.Inner".
	TypeDecl struct {
		Package string
		Name    string
		Kind    Kind
		// Superclass is the type named in the extends clause of a class, with
		// generic arguments removed. Empty when there is none.
		Superclass string
		Fields     []Field
		// Imports are shared with the declaring File.
		Imports []Import
		Path    string
		Line    int
	}

	// Field is a declared field, including static constants and record components.
	Field struct {
		Name string
		// Type is the declared type with generic arguments removed. Arrays keep
		// their "[]" suffix so they never compare equal to the element type.
		Type      string
		Modifiers []string
		// Value is the initializer, nil when the field has none.
		Value Expr
		Line  int
	}

	// Expr is a field initializer expression.
	Expr interface {
		exprNode()
	}

	// StringLit is a string literal with escapes already decoded.
	StringLit struct{ Value string }

	// Ref names another field, either simple ("SEPARATOR") or qualified
	// ("KafkaTopicNaming.SEPARATOR").
	Ref struct{ Name string }

	// Concat is a binary "+" expression.
	Concat struct{ Left, Right Expr }

	// Unsupported is any initializer the evaluator does not understand.
	Unsupported struct{ Text string }
)

func (StringLit) exprNode()   {}
func (Ref) exprNode()         {}
func (Concat) exprNode()      {}
func (Unsupported) exprNode() {}

// QualifiedName returns the package-qualified type name.
func (d *TypeDecl) QualifiedName() string {
	if d.Package == "" {
		return d.Name
	}
	return d.Package + "." + d.Name
}

// Enclosing returns the names of the types that lexically contain d, the
// innermost first. Top-level types have none.
func (d *TypeDecl) Enclosing() []string {
	var outer []string
	name := d.Name
	for {
		i := strings.LastIndexByte(name, '.')
		if i < 0 {
			return outer
		}
		name = name[:i]
		outer = append(outer, name)
	}
}

// Field returns the field with the given name.
func (d *TypeDecl) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// HasModifier reports whether the field carries the given keyword modifier.
func (f Field) HasModifier(mod string) bool {
	for _, m := range f.Modifiers {
		if m == mod {
			return true
		}
	}
	return false
}

// StripGenerics removes every balanced <...> group and all whitespace from a
// type expression: "Map<String, List<X>>" becomes "Map".
func StripGenerics(typ string) string {
	var b strings.Builder
	depth := 0
	for _, r := range typ {
		switch {
		case r == '<':
			depth++
		case r == '>':
			if depth > 0 {
				depth--
			}
		case depth > 0:
		case r == ' ' || r == '\t' || r == '\n' || r == '\r':
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SimpleName returns the last dot-separated segment of a type name.
func SimpleName(name string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[i+1:]
	}
	return name
}
