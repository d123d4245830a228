// SPDX-License-Identifier: MPL-2.0

package javasrc

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/java"
)

// ParseFile reads and parses a Java source file.
func ParseFile(ctx context.Context, path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read java source: %w", err)
	}
	return Parse(ctx, path, src)
}

// Parse extracts the declarations of src. path is recorded on the result and
// used in error messages only. A tree-sitter parser is created per call since
// parsers are not safe for concurrent use.
func Parse(ctx context.Context, path string, src []byte) (*File, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(java.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	file := &File{Path: path, HasErrors: root.HasError()}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_declaration":
			file.Package = packageName(child, src)
		case "import_declaration":
			file.Imports = append(file.Imports, parseImport(child.Content(src)))
		}
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		kind, ok := declKinds[child.Type()]
		if !ok {
			continue
		}
		file.Types = appendDecl(file.Types, file, kind, "", child, src)
	}

	return file, nil
}

// appendDecl adds the declaration n and, depth first, the member types of its
// body. Member types are named "Outer.Inner".
func appendDecl(decls []*TypeDecl, file *File, kind Kind, outer string, n *sitter.Node, src []byte) []*TypeDecl {
	decl := typeDecl(file, kind, n, src)
	if outer != "" {
		decl.Name = outer + "." + decl.Name
	}
	decls = append(decls, decl)

	body := n.ChildByFieldName("body")
	if body == nil || decl.Name == "" {
		return decls
	}
	for _, member := range memberNodes(body) {
		if k, ok := declKinds[member.Type()]; ok {
			decls = appendDecl(decls, file, k, decl.Name, member, src)
		}
	}
	return decls
}

// memberNodes lists the direct members of a type body. Enum members after the
// constants sit in an enum_body_declarations node.
func memberNodes(body *sitter.Node) []*sitter.Node {
	var members []*sitter.Node
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		if member.Type() == "enum_body_declarations" {
			members = append(members, memberNodes(member)...)
			continue
		}
		members = append(members, member)
	}
	return members
}

var declKinds = map[string]Kind{
	"class_declaration":     KindClass,
	"interface_declaration": KindInterface,
	"enum_declaration":      KindEnum,
	"record_declaration":    KindRecord,
}

func packageName(n *sitter.Node, src []byte) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "scoped_identifier" || c.Type() == "identifier" {
			return compact(c.Content(src))
		}
	}
	return ""
}

// parseImport works on the declaration text; the grammar's node shapes for
// static and on-demand imports differ across grammar versions.
func parseImport(text string) Import {
	text = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(text), "import"))
	text = strings.TrimSuffix(text, ";")

	var imp Import
	if rest, ok := strings.CutPrefix(text, "static"); ok && (rest == "" || rest[0] == ' ' || rest[0] == '\t') {
		imp.Static = true
		text = rest
	}
	text = compact(text)
	if trimmed, ok := strings.CutSuffix(text, ".*"); ok {
		imp.OnDemand = true
		text = trimmed
	}
	imp.Path = text
	return imp
}

func typeDecl(file *File, kind Kind, n *sitter.Node, src []byte) *TypeDecl {
	decl := &TypeDecl{
		Package: file.Package,
		Kind:    kind,
		Imports: file.Imports,
		Path:    file.Path,
		Line:    int(n.StartPoint().Row) + 1,
	}
	if name := n.ChildByFieldName("name"); name != nil {
		decl.Name = name.Content(src)
	}
	if kind == KindClass {
		if sc := n.ChildByFieldName("superclass"); sc != nil && sc.NamedChildCount() > 0 {
			decl.Superclass = typeName(sc.NamedChild(0), src)
		}
	}
	if kind == KindRecord {
		if params := n.ChildByFieldName("parameters"); params != nil {
			decl.Fields = append(decl.Fields, recordComponents(params, src)...)
		}
	}
	if body := n.ChildByFieldName("body"); body != nil {
		decl.Fields = append(decl.Fields, bodyFields(body, src)...)
	}
	return decl
}

func bodyFields(body *sitter.Node, src []byte) []Field {
	var fields []Field
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "field_declaration", "constant_declaration":
			fields = append(fields, fieldDecl(member, src)...)
		case "enum_body_declarations":
			fields = append(fields, bodyFields(member, src)...)
		}
	}
	return fields
}

func fieldDecl(n *sitter.Node, src []byte) []Field {
	var typ string
	if t := n.ChildByFieldName("type"); t != nil {
		typ = typeName(t, src)
	}

	var mods []string
	var out []Field
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "modifiers":
			mods = modifiers(c)
		case "variable_declarator":
			f := Field{
				Type: typ,
				Line: int(c.StartPoint().Row) + 1,
			}
			if name := c.ChildByFieldName("name"); name != nil {
				f.Name = name.Content(src)
			}
			if c.ChildByFieldName("dimensions") != nil {
				f.Type += "[]"
			}
			if v := c.ChildByFieldName("value"); v != nil {
				f.Value = expr(v, src)
			}
			out = append(out, f)
		}
	}
	for i := range out {
		out[i].Modifiers = mods
	}
	return out
}

func recordComponents(params *sitter.Node, src []byte) []Field {
	var out []Field
	for i := 0; i < int(params.NamedChildCount()); i++ {
		p := params.NamedChild(i)
		if p.Type() != "formal_parameter" {
			continue
		}
		f := Field{Modifiers: []string{"private", "final"}, Line: int(p.StartPoint().Row) + 1}
		if t := p.ChildByFieldName("type"); t != nil {
			f.Type = typeName(t, src)
		}
		if name := p.ChildByFieldName("name"); name != nil {
			f.Name = name.Content(src)
		}
		out = append(out, f)
	}
	return out
}

// modifiers keeps keyword modifiers; annotations are named children and skipped.
func modifiers(n *sitter.Node) []string {
	var mods []string
	for i := 0; i < int(n.ChildCount()); i++ {
		c := n.Child(i)
		if !c.IsNamed() {
			mods = append(mods, c.Type())
		}
	}
	return mods
}

func typeName(n *sitter.Node, src []byte) string {
	switch n.Type() {
	case "generic_type":
		if n.NamedChildCount() > 0 {
			return typeName(n.NamedChild(0), src)
		}
	case "array_type":
		if el := n.ChildByFieldName("element"); el != nil {
			return typeName(el, src) + "[]"
		}
	case "annotated_type":
		if cnt := int(n.NamedChildCount()); cnt > 0 {
			return typeName(n.NamedChild(cnt-1), src)
		}
	}
	return StripGenerics(n.Content(src))
}

func expr(n *sitter.Node, src []byte) Expr {
	switch n.Type() {
	case "string_literal":
		return stringLiteral(n.Content(src))
	case "identifier":
		return Ref{Name: n.Content(src)}
	case "field_access":
		return Ref{Name: compact(n.Content(src))}
	case "parenthesized_expression":
		if n.NamedChildCount() > 0 {
			return expr(n.NamedChild(0), src)
		}
	case "binary_expression":
		op := n.ChildByFieldName("operator")
		left, right := n.ChildByFieldName("left"), n.ChildByFieldName("right")
		if op != nil && op.Type() == "+" && left != nil && right != nil {
			return Concat{Left: expr(left, src), Right: expr(right, src)}
		}
	}
	return Unsupported{Text: n.Content(src)}
}

func stringLiteral(text string) Expr {
	if strings.HasPrefix(text, `"""`) {
		return Unsupported{Text: text}
	}
	if v, err := strconv.Unquote(text); err == nil {
		return StringLit{Value: v}
	}
	return StringLit{Value: strings.TrimSuffix(strings.TrimPrefix(text, `"`), `"`)}
}

// compact drops whitespace, which the grammar allows between qualified name parts.
func compact(s string) string {
	return strings.Join(strings.Fields(s), "")
}
