// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"strings"

	"github.com/topomap/topomap/internal/javasrc"
)

// Resolve turns a type reference written inside from into a qualified name.
//
// Generic arguments are removed first. A dotted reference is taken as already
// qualified unless it starts with a type name. A simple name is looked up
// among the member types of from and its enclosing types, then through
// single-type imports, then the declaring package, then on-demand imports;
// known reports names outside the catalog (library types) that should resolve
// through the latter two steps.
// An unresolvable simple name is qualified with the declaring package.
func (c *Catalog) Resolve(ref string, from *javasrc.TypeDecl, known func(string) bool) string {
	ref = javasrc.StripGenerics(ref)
	if ref == "" || from == nil || strings.HasSuffix(ref, "[]") {
		return ref
	}
	if strings.Contains(ref, ".") {
		return c.resolveNested(ref, from, known)
	}

	for _, scope := range append([]string{from.Name}, from.Enclosing()...) {
		if member := qualify(from.Package, scope+"."+ref); c.Has(member) {
			return member
		}
	}

	for _, imp := range from.Imports {
		if imp.Static || imp.OnDemand {
			continue
		}
		if javasrc.SimpleName(imp.Path) == ref {
			return imp.Path
		}
	}

	exists := func(name string) bool {
		return c.Has(name) || (known != nil && known(name))
	}

	local := qualify(from.Package, ref)
	if exists(local) {
		return local
	}
	for _, imp := range from.Imports {
		if imp.Static || !imp.OnDemand {
			continue
		}
		if candidate := imp.Path + "." + ref; exists(candidate) {
			return candidate
		}
	}
	return local
}

// resolveNested handles "Outer.Inner" where Outer is itself imported.
func (c *Catalog) resolveNested(ref string, from *javasrc.TypeDecl, known func(string) bool) string {
	head, rest, _ := strings.Cut(ref, ".")
	if head == "" || !isUpper(head[0]) {
		return ref
	}
	return c.Resolve(head, from, known) + "." + rest
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

func isUpper(b byte) bool { return b >= 'A' && b <= 'Z' }
