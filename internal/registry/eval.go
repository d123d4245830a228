// SPDX-License-Identifier: MPL-2.0

package registry

import (
	"fmt"
	"strings"

	"github.com/topomap/topomap/internal/javasrc"
)

// evaluator folds constant initializers of a single class. Values are cached
// so shared prefixes like SEPARATOR are evaluated once.
type evaluator struct {
	decl     *javasrc.TypeDecl
	values   map[string]string
	visiting map[string]bool
}

func newEvaluator(decl *javasrc.TypeDecl) *evaluator {
	return &evaluator{
		decl:     decl,
		values:   make(map[string]string),
		visiting: make(map[string]bool),
	}
}

func (ev *evaluator) field(name string) (string, error) {
	if v, ok := ev.values[name]; ok {
		return v, nil
	}
	if ev.visiting[name] {
		return "", fmt.Errorf("%w: %s", ErrConstantCycle, name)
	}
	f, ok := ev.decl.Field(name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnresolvedRef, name)
	}
	if f.Value == nil {
		return "", ErrNoValue
	}

	ev.visiting[name] = true
	defer delete(ev.visiting, name)

	v, err := ev.eval(f.Value)
	if err != nil {
		return "", err
	}
	ev.values[name] = v
	return v, nil
}

func (ev *evaluator) eval(e javasrc.Expr) (string, error) {
	switch e := e.(type) {
	case javasrc.StringLit:
		return e.Value, nil
	case javasrc.Concat:
		l, err := ev.eval(e.Left)
		if err != nil {
			return "", err
		}
		r, err := ev.eval(e.Right)
		if err != nil {
			return "", err
		}
		return l + r, nil
	case javasrc.Ref:
		name, ok := ev.ownMember(e.Name)
		if !ok {
			return "", fmt.Errorf("%w: %s", ErrUnresolvedRef, e.Name)
		}
		return ev.field(name)
	case javasrc.Unsupported:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedExpr, e.Text)
	default:
		return "", fmt.Errorf("%w: %T", ErrUnsupportedExpr, e)
	}
}

// ownMember strips a qualifier naming the class itself, by simple or
// qualified name. References qualified by anything else are not followed.
func (ev *evaluator) ownMember(ref string) (string, bool) {
	i := strings.LastIndexByte(ref, '.')
	if i < 0 {
		return ref, true
	}
	qualifier, member := ref[:i], ref[i+1:]
	if qualifier == ev.decl.Name || qualifier == ev.decl.QualifiedName() || qualifier == "this" {
		return member, true
	}
	return "", false
}
