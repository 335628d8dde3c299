package expect

import (
	"context"
	"strings"

	"github.com/tbourn/go-api-base/internal/apperr"
)

// Quantifier selects how many entries of a Spec must resolve.
type Quantifier int

const (
	// Any requires at least one entry to resolve.
	Any Quantifier = iota
	// All requires every entry to resolve.
	All
)

// Entry is one expected entity: the request parameter holding its external
// identifier, the registry tag of its type, and the name it is bound under.
type Entry struct {
	Param string
	Type  string
	Bind  string
}

// Spec is an ordered list of expected entities. Evaluation and error
// messages follow its order.
type Spec []Entry

// Key expects param to hold an eid of type typ and binds the result under
// param (e.g. Key("contributor", "user") binds "contributor").
func Key(param, typ string) Entry {
	return Entry{Param: param, Type: typ, Bind: param}
}

// Named expects param to hold an eid of type typ and binds the result under
// the type tag (e.g. Named("id", "user") binds "user").
func Named(param, typ string) Entry {
	return Entry{Param: param, Type: typ, Bind: typ}
}

// Types builds a Spec where each tag is parameter, type and bind name.
func Types(tags ...string) Spec {
	s := make(Spec, 0, len(tags))
	for _, t := range tags {
		s = append(s, Entry{Param: t, Type: t, Bind: t})
	}
	return s
}

// Params exposes request parameters by name.
type Params interface {
	Get(key string) string
}

// Values is a map-backed Params. Missing keys read as "".
type Values map[string]string

// Get returns the value for key, or "".
func (v Values) Get(key string) string { return v[key] }

// Binder receives resolved entities. *gin.Context satisfies it.
type Binder interface {
	Set(key string, value any)
}

// Getter reads bound entities back. *gin.Context satisfies it.
type Getter interface {
	Get(key string) (any, bool)
}

// Result maps every bind name of a Spec to its entity, or nil when absent.
type Result map[string]any

// Found reports whether name resolved to an entity.
func (r Result) Found(name string) bool { return r[name] != nil }

// Expect resolves every entry of spec from params through reg, binds each
// result onto target (when non-nil) and enforces q.
//
// Failures of the quantifier are always apperr NotFound errors:
//   - All: "Missing: a and b" naming the unresolved entries.
//   - Any: "Missing: a or b" naming every entry. An empty spec has nothing
//     to find and fails as well.
//
// Store failures abort the walk and are returned unchanged.
func Expect(ctx context.Context, reg *Registry, q Quantifier, spec Spec, params Params, target Binder) (Result, error) {
	res := make(Result, len(spec))
	names := make([]string, 0, len(spec))
	var missing []string

	for _, e := range spec {
		var eid string
		if params != nil {
			eid = strings.TrimSpace(params.Get(e.Param))
		}
		v, err := reg.FindByEID(ctx, e.Type, eid)
		if err != nil {
			return nil, err
		}
		if target != nil {
			target.Set(e.Bind, v)
		}
		if _, seen := res[e.Bind]; !seen {
			names = append(names, e.Bind)
		}
		res[e.Bind] = v
		if v == nil {
			missing = append(missing, e.Bind)
		}
	}

	switch q {
	case All:
		if len(missing) > 0 {
			return res, apperr.NotFound("Missing: " + strings.Join(missing, " and "))
		}
	default:
		if len(missing) == len(names) {
			return res, apperr.NotFound("Missing: " + strings.Join(names, " or "))
		}
	}
	return res, nil
}

// Get returns the entity bound under name as *T, or nil when it is absent
// or of another type.
func Get[T any](g Getter, name string) *T {
	v, ok := g.Get(name)
	if !ok || v == nil {
		return nil
	}
	t, _ := v.(*T)
	return t
}
