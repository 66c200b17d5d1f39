package groups

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/shastaops/csmgo/internal/nodeset"
	"github.com/shastaops/csmgo/internal/xname"
)

// Inventory supplies the live data a resolution needs: named group
// membership and node enumeration for pattern filtering.
type Inventory interface {
	// GroupMembers returns the node set of a named group or partition,
	// or an error wrapping ErrUnknownGroup when the label does not exist.
	GroupMembers(ctx context.Context, label string) (nodeset.Set, error)

	// ListNodes enumerates every node component currently in inventory.
	ListNodes(ctx context.Context) (nodeset.Set, error)
}

// Resolver evaluates target expressions against an Inventory. Resolution
// is idempotent given stable backing data: the same expression against an
// unchanged inventory yields an identical, sorted, deduplicated set.
type Resolver struct {
	inv          Inventory
	universe     string
	explicitBase bool
	log          logr.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithUniverse names the base group used for complements.
func WithUniverse(label string) Option {
	return func(r *Resolver) { r.universe = label }
}

// WithExplicitUniverseOnly forbids falling back to the whole inventory as
// the complement base. Sites with scoped operator access use this so "~x"
// cannot silently widen to nodes the caller never named.
func WithExplicitUniverseOnly() Option {
	return func(r *Resolver) { r.explicitBase = true }
}

// WithLogger attaches a logger.
func WithLogger(log logr.Logger) Option {
	return func(r *Resolver) { r.log = log }
}

// NewResolver builds a Resolver over the given inventory.
func NewResolver(inv Inventory, opts ...Option) *Resolver {
	r := &Resolver{inv: inv, log: logr.Discard()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve parses and evaluates expression text. The result is owned by the
// caller; an empty set is a valid outcome, not an error.
func (r *Resolver) Resolve(ctx context.Context, text string) (nodeset.Set, error) {
	expr, err := Parse(text)
	if err != nil {
		return nodeset.Set{}, err
	}
	return r.ResolveExpr(ctx, expr)
}

// ResolveExpr evaluates an already-parsed expression.
func (r *Resolver) ResolveExpr(ctx context.Context, expr Expr) (nodeset.Set, error) {
	set, err := r.eval(ctx, expr)
	if err != nil {
		return nodeset.Set{}, err
	}
	r.log.V(1).Info("resolved expression", "expression", expr.String(), "nodes", set.Len())
	return set, nil
}

func (r *Resolver) eval(ctx context.Context, expr Expr) (nodeset.Set, error) {
	switch e := expr.(type) {
	case Literal:
		// A known group label shadows the identifier reading of the same
		// token; '@' is only needed to disambiguate against live groups.
		if set, ok, err := r.namedGroup(ctx, e.X.String()); err != nil {
			return nodeset.Set{}, err
		} else if ok {
			return set, nil
		}
		if e.X.IsNode() {
			return nodeset.New(e.X), nil
		}
		// A container literal targets every node beneath it.
		return r.filterInventory(ctx, func(x xname.XName) bool { return e.X.IsAncestorOf(x) })

	case Pattern:
		if isLabelWord(e.raw) {
			if set, ok, err := r.namedGroup(ctx, e.raw); err != nil {
				return nodeset.Set{}, err
			} else if ok {
				return set, nil
			}
		}
		return r.filterInventory(ctx, e.Matches)

	case GroupRef:
		set, err := r.inv.GroupMembers(ctx, e.Name)
		if err != nil {
			return nodeset.Set{}, fmt.Errorf("resolve group %q: %w", e.Name, err)
		}
		return set, nil

	case Binary:
		left, err := r.eval(ctx, e.L)
		if err != nil {
			return nodeset.Set{}, err
		}
		right, err := r.eval(ctx, e.R)
		if err != nil {
			return nodeset.Set{}, err
		}
		switch e.Op {
		case OpUnion:
			return left.Union(right), nil
		case OpIntersect:
			return left.Intersect(right), nil
		case OpDifference:
			return left.Difference(right), nil
		}
		return nodeset.Set{}, fmt.Errorf("%w: operator %v", ErrInvalidExpression, e.Op)

	case Complement:
		universe, err := r.universeSet(ctx)
		if err != nil {
			return nodeset.Set{}, err
		}
		inner, err := r.eval(ctx, e.E)
		if err != nil {
			return nodeset.Set{}, err
		}
		return universe.Difference(inner), nil
	}

	return nodeset.Set{}, fmt.Errorf("%w: unhandled expression %T", ErrInvalidExpression, expr)
}

// namedGroup looks a bare token up as a group label. The second return is
// false when no such group exists; the token then falls back to its
// structural reading.
func (r *Resolver) namedGroup(ctx context.Context, label string) (nodeset.Set, bool, error) {
	set, err := r.inv.GroupMembers(ctx, label)
	if errors.Is(err, ErrUnknownGroup) {
		return nodeset.Set{}, false, nil
	}
	if err != nil {
		return nodeset.Set{}, false, fmt.Errorf("resolve group %q: %w", label, err)
	}
	return set, true, nil
}

func isLabelWord(s string) bool {
	for _, r := range s {
		if !isLabelRune(r) {
			return false
		}
	}
	return s != ""
}

func (r *Resolver) filterInventory(ctx context.Context, keep func(xname.XName) bool) (nodeset.Set, error) {
	all, err := r.inv.ListNodes(ctx)
	if err != nil {
		return nodeset.Set{}, fmt.Errorf("enumerate inventory: %w", err)
	}
	var matched []xname.XName
	for _, x := range all.Members() {
		if keep(x) {
			matched = append(matched, x)
		}
	}
	return nodeset.New(matched...), nil
}

func (r *Resolver) universeSet(ctx context.Context) (nodeset.Set, error) {
	if r.universe != "" {
		set, err := r.inv.GroupMembers(ctx, r.universe)
		if err != nil {
			return nodeset.Set{}, fmt.Errorf("complement base %q: %w", r.universe, err)
		}
		return set, nil
	}
	if r.explicitBase {
		return nodeset.Set{}, fmt.Errorf("%w: no base group configured", ErrAmbiguousComplement)
	}
	set, err := r.inv.ListNodes(ctx)
	if err != nil {
		return nodeset.Set{}, fmt.Errorf("%w: inventory enumeration failed: %v", ErrAmbiguousComplement, err)
	}
	return set, nil
}
