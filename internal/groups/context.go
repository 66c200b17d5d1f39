package groups

import (
	"context"
	"fmt"

	"github.com/shastaops/csmgo/internal/csm"
	"github.com/shastaops/csmgo/internal/csm/hsm"
	"github.com/shastaops/csmgo/internal/nodeset"
)

// hsmInventory backs a Resolver with the live inventory service. Group
// labels are looked up as groups first and fall back to partitions when no
// group with that label exists.
type hsmInventory struct {
	hsm *hsm.Client
}

// NewHSMInventory adapts the inventory service client into the Inventory
// the Resolver consumes.
func NewHSMInventory(client *hsm.Client) Inventory {
	return &hsmInventory{hsm: client}
}

func (i *hsmInventory) GroupMembers(ctx context.Context, label string) (nodeset.Set, error) {
	g, err := i.hsm.Group(ctx, label)
	if err == nil {
		return g.Members.MemberSet(), nil
	}
	if !csm.IsNotFound(err) {
		return nodeset.Set{}, err
	}

	p, err := i.hsm.Partition(ctx, label)
	if err == nil {
		return p.Members.MemberSet(), nil
	}
	if csm.IsNotFound(err) {
		return nodeset.Set{}, fmt.Errorf("%q: %w", label, ErrUnknownGroup)
	}
	return nodeset.Set{}, err
}

func (i *hsmInventory) ListNodes(ctx context.Context) (nodeset.Set, error) {
	return i.hsm.Nodes(ctx)
}
