// Package inventory aggregates the per-node views of the backend services
// into one record per node: hardware state, boot artifacts, and
// configuration status.
package inventory

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/shastaops/csmgo/internal/csm/bos"
	"github.com/shastaops/csmgo/internal/csm/cfs"
	"github.com/shastaops/csmgo/internal/csm/hsm"
	"github.com/shastaops/csmgo/internal/nodeset"
	"github.com/shastaops/csmgo/internal/util/async"
	"github.com/shastaops/csmgo/internal/xname"
)

// NodeDetails is the merged view of one node.
type NodeDetails struct {
	ID  string
	NID string

	// Hardware inventory.
	State   string
	Role    string
	Arch    string
	Enabled bool

	// Boot service.
	BootImage    string
	KernelParams string

	// Configuration service.
	DesiredConfig string
	ConfigStatus  string
	ConfigErrors  int
}

// Aggregator fans one details query out to the backend services.
type Aggregator struct {
	hsm *hsm.Client
	bos *bos.Client
	cfs *cfs.Client
	log logr.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger attaches a logger.
func WithLogger(log logr.Logger) Option {
	return func(a *Aggregator) { a.log = log }
}

// NewAggregator builds an Aggregator over the three backend adapters.
func NewAggregator(hsmClient *hsm.Client, bosClient *bos.Client, cfsClient *cfs.Client, opts ...Option) *Aggregator {
	a := &Aggregator{hsm: hsmClient, bos: bosClient, cfs: cfsClient, log: logr.Discard()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Details fetches and merges the per-node state of every target. The three
// backends are queried concurrently; results come back in target order,
// one entry per target even when a backend has no record of a node.
func (a *Aggregator) Details(ctx context.Context, targets nodeset.Set) ([]NodeDetails, error) {
	if targets.IsEmpty() {
		return nil, nil
	}
	ids := targets.Strings()

	var (
		hardware    []hsm.Component
		bootState   []bos.Component
		configState []cfs.Component
	)
	err := async.RunParallel(ctx, []async.Task{
		{Name: "inventory", Func: func(ctx context.Context) error {
			var err error
			hardware, err = a.hsm.Components(ctx, hsm.ComponentFilter{IDs: ids, Type: "Node"})
			return err
		}},
		{Name: "boot", Func: func(ctx context.Context) error {
			var err error
			bootState, err = a.bos.Components(ctx, ids)
			return err
		}},
		{Name: "config", Func: func(ctx context.Context) error {
			var err error
			configState, err = a.cfs.Components(ctx, ids)
			return err
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("aggregate node details: %w", err)
	}

	byID := make(map[string]*NodeDetails, len(ids))
	details := make([]NodeDetails, len(ids))
	for i, id := range ids {
		details[i] = NodeDetails{ID: id}
		byID[id] = &details[i]
	}

	for _, comp := range hardware {
		d, ok := byID[comp.ID]
		if !ok {
			continue
		}
		if comp.NID > 0 {
			d.NID = xname.FormatNID(int64(comp.NID))
		}
		d.State = comp.State
		d.Role = comp.Role
		d.Arch = comp.Arch
		d.Enabled = comp.Enabled == nil || *comp.Enabled
	}
	for _, comp := range bootState {
		d, ok := byID[comp.ID]
		if !ok {
			continue
		}
		d.BootImage = comp.ActualState.BootArtifacts.Path
		d.KernelParams = comp.ActualState.BootArtifacts.KernelParams
	}
	for _, comp := range configState {
		d, ok := byID[comp.ID]
		if !ok {
			continue
		}
		d.DesiredConfig = comp.DesiredConfig
		d.ConfigStatus = comp.Status
		d.ConfigErrors = comp.ErrorCount
	}

	return details, nil
}
