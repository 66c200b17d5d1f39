// Package hsm is the typed adapter for the hardware inventory service:
// component state, named groups, and partitions.
package hsm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shastaops/csmgo/internal/csm"
	"github.com/shastaops/csmgo/internal/nodeset"
	"github.com/shastaops/csmgo/internal/xname"
)

const backend = "inventory"

// Component is one hardware component as the inventory tracks it.
type Component struct {
	ID      string `json:"ID"`
	Type    string `json:"Type"`
	State   string `json:"State,omitempty"`
	Flag    string `json:"Flag,omitempty"`
	Enabled *bool  `json:"Enabled,omitempty"`
	Role    string `json:"Role,omitempty"`
	NID     int    `json:"NID,omitempty"`
	Arch    string `json:"Arch,omitempty"`
}

// Group is a named, unordered membership list. Members carry raw identifier
// strings on the wire; use MemberSet for the parsed form.
type Group struct {
	Label          string   `json:"label"`
	Description    string   `json:"description,omitempty"`
	Tags           []string `json:"tags,omitempty"`
	ExclusiveGroup string   `json:"exclusiveGroup,omitempty"`
	Members        Members  `json:"members"`
}

// Partition is an exclusive slice of the system. A component belongs to at
// most one partition, unlike groups which overlap freely.
type Partition struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Members     Members  `json:"members"`
}

// Members is the wire shape shared by groups and partitions.
type Members struct {
	IDs []string `json:"ids"`
}

// MemberSet parses the membership into a node set, dropping identifiers
// that are not node-level (groups may also hold BMCs and slots).
func (m Members) MemberSet() nodeset.Set {
	var nodes []xname.XName
	for _, id := range m.IDs {
		x, err := xname.Parse(id)
		if err != nil || !x.IsNode() {
			continue
		}
		nodes = append(nodes, x)
	}
	return nodeset.New(nodes...)
}

// ComponentFilter narrows a component listing server-side.
type ComponentFilter struct {
	IDs   []string
	Type  string
	State string
	Role  string
}

// Client wraps the shared API client with inventory-service calls.
type Client struct {
	api *csm.Client
}

// NewClient builds an inventory adapter over the shared client.
func NewClient(api *csm.Client) *Client {
	return &Client{api: api}
}

type componentList struct {
	Components []Component `json:"Components"`
}

// Components lists hardware components, optionally filtered.
func (c *Client) Components(ctx context.Context, filter ComponentFilter) ([]Component, error) {
	query := url.Values{}
	for _, id := range filter.IDs {
		query.Add("id", id)
	}
	if filter.Type != "" {
		query.Set("type", filter.Type)
	}
	if filter.State != "" {
		query.Set("state", filter.State)
	}
	if filter.Role != "" {
		query.Set("role", filter.Role)
	}
	list, err := csm.Get[componentList](ctx, c.api, backend, "/smd/hsm/v2/State/Components", query)
	if err != nil {
		return nil, fmt.Errorf("list components: %w", err)
	}
	return list.Components, nil
}

// Component fetches one component by identifier.
func (c *Client) Component(ctx context.Context, id string) (Component, error) {
	comp, err := csm.Get[Component](ctx, c.api, backend, "/smd/hsm/v2/State/Components/"+id, nil)
	if err != nil {
		return Component{}, fmt.Errorf("get component %s: %w", id, err)
	}
	return comp, nil
}

// Nodes returns the set of node components currently in inventory.
func (c *Client) Nodes(ctx context.Context) (nodeset.Set, error) {
	comps, err := c.Components(ctx, ComponentFilter{Type: "Node"})
	if err != nil {
		return nodeset.Set{}, err
	}
	ids := make([]string, 0, len(comps))
	for _, comp := range comps {
		ids = append(ids, comp.ID)
	}
	set, err := nodeset.FromStrings(ids)
	if err != nil {
		return nodeset.Set{}, fmt.Errorf("inventory returned malformed node id: %w", err)
	}
	return set, nil
}

// Groups lists every group.
func (c *Client) Groups(ctx context.Context) ([]Group, error) {
	groups, err := csm.Get[[]Group](ctx, c.api, backend, "/smd/hsm/v2/groups", nil)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return groups, nil
}

// Group fetches one group by label. A missing label surfaces as an error
// satisfying csm.IsNotFound.
func (c *Client) Group(ctx context.Context, label string) (Group, error) {
	g, err := csm.Get[Group](ctx, c.api, backend, "/smd/hsm/v2/groups/"+label, nil)
	if err != nil {
		return Group{}, fmt.Errorf("get group %s: %w", label, err)
	}
	return g, nil
}

// CreateGroup registers a new group with its initial membership.
func (c *Client) CreateGroup(ctx context.Context, g Group) error {
	err := c.api.Do(ctx, csm.Request{
		Backend: backend,
		Method:  http.MethodPost,
		Path:    "/smd/hsm/v2/groups",
		Body:    g,
	}, nil)
	if err != nil {
		return fmt.Errorf("create group %s: %w", g.Label, err)
	}
	return nil
}

// DeleteGroup removes a group. Membership of the underlying components is
// unaffected.
func (c *Client) DeleteGroup(ctx context.Context, label string) error {
	err := c.api.Do(ctx, csm.Request{
		Backend: backend,
		Method:  http.MethodDelete,
		Path:    "/smd/hsm/v2/groups/" + label,
	}, nil)
	if err != nil {
		return fmt.Errorf("delete group %s: %w", label, err)
	}
	return nil
}

// AddMember adds one component to a group.
func (c *Client) AddMember(ctx context.Context, label, id string) error {
	err := c.api.Do(ctx, csm.Request{
		Backend: backend,
		Method:  http.MethodPost,
		Path:    "/smd/hsm/v2/groups/" + label + "/members",
		Body:    map[string]string{"id": id},
	}, nil)
	if err != nil {
		return fmt.Errorf("add %s to group %s: %w", id, label, err)
	}
	return nil
}

// RemoveMember removes one component from a group.
func (c *Client) RemoveMember(ctx context.Context, label, id string) error {
	err := c.api.Do(ctx, csm.Request{
		Backend: backend,
		Method:  http.MethodDelete,
		Path:    "/smd/hsm/v2/groups/" + label + "/members/" + id,
	}, nil)
	if err != nil {
		return fmt.Errorf("remove %s from group %s: %w", id, label, err)
	}
	return nil
}

// Partitions lists every partition.
func (c *Client) Partitions(ctx context.Context) ([]Partition, error) {
	parts, err := csm.Get[[]Partition](ctx, c.api, backend, "/smd/hsm/v2/partitions", nil)
	if err != nil {
		return nil, fmt.Errorf("list partitions: %w", err)
	}
	return parts, nil
}

// Partition fetches one partition by name.
func (c *Client) Partition(ctx context.Context, name string) (Partition, error) {
	p, err := csm.Get[Partition](ctx, c.api, backend, "/smd/hsm/v2/partitions/"+name, nil)
	if err != nil {
		return Partition{}, fmt.Errorf("get partition %s: %w", name, err)
	}
	return p, nil
}
