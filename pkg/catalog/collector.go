package catalog

import (
	"context"
	"fmt"
	"net/url"

	"github.com/vmware/govmomi"
	"github.com/vmware/govmomi/view"
	"github.com/vmware/govmomi/vim25/mo"
	"github.com/vmware/govmomi/vim25/soap"
)

// Inventory produces catalog snapshots from a backing platform.
type Inventory interface {
	Collect(ctx context.Context) (*Catalog, error)
}

// Collector builds catalog snapshots from vSphere inventory via the vCenter
// API. It implements Inventory.
type Collector struct {
	client *govmomi.Client
}

// NewCollector connects to vCenter and returns a collector bound to that
// session.
func NewCollector(ctx context.Context, vcURL, username, password string, insecure bool) (*Collector, error) {
	u, err := soap.ParseURL(vcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vCenter URL: %w", err)
	}
	u.User = url.UserPassword(username, password)

	client, err := govmomi.NewClient(ctx, u, insecure)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to vCenter: %w", err)
	}
	return &Collector{client: client}, nil
}

// Collect walks the vCenter inventory and returns a fresh snapshot of
// resource pools, datastores, networks, and VM templates.
func (col *Collector) Collect(ctx context.Context) (*Catalog, error) {
	m := view.NewManager(col.client.Client)
	v, err := m.CreateContainerView(ctx, col.client.ServiceContent.RootFolder,
		[]string{"ResourcePool", "Datastore", "Network", "VirtualMachine"}, true)
	if err != nil {
		return nil, fmt.Errorf("failed to create inventory view: %w", err)
	}
	defer func() {
		_ = v.Destroy(ctx)
	}()

	cat := &Catalog{}

	var pools []mo.ResourcePool
	if err := v.Retrieve(ctx, []string{"ResourcePool"}, []string{"name", "runtime"}, &pools); err != nil {
		return nil, fmt.Errorf("failed to retrieve resource pools: %w", err)
	}
	for _, p := range pools {
		pool := ResourcePool{ID: p.Reference().Value, Name: p.Name}
		cpuLimit, cpuUsage := p.Runtime.Cpu.MaxUsage, p.Runtime.Cpu.OverallUsage
		pool.CPULimit, pool.CPUUsage = &cpuLimit, &cpuUsage
		// vSphere reports memory in bytes; the catalog carries KiB.
		memLimit, memUsage := p.Runtime.Memory.MaxUsage/1024, p.Runtime.Memory.OverallUsage/1024
		pool.MemoryLimit, pool.MemoryUsage = &memLimit, &memUsage
		cat.ResourcePools = append(cat.ResourcePools, pool)
	}

	var stores []mo.Datastore
	if err := v.Retrieve(ctx, []string{"Datastore"}, []string{"name", "summary"}, &stores); err != nil {
		return nil, fmt.Errorf("failed to retrieve datastores: %w", err)
	}
	for _, d := range stores {
		capacity, free := d.Summary.Capacity, d.Summary.FreeSpace
		cat.Datastores = append(cat.Datastores, Datastore{
			ID:        d.Reference().Value,
			Name:      d.Name,
			Capacity:  &capacity,
			FreeSpace: &free,
		})
	}

	var nets []mo.Network
	if err := v.Retrieve(ctx, []string{"Network"}, []string{"name"}, &nets); err != nil {
		return nil, fmt.Errorf("failed to retrieve networks: %w", err)
	}
	for _, n := range nets {
		cat.Networks = append(cat.Networks, Network{ID: n.Reference().Value, Name: n.Name})
	}

	var vms []mo.VirtualMachine
	if err := v.Retrieve(ctx, []string{"VirtualMachine"}, []string{"name", "config.template", "config.uuid"}, &vms); err != nil {
		return nil, fmt.Errorf("failed to retrieve templates: %w", err)
	}
	for _, vm := range vms {
		if vm.Config == nil || !vm.Config.Template {
			continue
		}
		cat.Templates = append(cat.Templates, Template{UUID: vm.Config.Uuid, Name: vm.Name})
	}

	return cat, nil
}

// Close logs out the vCenter session.
func (col *Collector) Close(ctx context.Context) error {
	return col.client.Logout(ctx)
}
