package catalog

// Catalog is a read-only snapshot of the infrastructure resources available
// for provisioning. It is produced by the inventory collector, cached in
// Redis, and consumed by the validator. Nothing in this package or its
// consumers mutates a snapshot after it is built.
type Catalog struct {
	ResourcePools []ResourcePool `json:"resource_pools"`
	Datastores    []Datastore    `json:"datastores"`
	Networks      []Network      `json:"networks"`
	Templates     []Template     `json:"templates"`
}

// ResourcePool is a named aggregate of CPU and memory capacity. CPU figures
// are in MHz, memory figures in KiB. Metric fields are pointers: nil means
// the metric was unavailable when the snapshot was taken, and capacity
// checks skip it.
type ResourcePool struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	CPULimit    *int64 `json:"cpu_limit,omitempty"`
	CPUUsage    *int64 `json:"cpu_usage,omitempty"`
	MemoryLimit *int64 `json:"memory_limit,omitempty"`
	MemoryUsage *int64 `json:"memory_usage,omitempty"`
}

// Datastore is a storage volume. Capacity and FreeSpace are in bytes.
type Datastore struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Capacity  *int64 `json:"capacity,omitempty"`
	FreeSpace *int64 `json:"free_space,omitempty"`
}

// Network is a virtual network usable by provisioned VMs.
type Network struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Template is a preconfigured VM image usable as a provisioning source.
type Template struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
}

// FindResourcePool returns the first pool whose ID matches, or nil.
func (c *Catalog) FindResourcePool(id string) *ResourcePool {
	for i := range c.ResourcePools {
		if c.ResourcePools[i].ID == id {
			return &c.ResourcePools[i]
		}
	}
	return nil
}

// FindDatastore returns the first datastore whose ID matches, or nil.
func (c *Catalog) FindDatastore(id string) *Datastore {
	for i := range c.Datastores {
		if c.Datastores[i].ID == id {
			return &c.Datastores[i]
		}
	}
	return nil
}

// FindNetwork returns the first network whose ID matches, or nil.
func (c *Catalog) FindNetwork(id string) *Network {
	for i := range c.Networks {
		if c.Networks[i].ID == id {
			return &c.Networks[i]
		}
	}
	return nil
}

// FindTemplate returns the first template whose UUID matches, or nil.
func (c *Catalog) FindTemplate(uuid string) *Template {
	for i := range c.Templates {
		if c.Templates[i].UUID == uuid {
			return &c.Templates[i]
		}
	}
	return nil
}

// ResourceSelection names the catalog resources a VM build should use.
type ResourceSelection struct {
	ResourcePoolID string `json:"resource_pool_id"`
	DatastoreID    string `json:"datastore_id"`
	NetworkID      string `json:"network_id"`
	TemplateUUID   string `json:"template_uuid"`
}

// Disk is an additional data disk attached to a VM build.
type Disk struct {
	SizeGB int `json:"size"`
}

// VMRequest is a requested VM configuration as submitted to the build API.
// Memory is in MB, disk sizes in GB. Selection may be nil when the caller
// supplied no resource IDs at all; the validator treats that as a hard error.
type VMRequest struct {
	Name            string             `json:"name"`
	NumCPUs         int                `json:"num_cpus"`
	MemoryMB        int                `json:"memory"`
	DiskSizeGB      int                `json:"disk_size"`
	AdditionalDisks []Disk             `json:"additional_disks,omitempty"`
	Selection       *ResourceSelection `json:"resources"`
}

// TotalDiskGB returns the primary disk size plus all additional disks.
func (r *VMRequest) TotalDiskGB() int {
	total := r.DiskSizeGB
	for _, d := range r.AdditionalDisks {
		total += d.SizeGB
	}
	return total
}
