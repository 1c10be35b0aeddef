package dekoi

import (
	"slices"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// commandPools holds one pool per distinct queue family in use, index
// aligned with the filtered family list.
type commandPools struct {
	pools    []gpu.CommandPool
	reserved reservation
	byRole   [queueRoleCount]int
}

func (p *commandPools) forRole(role QueueRole) gpu.CommandPool {
	if i := p.byRole[role]; i >= 0 {
		return p.pools[i]
	}
	return 0
}

func (r *Renderer) createCommandPools() error {
	families := r.physical.families
	pools, reserved, err := makeHostSlice[gpu.CommandPool](r.allocator, len(families.Filtered))
	if err != nil {
		return err
	}
	for i, family := range families.Filtered {
		pool, res := r.api.CreateCommandPool(r.device, &gpu.CommandPoolCreateInfo{
			Flags:            gpu.CommandPoolCreateResetCommandBuffer,
			QueueFamilyIndex: family,
		}, r.callbacks)
		if res != gpu.Success {
			for _, created := range pools[:i] {
				r.api.DestroyCommandPool(r.device, created, r.callbacks)
			}
			reserved.release(r.allocator)
			return resultError(res, "failed to create the command pool of queue family %d", family)
		}
		pools[i] = pool
	}

	r.commandPools = commandPools{pools: pools, reserved: reserved}
	for role, index := range families.Indices {
		r.commandPools.byRole[role] = -1
		if index.Assigned() {
			r.commandPools.byRole[role] = slices.Index(families.Filtered, uint32(index))
		}
	}
	return nil
}

func (r *Renderer) destroyCommandPools() {
	for _, pool := range r.commandPools.pools {
		r.api.DestroyCommandPool(r.device, pool, r.callbacks)
	}
	r.commandPools.reserved.release(r.allocator)
	r.commandPools = commandPools{}
}
