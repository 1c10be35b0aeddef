package dekoi

import (
	"fmt"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

// QueueRole is the job a queue is picked for.
type QueueRole int

const (
	QueueRoleGraphics QueueRole = iota
	QueueRoleCompute
	QueueRoleTransfer
	QueueRolePresent

	queueRoleCount
)

var queueRoleNames = [queueRoleCount]string{"graphics", "compute", "transfer", "present"}

func (r QueueRole) String() string {
	if r >= 0 && r < queueRoleCount {
		return queueRoleNames[r]
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// FamilyIndex is a queue family index or Unassigned.
type FamilyIndex int32

const Unassigned FamilyIndex = -1

func (f FamilyIndex) Assigned() bool {
	return f >= 0
}

// QueueFamilies is the outcome of queue family picking.
type QueueFamilies struct {
	// Indices maps each role to its family.
	Indices [queueRoleCount]FamilyIndex
	// Filtered lists each assigned family once, in role order.
	Filtered []uint32
}

func (q QueueFamilies) Index(role QueueRole) FamilyIndex {
	return q.Indices[role]
}

// PresentSupport reports whether a queue family can present to the
// renderer's surface.
type PresentSupport func(family uint32) (bool, error)

// PickQueueFamilies assigns a family to every role. A nil presentSupport
// means there is no surface and the present role stays unassigned.
//
// The first pass looks for graphics and present, settling on the first
// family able to do both. The second pass looks for dedicated compute and
// transfer families among the remaining ones; when none exists the roles
// fall back to any capable family. Families without queues are ignored.
func PickQueueFamilies(families []gpu.QueueFamilyProperties, presentSupport PresentSupport) (QueueFamilies, error) {
	var out QueueFamilies
	for i := range out.Indices {
		out.Indices[i] = Unassigned
	}
	idx := &out.Indices

	for i, family := range families {
		if family.QueueCount == 0 {
			continue
		}
		graphics := family.QueueFlags&gpu.QueueGraphics != 0
		present := false
		if presentSupport != nil {
			supported, err := presentSupport(uint32(i))
			if err != nil {
				return QueueFamilies{}, err
			}
			present = supported
		}
		if graphics && present {
			idx[QueueRoleGraphics] = FamilyIndex(i)
			idx[QueueRolePresent] = FamilyIndex(i)
			break
		}
		if graphics && !idx[QueueRoleGraphics].Assigned() {
			idx[QueueRoleGraphics] = FamilyIndex(i)
		}
		if present && !idx[QueueRolePresent].Assigned() {
			idx[QueueRolePresent] = FamilyIndex(i)
		}
	}

	for i, family := range families {
		if family.QueueCount == 0 {
			continue
		}
		if FamilyIndex(i) == idx[QueueRoleGraphics] || FamilyIndex(i) == idx[QueueRolePresent] {
			continue
		}
		if !idx[QueueRoleCompute].Assigned() && family.QueueFlags&gpu.QueueCompute != 0 {
			idx[QueueRoleCompute] = FamilyIndex(i)
		}
		if !idx[QueueRoleTransfer].Assigned() && family.QueueFlags&gpu.QueueTransfer != 0 {
			idx[QueueRoleTransfer] = FamilyIndex(i)
		}
		if idx[QueueRoleCompute].Assigned() && idx[QueueRoleTransfer].Assigned() {
			break
		}
	}

	if !idx[QueueRoleCompute].Assigned() {
		idx[QueueRoleCompute] = firstFamily(families, gpu.QueueCompute)
	}
	// Graphics and compute queues implicitly support transfers.
	if !idx[QueueRoleTransfer].Assigned() {
		idx[QueueRoleTransfer] = firstFamily(families, gpu.QueueGraphics|gpu.QueueCompute|gpu.QueueTransfer)
	}

	if !idx[QueueRoleGraphics].Assigned() {
		return QueueFamilies{}, newError(StatusNotAvailable, "no queue family supports graphics")
	}
	if !idx[QueueRoleTransfer].Assigned() {
		return QueueFamilies{}, newError(StatusNotAvailable, "no queue family supports transfers")
	}
	if presentSupport != nil && !idx[QueueRolePresent].Assigned() {
		return QueueFamilies{}, newError(StatusNotAvailable, "no queue family can present to the surface")
	}

	for _, index := range idx {
		if index.Assigned() {
			out.Filtered = appendUnique(out.Filtered, uint32(index))
		}
	}
	return out, nil
}

// firstFamily returns the first family with queues supporting any of flags.
func firstFamily(families []gpu.QueueFamilyProperties, flags gpu.QueueFlags) FamilyIndex {
	for i, family := range families {
		if family.QueueCount > 0 && family.QueueFlags&flags != 0 {
			return FamilyIndex(i)
		}
	}
	return Unassigned
}
