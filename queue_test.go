package dekoi

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

type syntheticFamily struct {
	props   gpu.QueueFamilyProperties
	present bool
}

func splitFamilies(families []syntheticFamily) ([]gpu.QueueFamilyProperties, PresentSupport) {
	props := make([]gpu.QueueFamilyProperties, len(families))
	for i, f := range families {
		props[i] = f.props
	}
	support := func(family uint32) (bool, error) {
		return families[family].present, nil
	}
	return props, support
}

func permutations(families []syntheticFamily) [][]syntheticFamily {
	if len(families) <= 1 {
		return [][]syntheticFamily{append([]syntheticFamily(nil), families...)}
	}
	var out [][]syntheticFamily
	for i := range families {
		rest := make([]syntheticFamily, 0, len(families)-1)
		rest = append(rest, families[:i]...)
		rest = append(rest, families[i+1:]...)
		for _, p := range permutations(rest) {
			out = append(out, append([]syntheticFamily{families[i]}, p...))
		}
	}
	return out
}

func family(flags gpu.QueueFlags, count uint32, present bool) syntheticFamily {
	return syntheticFamily{
		props:   gpu.QueueFamilyProperties{QueueFlags: flags, QueueCount: count},
		present: present,
	}
}

func TestPickQueueFamiliesPrefersSharedFamily(t *testing.T) {
	families := []syntheticFamily{
		family(gpu.QueueGraphics, 4, false),
		family(gpu.QueueTransfer, 1, true),
		family(gpu.QueueGraphics|gpu.QueueCompute|gpu.QueueTransfer, 8, true),
		family(gpu.QueueCompute, 2, false),
		family(gpu.QueueTransfer, 1, false),
	}
	for _, perm := range permutations(families) {
		props, support := splitFamilies(perm)
		picked, err := PickQueueFamilies(props, support)
		require.NoError(t, err)
		graphics := picked.Index(QueueRoleGraphics)
		require.True(t, graphics.Assigned())
		assert.Equal(t, graphics, picked.Index(QueueRolePresent), "permutation %v", perm)
		assert.NotZero(t, props[graphics].QueueFlags&gpu.QueueGraphics)
		assert.True(t, perm[graphics].present)
	}
}

func TestPickQueueFamiliesDedicatedRoles(t *testing.T) {
	props, support := splitFamilies([]syntheticFamily{
		family(gpu.QueueGraphics|gpu.QueueCompute|gpu.QueueTransfer, 16, true),
		family(gpu.QueueCompute|gpu.QueueTransfer, 2, false),
		family(gpu.QueueTransfer, 1, false),
	})
	picked, err := PickQueueFamilies(props, support)
	require.NoError(t, err)
	assert.Equal(t, FamilyIndex(0), picked.Index(QueueRoleGraphics))
	assert.Equal(t, FamilyIndex(0), picked.Index(QueueRolePresent))
	assert.Equal(t, FamilyIndex(1), picked.Index(QueueRoleCompute))
	assert.Equal(t, FamilyIndex(1), picked.Index(QueueRoleTransfer))
	assert.Equal(t, []uint32{0, 1}, picked.Filtered)
}

func TestPickQueueFamiliesFallsBackToSharedFamily(t *testing.T) {
	props, support := splitFamilies([]syntheticFamily{
		family(gpu.QueueGraphics|gpu.QueueCompute, 16, true),
	})
	picked, err := PickQueueFamilies(props, support)
	require.NoError(t, err)
	for role := QueueRole(0); role < queueRoleCount; role++ {
		assert.Equal(t, FamilyIndex(0), picked.Index(role), role.String())
	}
	assert.Equal(t, []uint32{0}, picked.Filtered)
}

func TestPickQueueFamiliesSeparatePresent(t *testing.T) {
	props, support := splitFamilies([]syntheticFamily{
		family(gpu.QueueGraphics, 4, false),
		family(gpu.QueueTransfer, 1, true),
	})
	picked, err := PickQueueFamilies(props, support)
	require.NoError(t, err)
	assert.Equal(t, FamilyIndex(0), picked.Index(QueueRoleGraphics))
	assert.Equal(t, FamilyIndex(1), picked.Index(QueueRolePresent))
	assert.Equal(t, Unassigned, picked.Index(QueueRoleCompute))
	assert.Equal(t, FamilyIndex(0), picked.Index(QueueRoleTransfer))
	assert.Equal(t, []uint32{0, 1}, picked.Filtered)
}

func TestPickQueueFamiliesSkipsEmptyFamilies(t *testing.T) {
	props, support := splitFamilies([]syntheticFamily{
		family(gpu.QueueGraphics|gpu.QueueTransfer, 0, true),
		family(gpu.QueueGraphics, 1, true),
	})
	picked, err := PickQueueFamilies(props, support)
	require.NoError(t, err)
	assert.Equal(t, FamilyIndex(1), picked.Index(QueueRoleGraphics))
	assert.Equal(t, FamilyIndex(1), picked.Index(QueueRoleTransfer))
}

func TestPickQueueFamiliesHeadless(t *testing.T) {
	props, _ := splitFamilies([]syntheticFamily{
		family(gpu.QueueGraphics|gpu.QueueCompute|gpu.QueueTransfer, 16, false),
	})
	picked, err := PickQueueFamilies(props, nil)
	require.NoError(t, err)
	assert.Equal(t, FamilyIndex(0), picked.Index(QueueRoleGraphics))
	assert.Equal(t, Unassigned, picked.Index(QueueRolePresent))
	assert.Equal(t, []uint32{0}, picked.Filtered)
}

func TestPickQueueFamiliesFailures(t *testing.T) {
	tests := []struct {
		name     string
		families []syntheticFamily
		headless bool
	}{
		{"no graphics", []syntheticFamily{family(gpu.QueueCompute|gpu.QueueTransfer, 1, true)}, false},
		{"no present", []syntheticFamily{family(gpu.QueueGraphics, 1, false)}, false},
		{"nothing at all", nil, true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			props, support := splitFamilies(test.families)
			if test.headless {
				support = nil
			}
			_, err := PickQueueFamilies(props, support)
			require.Error(t, err)
			assert.Equal(t, StatusNotAvailable, StatusOf(err))
		})
	}
}

func TestPickQueueFamiliesPresentQueryError(t *testing.T) {
	props := []gpu.QueueFamilyProperties{{QueueFlags: gpu.QueueGraphics, QueueCount: 1}}
	boom := errors.New("query failed")
	_, err := PickQueueFamilies(props, func(uint32) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

func TestQueueRoleString(t *testing.T) {
	assert.Equal(t, "present", QueueRolePresent.String())
	assert.Equal(t, "role(9)", QueueRole(9).String())
}
