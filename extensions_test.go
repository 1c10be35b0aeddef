package dekoi

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/christophercrouzet/dekoi-sub000/gpu"
)

func TestNameSet(t *testing.T) {
	set := nameSet{
		kind:     "device extensions",
		required: []string{"a", "b", "c"},
		actual:   []string{"c", "a"},
	}
	assert.Equal(t, []string{"b"}, set.missing())
	err := set.check()
	assert.ErrorIs(t, err, ErrError)
	assert.EqualError(t, err, "missing device extensions: b")

	set.actual = append(set.actual, "b")
	assert.NoError(t, set.check())
}

func TestRequiredNames(t *testing.T) {
	assert.Nil(t, validationLayers(false))
	assert.Equal(t, []string{gpu.KhronosValidationLayerName}, validationLayers(true))
	assert.Nil(t, requiredDeviceExtensions(false))
	assert.Equal(t, []string{gpu.SwapchainExtensionName}, requiredDeviceExtensions(true))
}
