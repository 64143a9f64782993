package pce_test

import (
	"reflect"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illumio-labs/pce-go/pkg/pce"
)

func TestLookupRegisteredResources(t *testing.T) {
	tests := []struct {
		name      string
		secPolicy bool
		global    bool
		parented  bool
	}{
		{name: pce.ResourceLabels},
		{name: pce.ResourceWorkloads},
		{name: pce.ResourceIPLists, secPolicy: true},
		{name: pce.ResourceRulesets, secPolicy: true},
		{name: pce.ResourceRules, secPolicy: true, parented: true},
		{name: pce.ResourceUsers, global: true},
	}

	for _, tt := range tests {
		desc, err := pce.Lookup(tt.name)
		require.NoError(t, err, tt.name)
		assert.Equal(t, tt.secPolicy, desc.SecPolicy, tt.name)
		assert.Equal(t, tt.global, desc.Global, tt.name)
		assert.Equal(t, tt.parented, desc.Parented, tt.name)
		assert.Equal(t, tt.name, desc.Path, tt.name)
	}
}

func TestLookupUnknownResource(t *testing.T) {
	_, err := pce.Lookup("flux_capacitors")
	require.Error(t, err)

	notRegistered := &pce.NotRegisteredError{}
	require.ErrorAs(t, err, &notRegistered)
	assert.Equal(t, "flux_capacitors", notRegistered.Name)
}

func TestLookupType(t *testing.T) {
	desc, err := pce.LookupType(reflect.TypeOf(&pce.Workload{}))
	require.NoError(t, err)
	assert.Equal(t, pce.ResourceWorkloads, desc.Name)

	_, err = pce.LookupType(reflect.TypeOf(struct{}{}))
	require.Error(t, err)
}

func TestResourceNamesSorted(t *testing.T) {
	names := pce.ResourceNames()
	require.NotEmpty(t, names)
	assert.True(t, sort.StringsAreSorted(names))
	assert.Contains(t, names, pce.ResourceWorkloads)
	assert.Contains(t, names, pce.ResourceIPLists)
}
