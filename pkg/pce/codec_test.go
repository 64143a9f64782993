package pce_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illumio-labs/pce-go/pkg/pce"
)

func TestDecodePreservesUnknownFields(t *testing.T) {
	raw := []byte(`{
		"href": "/orgs/1/workloads/a1",
		"hostname": "web-01",
		"enforcement_mode": "full",
		"future_field": {"nested": true},
		"another_new_one": 42
	}`)

	workload := &pce.Workload{}
	require.NoError(t, pce.Decode(json.RawMessage(raw), workload))

	assert.Equal(t, "web-01", workload.Hostname)
	assert.Equal(t, pce.EnforcementFull, workload.EnforcementMode)
	assert.Contains(t, workload.Extra, "future_field")
	assert.Contains(t, workload.Extra, "another_new_one")

	// Unknown fields survive the round trip verbatim.
	encoded, err := pce.Marshal(workload)
	require.NoError(t, err)

	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(encoded, &wire))
	assert.JSONEq(t, `{"nested": true}`, string(wire["future_field"]))
	assert.JSONEq(t, `42`, string(wire["another_new_one"]))
	assert.JSONEq(t, `"web-01"`, string(wire["hostname"]))
}

func TestDecodeEmptyListStaysEmptyNotAbsent(t *testing.T) {
	workload := &pce.Workload{}
	require.NoError(t, pce.Decode(json.RawMessage(`{"labels": [], "hostname": "db-01"}`), workload))

	require.NotNil(t, workload.Labels)
	assert.Empty(t, workload.Labels)

	encoded, err := pce.Marshal(workload)
	require.NoError(t, err)

	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(encoded, &wire))
	assert.JSONEq(t, `[]`, string(wire["labels"]))
}

func TestDecodeAbsentListIsElided(t *testing.T) {
	workload := &pce.Workload{}
	require.NoError(t, pce.Decode(json.RawMessage(`{"hostname": "db-01"}`), workload))
	assert.Nil(t, workload.Labels)

	encoded, err := pce.Marshal(workload)
	require.NoError(t, err)

	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(encoded, &wire))
	assert.NotContains(t, wire, "labels")
	assert.NotContains(t, wire, "online")
	assert.NotContains(t, wire, "enforcement_mode")
}

func TestDecodeAlreadyTypedValueIsACopy(t *testing.T) {
	original := &pce.Workload{}
	require.NoError(t, pce.Decode(json.RawMessage(`{"hostname": "web-01", "new_field": 1}`), original))

	copied := &pce.Workload{}
	require.NoError(t, pce.Decode(original, copied))

	assert.Equal(t, original, copied)
}

func TestEncodeFlattensRichReferables(t *testing.T) {
	label := &pce.Label{Key: "env", Value: "prod"}
	label.Href = "/orgs/1/labels/9"

	workload := &pce.Workload{Labels: []pce.Referable{label}}

	encoded, err := pce.Marshal(workload)
	require.NoError(t, err)

	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(encoded, &wire))
	assert.JSONEq(t, `[{"href": "/orgs/1/labels/9"}]`, string(wire["labels"]))
}

func TestEncodeReferableWithoutHrefFails(t *testing.T) {
	workload := &pce.Workload{Labels: []pce.Referable{&pce.Label{Key: "env", Value: "prod"}}}

	_, err := pce.Marshal(workload)
	require.ErrorIs(t, err, pce.ErrMissingHref)
}

func TestDecodeIngressServiceUnion(t *testing.T) {
	raw := []byte(`{
		"ingress_services": [
			{"href": "/orgs/1/sec_policy/draft/services/1"},
			{"port": 443, "proto": 6},
			{"name": "Web", "href": "/orgs/1/sec_policy/draft/services/2", "service_ports": [{"port": 80, "proto": 6}]},
			"/orgs/1/sec_policy/draft/services/3"
		]
	}`)

	rule := &pce.Rule{}
	require.NoError(t, pce.Decode(json.RawMessage(raw), rule))
	require.Len(t, rule.IngressServices, 4)

	ref, ok := rule.IngressServices[0].(*pce.Reference)
	require.True(t, ok, "lone href decodes as a reference")
	assert.Equal(t, "/orgs/1/sec_policy/draft/services/1", ref.Href)

	port, ok := rule.IngressServices[1].(*pce.ServicePort)
	require.True(t, ok, "port and proto decode as a service port")
	require.NotNil(t, port.Port)
	assert.Equal(t, 443, *port.Port)
	assert.Equal(t, 6, port.Proto)

	service, ok := rule.IngressServices[2].(*pce.Service)
	require.True(t, ok, "named object decodes as a full service")
	assert.Equal(t, "Web", service.Name)
	require.Len(t, service.ServicePorts, 1)

	strRef, ok := rule.IngressServices[3].(*pce.Reference)
	require.True(t, ok, "a bare string decodes as a reference")
	assert.Equal(t, "/orgs/1/sec_policy/draft/services/3", strRef.Href)
}

func TestValidateRejectsForeignUnionMember(t *testing.T) {
	rule := &pce.Rule{
		IngressServices: []pce.IngressService{&pce.Workload{Hostname: "not-a-service"}},
	}

	err := pce.Validate(rule)
	require.Error(t, err)

	validationErr := &pce.ValidationError{}
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "ingress_services", validationErr.Field)
}

func TestLabelSetWireFormat(t *testing.T) {
	ruleset := &pce.Ruleset{
		Scopes: []*pce.LabelSet{{
			Labels:      []*pce.Reference{{Href: "/orgs/1/labels/1"}},
			LabelGroups: []*pce.Reference{{Href: "/orgs/1/sec_policy/draft/label_groups/2"}},
		}},
	}

	encoded, err := pce.Marshal(ruleset)
	require.NoError(t, err)

	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(encoded, &wire))
	assert.JSONEq(t, `[[
		{"label": {"href": "/orgs/1/labels/1"}},
		{"label_group": {"href": "/orgs/1/sec_policy/draft/label_groups/2"}}
	]]`, string(wire["scopes"]))

	decoded := &pce.Ruleset{}
	require.NoError(t, pce.Decode(json.RawMessage(encoded), decoded))
	require.Len(t, decoded.Scopes, 1)
	require.Len(t, decoded.Scopes[0].Labels, 1)
	assert.Equal(t, "/orgs/1/labels/1", decoded.Scopes[0].Labels[0].Href)
	require.Len(t, decoded.Scopes[0].LabelGroups, 1)
}

func TestLimitWireFormat(t *testing.T) {
	unlimited := pce.UnlimitedUses()
	encoded, err := unlimited.EncodeObject()
	require.NoError(t, err)
	assert.Equal(t, "unlimited", encoded)

	counted := pce.UsesLimit(25)
	encoded, err = counted.EncodeObject()
	require.NoError(t, err)
	assert.Equal(t, 25, encoded)

	profile := &pce.PairingProfile{}
	require.NoError(t, pce.Decode(json.RawMessage(`{
		"allowed_uses_per_key": "unlimited",
		"key_lifespan": 604800
	}`), profile))

	require.NotNil(t, profile.AllowedUsesPerKey)
	assert.True(t, profile.AllowedUsesPerKey.Unlimited)
	require.NotNil(t, profile.KeyLifespan)
	assert.Equal(t, 604800, profile.KeyLifespan.Count)
}

func TestActorWireFormat(t *testing.T) {
	rule := &pce.Rule{
		Providers: []*pce.Actor{pce.AllWorkloads()},
		Consumers: []*pce.Actor{{IPList: &pce.Reference{Href: "/orgs/1/sec_policy/draft/ip_lists/1"}}},
	}

	encoded, err := pce.Marshal(rule)
	require.NoError(t, err)

	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(encoded, &wire))
	assert.JSONEq(t, `[{"actors": "ams"}]`, string(wire["providers"]))
	assert.JSONEq(t, `[{"ip_list": {"href": "/orgs/1/sec_policy/draft/ip_lists/1"}}]`, string(wire["consumers"]))

	decoded := &pce.Rule{}
	require.NoError(t, pce.Decode(json.RawMessage(encoded), decoded))
	require.Len(t, decoded.Providers, 1)
	require.NotNil(t, decoded.Providers[0].AMS)
	assert.True(t, *decoded.Providers[0].AMS)
	require.Len(t, decoded.Consumers, 1)
	require.NotNil(t, decoded.Consumers[0].IPList)
}
