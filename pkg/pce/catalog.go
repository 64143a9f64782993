package pce

import "reflect"

// Resource name constants, matching the PCE collection path segments.
const (
	ResourceLabels                = "labels"
	ResourceLabelGroups           = "label_groups"
	ResourceIPLists               = "ip_lists"
	ResourceServices              = "services"
	ResourceVirtualServices       = "virtual_services"
	ResourceServiceBindings       = "service_bindings"
	ResourceRulesets              = "rule_sets"
	ResourceRules                 = "sec_rules"
	ResourceEnforcementBoundaries = "enforcement_boundaries"
	ResourceFirewallSettings      = "firewall_settings"
	ResourceWorkloads             = "workloads"
	ResourcePairingProfiles       = "pairing_profiles"
	ResourceVENs                  = "vens"
	ResourceEvents                = "events"
	ResourceUsers                 = "users"
)

//nolint:gochecknoinits // the resource catalog is registered at package load
func init() {
	RegisterUnion((*IngressService)(nil), Reference{}, ServicePort{}, Service{})

	for _, desc := range []Descriptor{
		{Name: ResourceLabels, Type: reflect.TypeOf(Label{})},
		{Name: ResourceLabelGroups, Type: reflect.TypeOf(LabelGroup{}), SecPolicy: true},
		{Name: ResourceIPLists, Type: reflect.TypeOf(IPList{}), SecPolicy: true},
		{Name: ResourceServices, Type: reflect.TypeOf(Service{}), SecPolicy: true},
		{Name: ResourceVirtualServices, Type: reflect.TypeOf(VirtualService{}), SecPolicy: true},
		{Name: ResourceServiceBindings, Type: reflect.TypeOf(ServiceBinding{})},
		{Name: ResourceRulesets, Type: reflect.TypeOf(Ruleset{}), SecPolicy: true},
		{Name: ResourceRules, Type: reflect.TypeOf(Rule{}), SecPolicy: true, Parented: true},
		{Name: ResourceEnforcementBoundaries, Type: reflect.TypeOf(EnforcementBoundary{}), SecPolicy: true},
		{Name: ResourceFirewallSettings, Type: reflect.TypeOf(FirewallSettings{}), SecPolicy: true},
		{Name: ResourceWorkloads, Type: reflect.TypeOf(Workload{})},
		{Name: ResourcePairingProfiles, Type: reflect.TypeOf(PairingProfile{})},
		{Name: ResourceVENs, Type: reflect.TypeOf(VEN{})},
		{Name: ResourceEvents, Type: reflect.TypeOf(Event{})},
		{Name: ResourceUsers, Type: reflect.TypeOf(User{}), Global: true},
	} {
		Register(desc)
	}
}
