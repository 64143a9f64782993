package pce

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// EnforcementMode controls how strictly policy is applied to a workload.
type EnforcementMode string

const (
	EnforcementIdle           EnforcementMode = "idle"
	EnforcementVisibilityOnly EnforcementMode = "visibility_only"
	EnforcementSelective      EnforcementMode = "selective"
	EnforcementFull           EnforcementMode = "full"
)

// VisibilityLevel controls how much traffic telemetry a VEN reports.
type VisibilityLevel string

const (
	VisibilityFlowSummary        VisibilityLevel = "flow_summary"
	VisibilityFlowDrops          VisibilityLevel = "flow_drops"
	VisibilityFlowOff            VisibilityLevel = "flow_off"
	VisibilityEnhancedDataCollec VisibilityLevel = "enhanced_data_collection"
)

// LinkState is the reported state of a workload network interface.
type LinkState string

const (
	LinkStateUp      LinkState = "up"
	LinkStateDown    LinkState = "down"
	LinkStateUnknown LinkState = "unknown"
)

// PolicyDecision classifies an observed traffic flow against policy.
type PolicyDecision string

const (
	DecisionAllowed            PolicyDecision = "allowed"
	DecisionBlocked            PolicyDecision = "blocked"
	DecisionPotentiallyBlocked PolicyDecision = "potentially_blocked"
	DecisionUnknown            PolicyDecision = "unknown"
)

// FlowDirection is the direction of an observed traffic flow relative
// to the reporting workload.
type FlowDirection string

const (
	FlowInbound  FlowDirection = "inbound"
	FlowOutbound FlowDirection = "outbound"
)

// Label is a key/value dimension attached to workloads and used in
// policy scopes. Label keys are one of role, app, env, and loc by
// default.
type Label struct {
	PCEObject `yaml:",inline"`

	Key     string `json:"key,omitempty"     yaml:"key,omitempty"`
	Value   string `json:"value,omitempty"   yaml:"value,omitempty"`
	Deleted *bool  `json:"deleted,omitempty" yaml:"deleted,omitempty"`
}

// LabelGroup is a named set of labels (and nested groups) usable
// anywhere a single label is.
type LabelGroup struct {
	MutableObject `yaml:",inline"`

	Key       string       `json:"key,omitempty"        yaml:"key,omitempty"`
	Labels    []*Label     `json:"labels,omitempty"     yaml:"labels,omitempty"`
	SubGroups []*Reference `json:"sub_groups,omitempty" yaml:"sub_groups,omitempty"`
	Usage     Extra        `json:"usage,omitempty"      yaml:"usage,omitempty"`
}

// LabelSet is an unordered set of label and label group references, as
// used in rule set scopes and rule actors. Its wire form is an array of
// single-key wrapper objects, not a struct, so it carries its own
// codec.
type LabelSet struct {
	Labels      []*Reference
	LabelGroups []*Reference
	Exclusions  []*Reference
}

// EncodeObject implements ObjectEncoder. Each member is wrapped as
// {"label": {"href": ...}} or {"label_group": {"href": ...}};
// exclusions additionally carry "exclusion": true.
func (s *LabelSet) EncodeObject() (any, error) {
	out := make([]any, 0, len(s.Labels)+len(s.LabelGroups)+len(s.Exclusions))

	for _, label := range s.Labels {
		out = append(out, map[string]any{"label": map[string]any{"href": label.Href}})
	}

	for _, group := range s.LabelGroups {
		out = append(out, map[string]any{"label_group": map[string]any{"href": group.Href}})
	}

	for _, excluded := range s.Exclusions {
		out = append(out, map[string]any{
			"label":     map[string]any{"href": excluded.Href},
			"exclusion": true,
		})
	}

	return out, nil
}

// DecodeObject implements ObjectDecoder.
func (s *LabelSet) DecodeObject(data json.RawMessage) error {
	var entries []struct {
		Label      *Reference `json:"label"`
		LabelGroup *Reference `json:"label_group"`
		Exclusion  bool       `json:"exclusion"`
	}

	err := json.Unmarshal(data, &entries)
	if err != nil {
		return fmt.Errorf("decoding label set: %w", err)
	}

	*s = LabelSet{}

	for _, entry := range entries {
		switch {
		case entry.Exclusion && entry.Label != nil:
			s.Exclusions = append(s.Exclusions, entry.Label)
		case entry.Label != nil:
			s.Labels = append(s.Labels, entry.Label)
		case entry.LabelGroup != nil:
			s.LabelGroups = append(s.LabelGroups, entry.LabelGroup)
		}
	}

	return nil
}

// IPRange is one address range of an IP list. A range with Exclusion
// set subtracts from the list instead of adding to it.
type IPRange struct {
	FromIP      string `json:"from_ip,omitempty"     yaml:"from_ip,omitempty"`
	ToIP        string `json:"to_ip,omitempty"       yaml:"to_ip,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Exclusion   bool   `json:"exclusion,omitempty"   yaml:"exclusion,omitempty"`
}

// FQDN is a fully qualified domain name entry of an IP list.
type FQDN struct {
	FQDN        string `json:"fqdn,omitempty"        yaml:"fqdn,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// IPList is a versioned security policy object naming a set of IP
// ranges and FQDNs.
type IPList struct {
	MutableObject `yaml:",inline"`

	IPRanges []IPRange `json:"ip_ranges,omitempty" yaml:"ip_ranges,omitempty"`
	FQDNs    []FQDN    `json:"fqdns,omitempty"     yaml:"fqdns,omitempty"`
}

// ServicePort is a single port/protocol entry. Proto uses IANA protocol
// numbers; ToPort closes a range opened by Port.
type ServicePort struct {
	Port     *int `json:"port,omitempty"      yaml:"port,omitempty"`
	ToPort   *int `json:"to_port,omitempty"   yaml:"to_port,omitempty"`
	Proto    int  `json:"proto"               yaml:"proto"`
	ICMPType *int `json:"icmp_type,omitempty" yaml:"icmp_type,omitempty"`
	ICMPCode *int `json:"icmp_code,omitempty" yaml:"icmp_code,omitempty"`
}

func (*ServicePort) ingressService() {}

// WindowsService identifies a Windows service or process a Service may
// match instead of ports.
type WindowsService struct {
	ServiceName string `json:"service_name,omitempty" yaml:"service_name,omitempty"`
	ProcessName string `json:"process_name,omitempty" yaml:"process_name,omitempty"`
	Port        *int   `json:"port,omitempty"         yaml:"port,omitempty"`
	ToPort      *int   `json:"to_port,omitempty"      yaml:"to_port,omitempty"`
	Proto       int    `json:"proto,omitempty"        yaml:"proto,omitempty"`
}

// Service is a named, versioned security policy object grouping
// port/protocol and Windows service entries.
type Service struct {
	MutableObject `yaml:",inline"`

	ServicePorts    []ServicePort    `json:"service_ports,omitempty"    yaml:"service_ports,omitempty"`
	WindowsServices []WindowsService `json:"windows_services,omitempty" yaml:"windows_services,omitempty"`
	ProcessName     string           `json:"process_name,omitempty"     yaml:"process_name,omitempty"`
}

func (*Service) ingressService() {}
func (*Reference) ingressService() {}

// IngressService is the service slot of a rule or enforcement boundary.
// The PCE accepts a reference to a Service, an inline ServicePort, or a
// bare HREF; decoding picks the member by shape.
type IngressService interface {
	ingressService()
}

// ServiceAddress is a literal address entry of a virtual service.
type ServiceAddress struct {
	IP          string `json:"ip,omitempty"           yaml:"ip,omitempty"`
	FQDN        string `json:"fqdn,omitempty"         yaml:"fqdn,omitempty"`
	Network     *Reference `json:"network,omitempty"  yaml:"network,omitempty"`
	Port        *int   `json:"port,omitempty"         yaml:"port,omitempty"`
	Description string `json:"description,omitempty"  yaml:"description,omitempty"`
}

// VirtualService is a versioned policy object representing a service
// endpoint decoupled from any single workload.
type VirtualService struct {
	MutableObject `yaml:",inline"`

	ApplyTo          string           `json:"apply_to,omitempty"          yaml:"apply_to,omitempty"`
	PCEFQDN          string           `json:"pce_fqdn,omitempty"          yaml:"pce_fqdn,omitempty"`
	ServicePorts     []ServicePort    `json:"service_ports,omitempty"     yaml:"service_ports,omitempty"`
	ServiceAddresses []ServiceAddress `json:"service_addresses,omitempty" yaml:"service_addresses,omitempty"`
	IPOverrides      []string         `json:"ip_overrides,omitempty"      yaml:"ip_overrides,omitempty"`
	Labels           []Referable      `json:"labels,omitempty"            yaml:"labels,omitempty"`
	Service          *Reference       `json:"service,omitempty"           yaml:"service,omitempty"`
}

// PortOverride remaps one virtual service port for a single binding.
type PortOverride struct {
	Port    *int `json:"port,omitempty"     yaml:"port,omitempty"`
	Proto   int  `json:"proto,omitempty"    yaml:"proto,omitempty"`
	NewPort *int `json:"new_port,omitempty" yaml:"new_port,omitempty"`
}

// ServiceBinding attaches a workload to a virtual service. Bindings are
// immutable and not versioned.
type ServiceBinding struct {
	Reference `yaml:",inline"`

	VirtualService Referable      `json:"virtual_service,omitempty" yaml:"virtual_service,omitempty"`
	Workload       Referable      `json:"workload,omitempty"        yaml:"workload,omitempty"`
	PortOverrides  []PortOverride `json:"port_overrides,omitempty"  yaml:"port_overrides,omitempty"`

	Extra Extra `json:"-" yaml:"-"`
}

// Interface is a network interface reported for a workload.
type Interface struct {
	Name                  string    `json:"name,omitempty"                    yaml:"name,omitempty"`
	Address               string    `json:"address,omitempty"                 yaml:"address,omitempty"`
	CIDRBlock             *int      `json:"cidr_block,omitempty"              yaml:"cidr_block,omitempty"`
	DefaultGatewayAddress string    `json:"default_gateway_address,omitempty" yaml:"default_gateway_address,omitempty"`
	LinkState             LinkState `json:"link_state,omitempty"              yaml:"link_state,omitempty"`
	Network               *Reference `json:"network,omitempty"                yaml:"network,omitempty"`
	FriendlyName          string    `json:"friendly_name,omitempty"           yaml:"friendly_name,omitempty"`
}

// OpenServicePort is a listening port observed on a workload.
type OpenServicePort struct {
	Protocol      int    `json:"protocol,omitempty"        yaml:"protocol,omitempty"`
	Address       string `json:"address,omitempty"         yaml:"address,omitempty"`
	Port          int    `json:"port,omitempty"            yaml:"port,omitempty"`
	ProcessName   string `json:"process_name,omitempty"    yaml:"process_name,omitempty"`
	User          string `json:"user,omitempty"            yaml:"user,omitempty"`
	WinServiceName string `json:"win_service_name,omitempty" yaml:"win_service_name,omitempty"`
}

// WorkloadServices is the observed service inventory of a workload.
type WorkloadServices struct {
	UptimeSeconds    int64             `json:"uptime_seconds,omitempty"     yaml:"uptime_seconds,omitempty"`
	CreatedAt        string            `json:"created_at,omitempty"         yaml:"created_at,omitempty"`
	OpenServicePorts []OpenServicePort `json:"open_service_ports,omitempty" yaml:"open_service_ports,omitempty"`
}

// Workload is a managed or unmanaged host known to the PCE.
type Workload struct {
	MutableObject `yaml:",inline"`

	Hostname              string            `json:"hostname,omitempty"                yaml:"hostname,omitempty"`
	PublicIP              string            `json:"public_ip,omitempty"               yaml:"public_ip,omitempty"`
	DistinguishedName     string            `json:"distinguished_name,omitempty"      yaml:"distinguished_name,omitempty"`
	ServicePrincipalName  string            `json:"service_principal_name,omitempty"  yaml:"service_principal_name,omitempty"`
	DataCenter            string            `json:"data_center,omitempty"             yaml:"data_center,omitempty"`
	DataCenterZone        string            `json:"data_center_zone,omitempty"        yaml:"data_center_zone,omitempty"`
	OSID                  string            `json:"os_id,omitempty"                   yaml:"os_id,omitempty"`
	OSDetail              string            `json:"os_detail,omitempty"               yaml:"os_detail,omitempty"`
	Online                *bool             `json:"online,omitempty"                  yaml:"online,omitempty"`
	Deleted               *bool             `json:"deleted,omitempty"                 yaml:"deleted,omitempty"`
	Labels                []Referable       `json:"labels,omitempty"                  yaml:"labels,omitempty"`
	Interfaces            []Interface       `json:"interfaces,omitempty"              yaml:"interfaces,omitempty"`
	IgnoredInterfaceNames []string          `json:"ignored_interface_names,omitempty" yaml:"ignored_interface_names,omitempty"`
	Services              *WorkloadServices `json:"services,omitempty"                yaml:"services,omitempty"`
	EnforcementMode       EnforcementMode   `json:"enforcement_mode,omitempty"        yaml:"enforcement_mode,omitempty"`
	VisibilityLevel       VisibilityLevel   `json:"visibility_level,omitempty"        yaml:"visibility_level,omitempty"`
	VEN                   *Reference        `json:"ven,omitempty"                     yaml:"ven,omitempty"`
	AgentToPCETLSCheck    *bool             `json:"agent_to_pce_single_conn,omitempty" yaml:"agent_to_pce_single_conn,omitempty"`
}

// Limit is a pairing profile usage limit: either a concrete count or
// the string "unlimited". Its wire form is not a struct, so it carries
// its own codec.
type Limit struct {
	Unlimited bool
	Count     int
}

// UnlimitedUses is the Limit allowing unbounded key usage.
func UnlimitedUses() Limit { return Limit{Unlimited: true} }

// UsesLimit is a Limit of exactly n uses.
func UsesLimit(n int) Limit { return Limit{Count: n} }

// EncodeObject implements ObjectEncoder.
func (l *Limit) EncodeObject() (any, error) {
	if l.Unlimited {
		return "unlimited", nil
	}

	return l.Count, nil
}

// DecodeObject implements ObjectDecoder.
func (l *Limit) DecodeObject(data json.RawMessage) error {
	text := string(data)
	if text == `"unlimited"` {
		*l = Limit{Unlimited: true}

		return nil
	}

	count, err := strconv.Atoi(text)
	if err != nil {
		return fmt.Errorf("decoding usage limit %s: %w", text, err)
	}

	*l = Limit{Count: count}

	return nil
}

// PairingProfile configures how pairing keys enroll new workloads.
type PairingProfile struct {
	MutableObject `yaml:",inline"`

	Enabled              *bool           `json:"enabled,omitempty"               yaml:"enabled,omitempty"`
	EnforcementMode      EnforcementMode `json:"enforcement_mode,omitempty"      yaml:"enforcement_mode,omitempty"`
	EnforcementModeLock  *bool           `json:"enforcement_mode_lock,omitempty" yaml:"enforcement_mode_lock,omitempty"`
	VisibilityLevel      VisibilityLevel `json:"visibility_level,omitempty"      yaml:"visibility_level,omitempty"`
	VisibilityLevelLock  *bool           `json:"visibility_level_lock,omitempty" yaml:"visibility_level_lock,omitempty"`
	AllowedUsesPerKey    *Limit          `json:"allowed_uses_per_key,omitempty"  yaml:"allowed_uses_per_key,omitempty"`
	KeyLifespan          *Limit          `json:"key_lifespan,omitempty"          yaml:"key_lifespan,omitempty"`
	Labels               []Referable     `json:"labels,omitempty"                yaml:"labels,omitempty"`
	RoleLabelLock        *bool           `json:"role_label_lock,omitempty"       yaml:"role_label_lock,omitempty"`
	AppLabelLock         *bool           `json:"app_label_lock,omitempty"        yaml:"app_label_lock,omitempty"`
	EnvLabelLock         *bool           `json:"env_label_lock,omitempty"        yaml:"env_label_lock,omitempty"`
	LocLabelLock         *bool           `json:"loc_label_lock,omitempty"        yaml:"loc_label_lock,omitempty"`
	LastPairingAt        string          `json:"last_pairing_at,omitempty"       yaml:"last_pairing_at,omitempty"`
	TotalUseCount        *int            `json:"total_use_count,omitempty"       yaml:"total_use_count,omitempty"`
	IsDefault            *bool           `json:"is_default,omitempty"            yaml:"is_default,omitempty"`
	AgentSoftwareRelease string          `json:"agent_software_release,omitempty" yaml:"agent_software_release,omitempty"`
}

// PairingKey is the activation code minted from a pairing profile.
type PairingKey struct {
	ActivationCode string `json:"activation_code,omitempty" yaml:"activation_code,omitempty"`
}

// Actor is one provider or consumer slot of a rule. Exactly one field
// is set; AMS selects "all managed systems".
type Actor struct {
	AMS            *bool      `json:"-"                         yaml:"-"`
	Label          *Reference `json:"label,omitempty"           yaml:"label,omitempty"`
	LabelGroup     *Reference `json:"label_group,omitempty"     yaml:"label_group,omitempty"`
	Workload       *Reference `json:"workload,omitempty"        yaml:"workload,omitempty"`
	VirtualService *Reference `json:"virtual_service,omitempty" yaml:"virtual_service,omitempty"`
	VirtualServer  *Reference `json:"virtual_server,omitempty"  yaml:"virtual_server,omitempty"`
	IPList         *Reference `json:"ip_list,omitempty"         yaml:"ip_list,omitempty"`
	Exclusion      bool       `json:"exclusion,omitempty"       yaml:"exclusion,omitempty"`
}

// AllWorkloads is the Actor selecting every managed workload in scope.
func AllWorkloads() *Actor {
	ams := true

	return &Actor{AMS: &ams}
}

// EncodeObject implements ObjectEncoder: the AMS slot encodes as the
// sentinel {"actors": "ams"} rather than an object reference.
func (a *Actor) EncodeObject() (any, error) {
	if a.AMS != nil && *a.AMS {
		return map[string]any{"actors": "ams"}, nil
	}

	out := make(map[string]any)

	for key, ref := range map[string]*Reference{
		"label":           a.Label,
		"label_group":     a.LabelGroup,
		"workload":        a.Workload,
		"virtual_service": a.VirtualService,
		"virtual_server":  a.VirtualServer,
		"ip_list":         a.IPList,
	} {
		if ref != nil {
			out[key] = map[string]any{"href": ref.Href}
		}
	}

	if a.Exclusion {
		out["exclusion"] = true
	}

	return out, nil
}

// DecodeObject implements ObjectDecoder.
func (a *Actor) DecodeObject(data json.RawMessage) error {
	var entry struct {
		Actors         string     `json:"actors"`
		Label          *Reference `json:"label"`
		LabelGroup     *Reference `json:"label_group"`
		Workload       *Reference `json:"workload"`
		VirtualService *Reference `json:"virtual_service"`
		VirtualServer  *Reference `json:"virtual_server"`
		IPList         *Reference `json:"ip_list"`
		Exclusion      bool       `json:"exclusion"`
	}

	err := json.Unmarshal(data, &entry)
	if err != nil {
		return fmt.Errorf("decoding rule actor: %w", err)
	}

	*a = Actor{
		Label:          entry.Label,
		LabelGroup:     entry.LabelGroup,
		Workload:       entry.Workload,
		VirtualService: entry.VirtualService,
		VirtualServer:  entry.VirtualServer,
		IPList:         entry.IPList,
		Exclusion:      entry.Exclusion,
	}

	if entry.Actors == "ams" {
		ams := true
		a.AMS = &ams
	}

	return nil
}

// LabelResolutionBlock controls whether rule actors resolve to
// workloads, virtual services, or both.
type LabelResolutionBlock struct {
	Providers []string `json:"providers,omitempty" yaml:"providers,omitempty"`
	Consumers []string `json:"consumers,omitempty" yaml:"consumers,omitempty"`
}

// Rule is a single allow rule inside a rule set.
type Rule struct {
	MutableObject `yaml:",inline"`

	Enabled               *bool                 `json:"enabled,omitempty"                 yaml:"enabled,omitempty"`
	IngressServices       []IngressService      `json:"ingress_services,omitempty"        yaml:"ingress_services,omitempty"`
	Providers             []*Actor              `json:"providers,omitempty"               yaml:"providers,omitempty"`
	Consumers             []*Actor              `json:"consumers,omitempty"               yaml:"consumers,omitempty"`
	ResolveLabelsAs       *LabelResolutionBlock `json:"resolve_labels_as,omitempty"       yaml:"resolve_labels_as,omitempty"`
	SecConnect            *bool                 `json:"sec_connect,omitempty"             yaml:"sec_connect,omitempty"`
	Stateless             *bool                 `json:"stateless,omitempty"               yaml:"stateless,omitempty"`
	MachineAuth           *bool                 `json:"machine_auth,omitempty"            yaml:"machine_auth,omitempty"`
	UnscopedConsumers     *bool                 `json:"unscoped_consumers,omitempty"      yaml:"unscoped_consumers,omitempty"`
	NetworkType           string                `json:"network_type,omitempty"            yaml:"network_type,omitempty"`
	UseWorkloadSubnets    []string              `json:"use_workload_subnets,omitempty"    yaml:"use_workload_subnets,omitempty"`
}

// Ruleset is a versioned container of rules sharing a label scope.
type Ruleset struct {
	MutableObject `yaml:",inline"`

	Enabled *bool       `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	Scopes  []*LabelSet `json:"scopes,omitempty"  yaml:"scopes,omitempty"`
	Rules   []*Rule     `json:"rules,omitempty"   yaml:"rules,omitempty"`
}

// EnforcementBoundary is a versioned deny boundary between two actor
// sets, limited to the named services.
type EnforcementBoundary struct {
	MutableObject `yaml:",inline"`

	Enabled         *bool            `json:"enabled,omitempty"          yaml:"enabled,omitempty"`
	Providers       []*Actor         `json:"providers,omitempty"        yaml:"providers,omitempty"`
	Consumers       []*Actor         `json:"consumers,omitempty"        yaml:"consumers,omitempty"`
	IngressServices []IngressService `json:"ingress_services,omitempty" yaml:"ingress_services,omitempty"`
	NetworkType     string           `json:"network_type,omitempty"     yaml:"network_type,omitempty"`
}

// FirewallSettings is the singleton versioned object holding org-wide
// firewall behavior.
type FirewallSettings struct {
	MutableObject `yaml:",inline"`

	StaticPolicyScopes       []*LabelSet `json:"static_policy_scopes,omitempty"        yaml:"static_policy_scopes,omitempty"`
	FirewallCoexistence      Extra       `json:"firewall_coexistence,omitempty"        yaml:"firewall_coexistence,omitempty"`
	ContainersInheritHostPolicy []*LabelSet `json:"containers_inherit_host_policy_scopes,omitempty" yaml:"containers_inherit_host_policy_scopes,omitempty"`
	BlockedConnectionRejectScopes []*LabelSet `json:"blocked_connection_reject_scopes,omitempty" yaml:"blocked_connection_reject_scopes,omitempty"`
	AllowDHCPClient          *bool       `json:"allow_dhcp_client,omitempty"           yaml:"allow_dhcp_client,omitempty"`
	AllowDHCPServer          *bool       `json:"allow_dhcp_server,omitempty"           yaml:"allow_dhcp_server,omitempty"`
	IKEAuthenticationType    string      `json:"ike_authentication_type,omitempty"     yaml:"ike_authentication_type,omitempty"`
}

// VENCondition is a health condition reported by a VEN.
type VENCondition struct {
	FirstReportedTimestamp string     `json:"first_reported_timestamp,omitempty" yaml:"first_reported_timestamp,omitempty"`
	LatestEvent            *Reference `json:"latest_event,omitempty"             yaml:"latest_event,omitempty"`
}

// VEN is the enforcement agent paired to a workload.
type VEN struct {
	MutableObject `yaml:",inline"`

	Hostname      string         `json:"hostname,omitempty"       yaml:"hostname,omitempty"`
	UID           string         `json:"uid,omitempty"            yaml:"uid,omitempty"`
	Status        string         `json:"status,omitempty"         yaml:"status,omitempty"`
	Version       string         `json:"version,omitempty"        yaml:"version,omitempty"`
	ActivationType string        `json:"activation_type,omitempty" yaml:"activation_type,omitempty"`
	OSID          string         `json:"os_id,omitempty"          yaml:"os_id,omitempty"`
	OSDetail      string         `json:"os_detail,omitempty"      yaml:"os_detail,omitempty"`
	OSPlatform    string         `json:"os_platform,omitempty"    yaml:"os_platform,omitempty"`
	Workloads     []*Reference   `json:"workloads,omitempty"      yaml:"workloads,omitempty"`
	Conditions    []VENCondition `json:"conditions,omitempty"     yaml:"conditions,omitempty"`
	LastHeartbeat string         `json:"last_heartbeat_at,omitempty" yaml:"last_heartbeat_at,omitempty"`
}

// EventNotification is a sub-record of an audit event.
type EventNotification struct {
	UUID    string `json:"uuid,omitempty"    yaml:"uuid,omitempty"`
	Type    string `json:"notification_type,omitempty" yaml:"notification_type,omitempty"`
	Info    Extra  `json:"info,omitempty"    yaml:"info,omitempty"`
}

// Event is an immutable PCE audit event.
type Event struct {
	ImmutableObject `yaml:",inline"`

	EventType     string              `json:"event_type,omitempty"    yaml:"event_type,omitempty"`
	UUID          string              `json:"uuid,omitempty"          yaml:"uuid,omitempty"`
	Severity      string              `json:"severity,omitempty"      yaml:"severity,omitempty"`
	Status        string              `json:"status,omitempty"        yaml:"status,omitempty"`
	Timestamp     string              `json:"timestamp,omitempty"     yaml:"timestamp,omitempty"`
	PCEFQDN       string              `json:"pce_fqdn,omitempty"      yaml:"pce_fqdn,omitempty"`
	Notifications []EventNotification `json:"notifications,omitempty" yaml:"notifications,omitempty"`
	Info          Extra               `json:"info,omitempty"          yaml:"info,omitempty"`
}

// User is a PCE account. Users live outside any organization.
type User struct {
	Reference `yaml:",inline"`

	Username    string `json:"username,omitempty"     yaml:"username,omitempty"`
	FullName    string `json:"full_name,omitempty"    yaml:"full_name,omitempty"`
	DisplayName string `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	Type        string `json:"type,omitempty"         yaml:"type,omitempty"`
	Locked      *bool  `json:"locked,omitempty"       yaml:"locked,omitempty"`
	LastLoginAt string `json:"last_login_on,omitempty" yaml:"last_login_on,omitempty"`

	Extra Extra `json:"-" yaml:"-"`
}

// PolicyChangeset names the draft objects a provision call promotes to
// active. Every slice holds draft HREF references.
type PolicyChangeset struct {
	LabelGroups          []*Reference `json:"label_groups,omitempty"          yaml:"label_groups,omitempty"`
	Services             []*Reference `json:"services,omitempty"              yaml:"services,omitempty"`
	RuleSets             []*Reference `json:"rule_sets,omitempty"             yaml:"rule_sets,omitempty"`
	IPLists              []*Reference `json:"ip_lists,omitempty"              yaml:"ip_lists,omitempty"`
	VirtualServices      []*Reference `json:"virtual_services,omitempty"      yaml:"virtual_services,omitempty"`
	FirewallSettings     []*Reference `json:"firewall_settings,omitempty"     yaml:"firewall_settings,omitempty"`
	EnforcementBoundaries []*Reference `json:"enforcement_boundaries,omitempty" yaml:"enforcement_boundaries,omitempty"`
	VirtualServers       []*Reference `json:"virtual_servers,omitempty"       yaml:"virtual_servers,omitempty"`
	SecureConnectGateways []*Reference `json:"secure_connect_gateways,omitempty" yaml:"secure_connect_gateways,omitempty"`
}

// Empty reports whether the changeset names no objects.
func (c *PolicyChangeset) Empty() bool {
	return len(c.LabelGroups) == 0 && len(c.Services) == 0 && len(c.RuleSets) == 0 &&
		len(c.IPLists) == 0 && len(c.VirtualServices) == 0 && len(c.FirewallSettings) == 0 &&
		len(c.EnforcementBoundaries) == 0 && len(c.VirtualServers) == 0 &&
		len(c.SecureConnectGateways) == 0
}

// SecurityPolicy is the result of provisioning a changeset: a new
// numbered policy version.
type SecurityPolicy struct {
	Reference `yaml:",inline"`

	CommitMessage     string           `json:"commit_message,omitempty"     yaml:"commit_message,omitempty"`
	Version           int              `json:"version,omitempty"            yaml:"version,omitempty"`
	WorkloadsAffected *int             `json:"workloads_affected,omitempty" yaml:"workloads_affected,omitempty"`
	CreatedAt         string           `json:"created_at,omitempty"         yaml:"created_at,omitempty"`
	CreatedBy         *Reference       `json:"created_by,omitempty"         yaml:"created_by,omitempty"`
	ObjectCounts      map[string]int   `json:"object_counts,omitempty"      yaml:"object_counts,omitempty"`
	Changeset         *PolicyChangeset `json:"change_subset,omitempty"      yaml:"change_subset,omitempty"`

	Extra Extra `json:"-" yaml:"-"`
}

// TimestampRange bounds a traffic query or flow observation window.
type TimestampRange struct {
	FirstDetected string `json:"first_detected,omitempty" yaml:"first_detected,omitempty"`
	LastDetected  string `json:"last_detected,omitempty"  yaml:"last_detected,omitempty"`
}

// TrafficQueryActors is one side (sources or destinations) of a traffic
// analysis query.
type TrafficQueryActors struct {
	Include [][]*Actor `json:"include" yaml:"include"`
	Exclude []*Actor   `json:"exclude" yaml:"exclude"`
}

// TrafficQueryService filters traffic flows by port and protocol.
type TrafficQueryService struct {
	Port        *int   `json:"port,omitempty"         yaml:"port,omitempty"`
	Proto       *int   `json:"proto,omitempty"        yaml:"proto,omitempty"`
	ProcessName string `json:"process_name,omitempty" yaml:"process_name,omitempty"`
	WindowsServiceName string `json:"windows_service_name,omitempty" yaml:"windows_service_name,omitempty"`
}

// TrafficQueryServices wraps the service include/exclude lists of a
// traffic query.
type TrafficQueryServices struct {
	Include []TrafficQueryService `json:"include" yaml:"include"`
	Exclude []TrafficQueryService `json:"exclude" yaml:"exclude"`
}

// TrafficQuery is the body of a traffic analysis request. Include and
// exclude lists must be present on the wire even when empty, so the
// slices are serialized without omitempty; NewTrafficQuery returns a
// query with all of them initialized.
type TrafficQuery struct {
	QueryName        string                `json:"query_name,omitempty"       yaml:"query_name,omitempty"`
	Sources          *TrafficQueryActors   `json:"sources"                    yaml:"sources"`
	Destinations     *TrafficQueryActors   `json:"destinations"               yaml:"destinations"`
	Services         *TrafficQueryServices `json:"services"                   yaml:"services"`
	PolicyDecisions  []PolicyDecision      `json:"policy_decisions"           yaml:"policy_decisions"`
	StartDate        string                `json:"start_date,omitempty"       yaml:"start_date,omitempty"`
	EndDate          string                `json:"end_date,omitempty"         yaml:"end_date,omitempty"`
	MaxResults       int                   `json:"max_results,omitempty"      yaml:"max_results,omitempty"`
	ExcludeWorkloads *bool                 `json:"exclude_workloads_from_ip_list_query,omitempty" yaml:"exclude_workloads_from_ip_list_query,omitempty"`
}

// NewTrafficQuery returns a query for the given window with every
// include/exclude list initialized to empty.
func NewTrafficQuery(startDate, endDate string, decisions ...PolicyDecision) *TrafficQuery {
	if decisions == nil {
		decisions = []PolicyDecision{}
	}

	return &TrafficQuery{
		Sources:         &TrafficQueryActors{Include: [][]*Actor{}, Exclude: []*Actor{}},
		Destinations:    &TrafficQueryActors{Include: [][]*Actor{}, Exclude: []*Actor{}},
		Services:        &TrafficQueryServices{Include: []TrafficQueryService{}, Exclude: []TrafficQueryService{}},
		PolicyDecisions: decisions,
		StartDate:       startDate,
		EndDate:         endDate,
	}
}

// TrafficNode is one endpoint of an observed flow.
type TrafficNode struct {
	IP             string     `json:"ip,omitempty"              yaml:"ip,omitempty"`
	Hostname       string     `json:"hostname,omitempty"        yaml:"hostname,omitempty"`
	Workload       *Workload  `json:"workload,omitempty"        yaml:"workload,omitempty"`
	IPLists        []*IPList  `json:"ip_lists,omitempty"        yaml:"ip_lists,omitempty"`
	VirtualService *Reference `json:"virtual_service,omitempty" yaml:"virtual_service,omitempty"`
	FQDN           string     `json:"fqdn,omitempty"            yaml:"fqdn,omitempty"`
}

// TrafficFlowService is the service slot of an observed flow.
type TrafficFlowService struct {
	Port        int    `json:"port,omitempty"         yaml:"port,omitempty"`
	Proto       int    `json:"proto,omitempty"        yaml:"proto,omitempty"`
	ProcessName string `json:"process_name,omitempty" yaml:"process_name,omitempty"`
	Username    string `json:"user_name,omitempty"    yaml:"user_name,omitempty"`
}

// TrafficFlow is a single aggregated traffic observation.
type TrafficFlow struct {
	Src            *TrafficNode        `json:"src,omitempty"             yaml:"src,omitempty"`
	Dst            *TrafficNode        `json:"dst,omitempty"             yaml:"dst,omitempty"`
	Service        *TrafficFlowService `json:"service,omitempty"         yaml:"service,omitempty"`
	NumConnections int64               `json:"num_connections,omitempty" yaml:"num_connections,omitempty"`
	PolicyDecision PolicyDecision      `json:"policy_decision,omitempty" yaml:"policy_decision,omitempty"`
	FlowDirection  FlowDirection       `json:"flow_direction,omitempty"  yaml:"flow_direction,omitempty"`
	State          string              `json:"state,omitempty"           yaml:"state,omitempty"`
	TimestampRange *TimestampRange     `json:"timestamp_range,omitempty" yaml:"timestamp_range,omitempty"`

	Extra Extra `json:"-" yaml:"-"`
}
