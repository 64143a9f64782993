package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/illumio-labs/pce-go/internal/constants"
	internalhttp "github.com/illumio-labs/pce-go/internal/http"
	"github.com/illumio-labs/pce-go/pkg/pce"
)

// Client implements pce.Client over the shared transport. Typed
// resource APIs are initialized once at construction.
type Client struct {
	httpClient *internalhttp.Client
	orgID      int
	jobs       *JobPoller

	labels                *API[pce.Label]
	labelGroups           *API[pce.LabelGroup]
	ipLists               *API[pce.IPList]
	services              *API[pce.Service]
	virtualServices       *API[pce.VirtualService]
	serviceBindings       *API[pce.ServiceBinding]
	rulesets              *API[pce.Ruleset]
	rules                 *API[pce.Rule]
	enforcementBoundaries *API[pce.EnforcementBoundary]
	firewallSettings      *API[pce.FirewallSettings]
	workloads             *API[pce.Workload]
	pairingProfiles       *API[pce.PairingProfile]
	vens                  *API[pce.VEN]
	events                *API[pce.Event]
	users                 *API[pce.User]
}

// New builds a client scoped to one organization.
func New(httpClient *internalhttp.Client, orgID int) (*Client, error) {
	c := &Client{
		httpClient: httpClient,
		orgID:      orgID,
		jobs:       NewJobPoller(httpClient),
	}

	var err error

	if c.labels, err = newAPI[pce.Label](c, pce.ResourceLabels); err != nil {
		return nil, err
	}

	if c.labelGroups, err = newAPI[pce.LabelGroup](c, pce.ResourceLabelGroups); err != nil {
		return nil, err
	}

	if c.ipLists, err = newAPI[pce.IPList](c, pce.ResourceIPLists); err != nil {
		return nil, err
	}

	if c.services, err = newAPI[pce.Service](c, pce.ResourceServices); err != nil {
		return nil, err
	}

	if c.virtualServices, err = newAPI[pce.VirtualService](c, pce.ResourceVirtualServices); err != nil {
		return nil, err
	}

	if c.serviceBindings, err = newAPI[pce.ServiceBinding](c, pce.ResourceServiceBindings); err != nil {
		return nil, err
	}

	if c.rulesets, err = newAPI[pce.Ruleset](c, pce.ResourceRulesets); err != nil {
		return nil, err
	}

	if c.rules, err = newAPI[pce.Rule](c, pce.ResourceRules); err != nil {
		return nil, err
	}

	if c.enforcementBoundaries, err = newAPI[pce.EnforcementBoundary](c, pce.ResourceEnforcementBoundaries); err != nil {
		return nil, err
	}

	if c.firewallSettings, err = newAPI[pce.FirewallSettings](c, pce.ResourceFirewallSettings); err != nil {
		return nil, err
	}

	if c.workloads, err = newAPI[pce.Workload](c, pce.ResourceWorkloads); err != nil {
		return nil, err
	}

	if c.pairingProfiles, err = newAPI[pce.PairingProfile](c, pce.ResourcePairingProfiles); err != nil {
		return nil, err
	}

	if c.vens, err = newAPI[pce.VEN](c, pce.ResourceVENs); err != nil {
		return nil, err
	}

	if c.events, err = newAPI[pce.Event](c, pce.ResourceEvents); err != nil {
		return nil, err
	}

	if c.users, err = newAPI[pce.User](c, pce.ResourceUsers); err != nil {
		return nil, err
	}

	return c, nil
}

func newAPI[T any](c *Client, name string) (*API[T], error) {
	resource, err := c.resourceClient(name)
	if err != nil {
		return nil, err
	}

	return NewAPI[T](resource), nil
}

func (c *Client) resourceClient(name string) (*ResourceClient, error) {
	desc, err := pce.Lookup(name)
	if err != nil {
		return nil, err
	}

	return NewResourceClient(c.httpClient, desc, c.orgID, c.jobs), nil
}

func (c *Client) Labels() pce.ResourceAPI[pce.Label]               { return c.labels }
func (c *Client) LabelGroups() pce.ResourceAPI[pce.LabelGroup]     { return c.labelGroups }
func (c *Client) IPLists() pce.ResourceAPI[pce.IPList]             { return c.ipLists }
func (c *Client) Services() pce.ResourceAPI[pce.Service]           { return c.services }
func (c *Client) VirtualServices() pce.ResourceAPI[pce.VirtualService] {
	return c.virtualServices
}
func (c *Client) ServiceBindings() pce.ResourceAPI[pce.ServiceBinding] {
	return c.serviceBindings
}
func (c *Client) Rulesets() pce.ResourceAPI[pce.Ruleset] { return c.rulesets }
func (c *Client) Rules() pce.ResourceAPI[pce.Rule]       { return c.rules }
func (c *Client) EnforcementBoundaries() pce.ResourceAPI[pce.EnforcementBoundary] {
	return c.enforcementBoundaries
}
func (c *Client) FirewallSettings() pce.ResourceAPI[pce.FirewallSettings] {
	return c.firewallSettings
}
func (c *Client) Workloads() pce.ResourceAPI[pce.Workload] { return c.workloads }
func (c *Client) PairingProfiles() pce.ResourceAPI[pce.PairingProfile] {
	return c.pairingProfiles
}
func (c *Client) VENs() pce.ResourceAPI[pce.VEN]     { return c.vens }
func (c *Client) Events() pce.ResourceAPI[pce.Event] { return c.events }
func (c *Client) Users() pce.ResourceAPI[pce.User]   { return c.users }

// Resource returns the untyped API for any registered resource name.
func (c *Client) Resource(name string) (pce.GenericAPI, error) {
	resource, err := c.resourceClient(name)
	if err != nil {
		return nil, err
	}

	return &genericAPI{resource: resource}, nil
}

// OrgID returns the organization the client is scoped to.
func (c *Client) OrgID() int {
	return c.orgID
}

// CheckConnection verifies reachability and credentials with a GET to
// the node health endpoint, which lives outside any organization.
func (c *Client) CheckConnection(ctx context.Context) error {
	_, err := c.httpClient.Get(ctx, "/health", nil)
	if err != nil {
		return fmt.Errorf("checking PCE connection: %w", err)
	}

	return nil
}

// ProvisionPolicyChanges promotes the draft objects named by hrefs to
// the active policy version in a single commit.
func (c *Client) ProvisionPolicyChanges(ctx context.Context, commitMessage string, hrefs []string) (*pce.SecurityPolicy, error) {
	changeset, err := buildChangeset(hrefs)
	if err != nil {
		return nil, err
	}

	encoded, err := pce.Encode(changeset)
	if err != nil {
		return nil, fmt.Errorf("provisioning policy changes: %w", err)
	}

	body := map[string]any{
		"update_description": commitMessage,
		"change_subset":      encoded,
	}

	resp, err := c.httpClient.Post(ctx, fmt.Sprintf("/orgs/%d/sec_policy", c.orgID), body)
	if err != nil {
		return nil, fmt.Errorf("provisioning policy changes: %w", err)
	}

	policy := &pce.SecurityPolicy{}

	err = pce.Decode(json.RawMessage(resp.Body), policy)
	if err != nil {
		return nil, fmt.Errorf("provisioning policy changes: %w", err)
	}

	return policy, nil
}

// buildChangeset sorts draft HREFs into the per-type slots of a
// changeset. Active HREFs are coerced to draft first.
func buildChangeset(hrefs []string) (*pce.PolicyChangeset, error) {
	changeset := &pce.PolicyChangeset{}

	for _, href := range hrefs {
		draft := pce.DraftHref(href)

		parsed, err := pce.ParseHref(draft)
		if err != nil {
			return nil, fmt.Errorf("building changeset: %w", err)
		}

		ref := &pce.Reference{Href: draft}

		switch parsed.ResourceType {
		case pce.ResourceLabelGroups:
			changeset.LabelGroups = append(changeset.LabelGroups, ref)
		case pce.ResourceServices:
			changeset.Services = append(changeset.Services, ref)
		case pce.ResourceRulesets:
			changeset.RuleSets = append(changeset.RuleSets, ref)
		case pce.ResourceIPLists:
			changeset.IPLists = append(changeset.IPLists, ref)
		case pce.ResourceVirtualServices:
			changeset.VirtualServices = append(changeset.VirtualServices, ref)
		case pce.ResourceFirewallSettings:
			changeset.FirewallSettings = append(changeset.FirewallSettings, ref)
		case pce.ResourceEnforcementBoundaries:
			changeset.EnforcementBoundaries = append(changeset.EnforcementBoundaries, ref)
		case "virtual_servers":
			changeset.VirtualServers = append(changeset.VirtualServers, ref)
		case "secure_connect_gateways":
			changeset.SecureConnectGateways = append(changeset.SecureConnectGateways, ref)
		default:
			return nil, fmt.Errorf("building changeset: %q is not provisionable: %w", href, pce.ErrInvalidHref)
		}
	}

	return changeset, nil
}

// GetTrafficFlows runs a traffic analysis query synchronously.
func (c *Client) GetTrafficFlows(ctx context.Context, query *pce.TrafficQuery) ([]*pce.TrafficFlow, error) {
	resp, err := c.httpClient.Post(ctx, fmt.Sprintf("/orgs/%d/traffic_flows/traffic_analysis_queries", c.orgID), query)
	if err != nil {
		return nil, fmt.Errorf("querying traffic flows: %w", err)
	}

	return decodeFlows(resp.Body)
}

// GetTrafficFlowsAsync submits the query as an async job and polls
// until the result download is ready.
func (c *Client) GetTrafficFlowsAsync(ctx context.Context, query *pce.TrafficQuery) ([]*pce.TrafficFlow, error) {
	body, err := c.jobs.RunQuery(ctx, fmt.Sprintf("/orgs/%d/traffic_flows/async_queries", c.orgID), query)
	if err != nil {
		return nil, fmt.Errorf("querying traffic flows: %w", err)
	}

	return decodeFlows(body)
}

func decodeFlows(body []byte) ([]*pce.TrafficFlow, error) {
	var items []json.RawMessage

	err := json.Unmarshal(body, &items)
	if err != nil {
		return nil, fmt.Errorf("decoding traffic flows: %w", err)
	}

	flows := make([]*pce.TrafficFlow, 0, len(items))

	for _, item := range items {
		flow := &pce.TrafficFlow{}

		err := pce.Decode(item, flow)
		if err != nil {
			return nil, fmt.Errorf("decoding traffic flow: %w", err)
		}

		flows = append(flows, flow)
	}

	return flows, nil
}

// GeneratePairingKey mints an activation code from a pairing profile.
func (c *Client) GeneratePairingKey(ctx context.Context, profile pce.Referable) (string, error) {
	if profile == nil || profile.Ref() == nil || profile.Ref().Href == "" {
		return "", fmt.Errorf("generating pairing key: %w", pce.ErrMissingHref)
	}

	resp, err := c.httpClient.Post(ctx, profile.Ref().Href+"/pairing_key", map[string]any{})
	if err != nil {
		return "", fmt.Errorf("generating pairing key: %w", err)
	}

	var key pce.PairingKey

	err = json.Unmarshal(resp.Body, &key)
	if err != nil {
		return "", fmt.Errorf("generating pairing key: %w", err)
	}

	return key.ActivationCode, nil
}

// UpdateWorkloadEnforcement bulk-moves workloads to an enforcement
// mode, returning per-workload results in input order.
func (c *Client) UpdateWorkloadEnforcement(ctx context.Context, mode pce.EnforcementMode, workloads ...pce.Referable) ([]pce.BulkResult, error) {
	items := make([]any, 0, len(workloads))

	for _, workload := range workloads {
		if workload == nil || workload.Ref() == nil || workload.Ref().Href == "" {
			return nil, fmt.Errorf("updating workload enforcement: %w", pce.ErrMissingHref)
		}

		items = append(items, map[string]any{
			"href":             workload.Ref().Href,
			"enforcement_mode": mode,
		})
	}

	resource, err := c.resourceClient(pce.ResourceWorkloads)
	if err != nil {
		return nil, err
	}

	return resource.Bulk(ctx, "update", items)
}

// DefaultIPList fetches the built-in global "any" IP list every
// organization carries.
func (c *Client) DefaultIPList(ctx context.Context) (*pce.IPList, error) {
	lists, err := c.ipLists.List(ctx, pce.ListOptions{
		Version: pce.PolicyActive,
		Params:  pce.Params{"name": constants.AnyIPListName},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching default IP list: %w", err)
	}

	for _, list := range lists {
		if list.Name == constants.AnyIPListName {
			return list, nil
		}
	}

	return nil, fmt.Errorf("fetching default IP list: %w", pce.ErrObjectNotFound)
}
