package pce

import (
	"encoding/json"
	"strings"
)

// PolicyVersion selects between the two parallel versions of security
// policy objects. Writes always target draft; provisioning promotes
// draft objects to active.
type PolicyVersion string

const (
	// PolicyDraft is the editable version of security policy objects.
	PolicyDraft PolicyVersion = "draft"

	// PolicyActive is the provisioned version of security policy objects.
	PolicyActive PolicyVersion = "active"
)

const (
	draftSegment  = "/draft/"
	activeSegment = "/active/"
)

// DraftHref rewrites an active policy HREF to its draft form. Non-policy
// HREFs are returned unchanged.
func DraftHref(href string) string {
	return strings.ReplaceAll(href, activeSegment, draftSegment)
}

// ActiveHref rewrites a draft policy HREF to its active form. Non-policy
// HREFs are returned unchanged.
func ActiveHref(href string) string {
	return strings.ReplaceAll(href, draftSegment, activeSegment)
}

// Reference is the minimal identity of any PCE object: a single opaque
// path-style identifier. References are compared by HREF equality.
type Reference struct {
	Href string `json:"href,omitempty" yaml:"href,omitempty"`
}

// Ref implements Referable.
func (r *Reference) Ref() *Reference { return r }

// Referable is implemented by every object that carries an HREF,
// including Reference itself. Fields declared as Referable (or a slice
// of Referable) accept any PCE object but are flattened to the bare
// HREF on encode.
type Referable interface {
	Ref() *Reference
}

// Extra holds server-provided fields unknown to the local schema. They
// are preserved on decode and re-emitted verbatim on encode, giving
// forward compatibility with newer PCE versions.
type Extra map[string]json.RawMessage

// PCEObject is the common base of named PCE resources.
type PCEObject struct {
	Reference `yaml:",inline"`

	Name                  string `json:"name,omitempty"                    yaml:"name,omitempty"`
	Description           string `json:"description,omitempty"             yaml:"description,omitempty"`
	ExternalDataSet       string `json:"external_data_set,omitempty"       yaml:"external_data_set,omitempty"`
	ExternalDataReference string `json:"external_data_reference,omitempty" yaml:"external_data_reference,omitempty"`

	Extra Extra `json:"-" yaml:"-"`
}

// MutableObject is the base of resources that can be updated after
// creation.
type MutableObject struct {
	PCEObject `yaml:",inline"`

	CreatedAt  string     `json:"created_at,omitempty"  yaml:"created_at,omitempty"`
	UpdatedAt  string     `json:"updated_at,omitempty"  yaml:"updated_at,omitempty"`
	DeletedAt  string     `json:"deleted_at,omitempty"  yaml:"deleted_at,omitempty"`
	UpdateType string     `json:"update_type,omitempty" yaml:"update_type,omitempty"`
	DeleteType string     `json:"delete_type,omitempty" yaml:"delete_type,omitempty"`
	CreatedBy  *Reference `json:"created_by,omitempty"  yaml:"created_by,omitempty"`
	UpdatedBy  *Reference `json:"updated_by,omitempty"  yaml:"updated_by,omitempty"`
	DeletedBy  *Reference `json:"deleted_by,omitempty"  yaml:"deleted_by,omitempty"`
	Caps       []string   `json:"caps,omitempty"        yaml:"caps,omitempty"`
}

// ImmutableObject is the base of resources that can only be created and
// deleted, never updated.
type ImmutableObject struct {
	PCEObject `yaml:",inline"`

	CreatedAt string     `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	CreatedBy *Reference `json:"created_by,omitempty" yaml:"created_by,omitempty"`
}
