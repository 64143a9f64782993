package pce

import (
	"fmt"
	"regexp"
	"strconv"
)

// hrefPattern matches object HREFs and captures the org ID, optional
// policy version, resource type segment, and object ID.
var hrefPattern = regexp.MustCompile(`^/orgs/(\d+)/(?:sec_policy/(draft|active)/)?([a-z_]+)/(\S+)$`)

// ParsedHref is the decomposed form of an object HREF.
type ParsedHref struct {
	OrgID        int
	Version      PolicyVersion
	ResourceType string
	ID           string
}

// ParseHref decomposes an object HREF into its org, policy version,
// resource type, and ID segments. Non-policy HREFs have an empty
// Version.
func ParseHref(href string) (*ParsedHref, error) {
	match := hrefPattern.FindStringSubmatch(href)
	if match == nil {
		return nil, fmt.Errorf("parsing href %q: %w", href, ErrInvalidHref)
	}

	orgID, err := strconv.Atoi(match[1])
	if err != nil {
		return nil, fmt.Errorf("parsing href %q: %w", href, ErrInvalidHref)
	}

	return &ParsedHref{
		OrgID:        orgID,
		Version:      PolicyVersion(match[2]),
		ResourceType: match[3],
		ID:           match[4],
	}, nil
}
