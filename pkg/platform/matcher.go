// Package platform decides which cluster objects belong to the monitored
// application platform, as opposed to third-party or ambient resources.
package platform

import (
	"strings"

	"github.com/kubinv/kubinv/pkg/inventory"
)

// DefaultDomain is the annotation/label key domain assumed when none is
// configured.
const DefaultDomain = "platform.io"

// componentNameSuffix names the annotation carrying a component's canonical
// display name, relative to the platform domain.
const componentNameSuffix = "/component-name"

// Matcher classifies resources as platform-owned. An object is a platform
// resource when any of its annotation or label keys contains the platform
// domain, or when its name carries the configured prefix.
type Matcher struct {
	// Domain is the marker looked for inside annotation and label keys,
	// e.g. "platform.io" matches "platform.io/component-name".
	Domain string

	// NamePrefix, when non-empty, additionally marks objects whose name
	// starts with it.
	NamePrefix string
}

// NewMatcher returns a Matcher for a domain, falling back to DefaultDomain
// when the domain is empty.
func NewMatcher(domain string) *Matcher {
	if domain == "" {
		domain = DefaultDomain
	}
	return &Matcher{Domain: domain}
}

// Matches reports whether the resource belongs to the platform.
func (m *Matcher) Matches(res *inventory.Resource) bool {
	for key := range res.Annotations() {
		if strings.Contains(key, m.Domain) {
			return true
		}
	}
	for key := range res.Labels() {
		if strings.Contains(key, m.Domain) {
			return true
		}
	}
	if m.NamePrefix != "" && strings.HasPrefix(res.Name(), m.NamePrefix) {
		return true
	}
	return false
}

// ComponentNameAnnotation returns the fully qualified annotation key that
// carries a member object's canonical component name.
func (m *Matcher) ComponentNameAnnotation() string {
	return m.Domain + componentNameSuffix
}
