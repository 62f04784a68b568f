package inventory

import (
	"strings"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
)

// lastAppliedConfigAnnotation carries a full copy of the object as last
// applied by kubectl and can dwarf the object itself.
const lastAppliedConfigAnnotation = "kubectl.kubernetes.io/last-applied-configuration"

// defaultStripAnnotations are the annotation key patterns removed from every
// gathered object to bound report size.
var defaultStripAnnotations = []string{
	lastAppliedConfigAnnotation,
	"*.kubernetes.io/last-applied-configuration",
}

// stripNoise removes high-volume, non-essential metadata from a freshly
// listed object: the managedFields audit trail and any annotation matching
// one of the given key patterns. Runs once at ingest.
func stripNoise(u *unstructured.Unstructured, annotationPatterns []string) {
	unstructured.RemoveNestedField(u.Object, "metadata", "managedFields")

	annotations := u.GetAnnotations()
	if len(annotations) == 0 {
		return
	}
	changed := false
	for key := range annotations {
		for _, pattern := range annotationPatterns {
			if matchesPattern(key, pattern) {
				delete(annotations, key)
				changed = true
				break
			}
		}
	}
	if changed {
		if len(annotations) == 0 {
			unstructured.RemoveNestedField(u.Object, "metadata", "annotations")
		} else {
			u.SetAnnotations(annotations)
		}
	}
}

// matchesPattern checks if a key matches a wildcard pattern.
// Supported forms:
//   - "prefix*" matches keys starting with "prefix"
//   - "*suffix" matches keys ending with "suffix"
//   - "*contains*" matches keys containing "contains"
//   - "exact" matches keys exactly
func matchesPattern(key, pattern string) bool {
	// No wildcard - exact match
	if !strings.Contains(pattern, "*") {
		return key == pattern
	}

	// *contains* - contains match
	if strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*") {
		substr := strings.Trim(pattern, "*")
		return strings.Contains(key, substr)
	}

	// *suffix - ends with match
	if strings.HasPrefix(pattern, "*") {
		suffix := strings.TrimPrefix(pattern, "*")
		return strings.HasSuffix(key, suffix)
	}

	// prefix* - starts with match
	if strings.HasSuffix(pattern, "*") {
		prefix := strings.TrimSuffix(pattern, "*")
		return strings.HasPrefix(key, prefix)
	}

	return false
}
