// Package identity implements the content-addressing scheme shared across
// the lake: workflow content hashes, project slugs, and composite
// identifiers for workflows and activity nodes.
package identity

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// ContentHash returns the full SHA-256 hex digest over raw bytes, as used
// for a workflow's content hash.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ShortHash truncates a full hex digest to its first 16 characters, the
// short form stored alongside a workflow's full content hash.
func ShortHash(fullHash string) string {
	if len(fullHash) <= 16 {
		return fullHash
	}
	return fullHash[:16]
}

const maxSlugRunes = 20

// SlugifyName lowercases a name, replaces every non-alphanumeric rune with
// "-", collapses runs of "-", strips leading/trailing "-", and truncates to
// 20 code points. Falls back to "unnamed" when the result is empty.
func SlugifyName(name string) string {
	lower := strings.ToLower(name)
	var b strings.Builder
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	collapsed := collapseDashes(b.String())
	trimmed := strings.Trim(collapsed, "-")

	runes := []rune(trimmed)
	if len(runes) > maxSlugRunes {
		runes = runes[:maxSlugRunes]
	}
	trimmed = strings.Trim(string(runes), "-")

	if trimmed == "" {
		return "unnamed"
	}
	return trimmed
}

func collapseDashes(s string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		if r == '-' {
			if lastDash {
				continue
			}
			lastDash = true
		} else {
			lastDash = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CanonicalJSON re-marshals a value with sorted object keys and compact
// separators, used as the input to the project-slug hash so the slug is
// stable regardless of the descriptor's field order on disk.
func CanonicalJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}
	var b strings.Builder
	if err := writeCanonical(&b, generic); err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

func writeCanonical(b *strings.Builder, v any) error {
	switch val := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				b.WriteByte(',')
			}
			kb, _ := json.Marshal(k)
			b.Write(kb)
			b.WriteByte(':')
			if err := writeCanonical(b, val[k]); err != nil {
				return err
			}
		}
		b.WriteByte('}')
	case []any:
		b.WriteByte('[')
		for i, e := range val {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := writeCanonical(b, e); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	default:
		eb, err := json.Marshal(val)
		if err != nil {
			return err
		}
		b.Write(eb)
	}
	return nil
}

// ProjectSlug computes `slug-of(name) + "-" + short-hash-of(canonical-descriptor)`,
// where the short hash is the first 10 hex characters of the SHA-256 digest
// of the canonical (sorted-keys, compact-separators) JSON form of descriptor.
func ProjectSlug(name string, descriptor any) (string, error) {
	canon, err := CanonicalJSON(descriptor)
	if err != nil {
		return "", fmt.Errorf("canonicalize descriptor: %w", err)
	}
	sum := sha256.Sum256(canon)
	shortHash := hex.EncodeToString(sum[:])[:10]
	return SlugifyName(name) + "-" + shortHash, nil
}

// WorkflowCompositeID builds the `{project-slug}#{workflow-id}#{short-hash}`
// identifier that uniquely names a workflow within the lake.
func WorkflowCompositeID(projectSlug, workflowID, shortHash string) string {
	return fmt.Sprintf("%s#%s#%s", projectSlug, workflowID, shortHash)
}

// ActivityCompositeID builds the globally-unique
// `{project-slug}#{workflow-id}#{node-id}#{8-hex-content-hash}` identifier
// for one activity node.
func ActivityCompositeID(projectSlug, workflowID, nodeID, elementHash string) string {
	return fmt.Sprintf("%s#%s#%s#%s", projectSlug, workflowID, nodeID, elementHash)
}

// ActivityContentHash canonicalizes an activity element as its local tag
// name, its sorted attribute name/value pairs, and the concatenated
// canonicalized hashes of its visual children, joined by "\x1f", hashed with
// SHA-256 with the first 8 hex characters taken. This is deterministic
// independent of attribute declaration order and XML namespace prefix
// spelling (see design decision on activity-hash canonicalization).
func ActivityContentHash(tagName string, attrs map[string]string, childHashes []string) string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, 1+len(keys)+len(childHashes))
	parts = append(parts, tagName)
	for _, k := range keys {
		parts = append(parts, k+"="+attrs[k])
	}
	parts = append(parts, childHashes...)

	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])[:8]
}
