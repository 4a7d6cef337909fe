package lake

import (
	"fmt"
	"strings"
)

// URIError is a typed failure from URI parsing or resolution.
type URIError struct {
	URI     string
	Message string
}

func (e *URIError) Error() string {
	return fmt.Sprintf("invalid lake URI %q: %s", e.URI, e.Message)
}

// Resolver maps between abstract lake resource URIs
// (<scheme>://<lake-name>/<resource-type>/<path-parts...>) and filesystem
// paths relative to the lake root. It is read-only after construction.
type Resolver struct {
	scheme   string
	lakeName string
}

// NewResolver constructs a resolver bound to one scheme and lake name.
func NewResolver(scheme, lakeName string) *Resolver {
	return &Resolver{scheme: scheme, lakeName: lakeName}
}

// ToPath resolves a URI to a lake-root-relative filesystem path.
func (r *Resolver) ToPath(uri string) (string, error) {
	prefix := r.scheme + "://" + r.lakeName + "/"
	if !strings.HasPrefix(uri, prefix) {
		return "", &URIError{URI: uri, Message: "scheme or lake name mismatch"}
	}
	rest := strings.TrimPrefix(uri, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) == 0 || parts[0] == "" {
		return "", &URIError{URI: uri, Message: "missing resource type"}
	}

	resourceType := parts[0]
	tail := parts[1:]

	switch resourceType {
	case "projects":
		if len(tail) == 0 {
			return "projects.json", nil
		}
		slug := tail[0]
		sub := tail[1:]
		if len(sub) == 0 {
			return fmt.Sprintf("%s/v0/manifest.json", slug), nil
		}
		return fmt.Sprintf("%s/v0/%s", slug, strings.Join(sub, "/")), nil
	case "workflows":
		if len(tail) == 0 {
			return "", &URIError{URI: uri, Message: "workflows requires a project slug"}
		}
		slug := tail[0]
		if len(tail) == 1 {
			return fmt.Sprintf("%s/v0/workflows/index.json", slug), nil
		}
		wf := strings.Join(tail[1:], "/")
		return fmt.Sprintf("%s/v0/workflows/%s.json", slug, wf), nil
	case "entry_points":
		if len(tail) < 3 {
			return "", &URIError{URI: uri, Message: "entry_points requires slug/category/name"}
		}
		slug, category, name := tail[0], tail[1], strings.Join(tail[2:], "/")
		return fmt.Sprintf("%s/v0/entry_points/%s/%s", slug, category, name), nil
	case "call_graphs":
		if len(tail) < 2 {
			return "", &URIError{URI: uri, Message: "call_graphs requires slug/file"}
		}
		slug, file := tail[0], strings.Join(tail[1:], "/")
		return fmt.Sprintf("%s/v0/call_graphs/%s", slug, file), nil
	default:
		return "", &URIError{URI: uri, Message: "unknown resource type: " + resourceType}
	}
}

// FromProjectsPath builds the "projects" resource URI (the lake-wide index).
func (r *Resolver) FromProjectsPath() string {
	return fmt.Sprintf("%s://%s/projects", r.scheme, r.lakeName)
}

// FromProjectPath builds a "projects/<slug>[/<sub-path>]" resource URI from
// a v0 filesystem path of the form "<slug>/v0/<sub-path>" or
// "<slug>/v0/manifest.json".
func (r *Resolver) FromProjectPath(path string) (string, error) {
	slug, sub, err := splitV0(path)
	if err != nil {
		return "", err
	}
	if sub == "manifest.json" {
		return fmt.Sprintf("%s://%s/projects/%s", r.scheme, r.lakeName, slug), nil
	}
	return fmt.Sprintf("%s://%s/projects/%s/%s", r.scheme, r.lakeName, slug, sub), nil
}

// FromWorkflowPath builds a "workflows/<slug>[/<wf>]" resource URI from a v0
// filesystem path "<slug>/v0/workflows/index.json" or
// "<slug>/v0/workflows/<wf>.json".
func (r *Resolver) FromWorkflowPath(path string) (string, error) {
	slug, sub, err := splitV0(path)
	if err != nil {
		return "", err
	}
	const prefix = "workflows/"
	if !strings.HasPrefix(sub, prefix) {
		return "", &URIError{URI: path, Message: "not a workflows path"}
	}
	rest := strings.TrimPrefix(sub, prefix)
	if rest == "index.json" {
		return fmt.Sprintf("%s://%s/workflows/%s", r.scheme, r.lakeName, slug), nil
	}
	wf := strings.TrimSuffix(rest, ".json")
	return fmt.Sprintf("%s://%s/workflows/%s/%s", r.scheme, r.lakeName, slug, wf), nil
}

func splitV0(path string) (slug, sub string, err error) {
	const marker = "/v0/"
	idx := strings.Index(path, marker)
	if idx < 0 {
		return "", "", &URIError{URI: path, Message: "path does not contain /v0/ segment"}
	}
	return path[:idx], path[idx+len(marker):], nil
}
