package lake

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPath_Projects(t *testing.T) {
	r := NewResolver("rpax", "dev")
	path, err := r.ToPath("rpax://dev/projects")
	require.NoError(t, err)
	assert.Equal(t, "projects.json", path)
}

func TestToPath_ProjectManifest(t *testing.T) {
	r := NewResolver("rpax", "dev")
	path, err := r.ToPath("rpax://dev/projects/acme-ab12cd34ef")
	require.NoError(t, err)
	assert.Equal(t, "acme-ab12cd34ef/v0/manifest.json", path)
}

func TestToPath_WorkflowsIndex(t *testing.T) {
	r := NewResolver("rpax", "dev")
	path, err := r.ToPath("rpax://dev/workflows/acme-ab12cd34ef")
	require.NoError(t, err)
	assert.Equal(t, "acme-ab12cd34ef/v0/workflows/index.json", path)
}

func TestToPath_SingleWorkflow(t *testing.T) {
	r := NewResolver("rpax", "dev")
	path, err := r.ToPath("rpax://dev/workflows/acme-ab12cd34ef/Main")
	require.NoError(t, err)
	assert.Equal(t, "acme-ab12cd34ef/v0/workflows/Main.json", path)
}

func TestToPath_UnknownResourceTypeFails(t *testing.T) {
	r := NewResolver("rpax", "dev")
	_, err := r.ToPath("rpax://dev/bogus/x")
	require.Error(t, err)
	var uriErr *URIError
	assert.ErrorAs(t, err, &uriErr)
}

func TestToPath_SchemeMismatchFails(t *testing.T) {
	r := NewResolver("rpax", "dev")
	_, err := r.ToPath("other://dev/projects")
	assert.Error(t, err)
}

func TestRoundTrip_URIToPathToURI(t *testing.T) {
	r := NewResolver("rpax", "dev")
	uri := "rpax://dev/projects/acme-ab12cd34ef"
	path, err := r.ToPath(uri)
	require.NoError(t, err)
	back, err := r.FromProjectPath(path)
	require.NoError(t, err)
	assert.Equal(t, uri, back)
}

func TestRoundTrip_WorkflowURIToPathToURI(t *testing.T) {
	r := NewResolver("rpax", "dev")
	uri := "rpax://dev/workflows/acme-ab12cd34ef/Main"
	path, err := r.ToPath(uri)
	require.NoError(t, err)
	back, err := r.FromWorkflowPath(path)
	require.NoError(t, err)
	assert.Equal(t, uri, back)
}

func TestRoundTrip_PathToURIToPath(t *testing.T) {
	r := NewResolver("rpax", "dev")
	path := "acme-ab12cd34ef/v0/workflows/index.json"
	uri, err := r.FromWorkflowPath(path)
	require.NoError(t, err)
	back, err := r.ToPath(uri)
	require.NoError(t, err)
	assert.Equal(t, path, back)
}
