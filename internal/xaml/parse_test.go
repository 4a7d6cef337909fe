package xaml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleXaml = `<?xml version="1.0" encoding="utf-8"?>
<Activity x:Class="Main"
          xmlns="http://schemas.microsoft.com/netfx/2009/xaml/activities"
          xmlns:ui="http://schemas.uipath.com/workflow/activities/ui"
          xmlns:x="http://schemas.microsoft.com/winfx/2006/xaml">
  <Sequence DisplayName="Main Sequence">
    <Sequence.Variables>
      <Variable x:TypeArguments="x:Int32" Name="counter" />
    </Sequence.Variables>
    <If DisplayName="Check Counter" Condition="[counter &gt; 0]">
      <If.Then>
        <WriteLine DisplayName="Log Positive" Text="[&quot;positive&quot;]" />
      </If.Then>
      <If.Else>
        <InvokeWorkflowFile DisplayName="Call Framework Init" WorkflowFileName="Framework\Init.xaml" />
      </If.Else>
    </If>
  </Sequence>
</Activity>
`

func TestParse_BuildsVisualTree(t *testing.T) {
	tree, err := Parse([]byte(sampleXaml))
	require.NoError(t, err)

	require.NotEmpty(t, tree.Nodes)
	var types []string
	for _, n := range tree.Nodes {
		types = append(types, n.Type)
	}
	assert.Contains(t, types, "Sequence")
	assert.Contains(t, types, "If")
	assert.Contains(t, types, "WriteLine")
	assert.Contains(t, types, "InvokeWorkflowFile")

	// Variables/Sequence.Variables must never appear as a node.
	assert.NotContains(t, types, "Sequence.Variables")
	assert.NotContains(t, types, "Variable")
}

func TestParse_ContainerBranchAttribution(t *testing.T) {
	tree, err := Parse([]byte(sampleXaml))
	require.NoError(t, err)

	var writeLine, invoke *Node
	for i := range tree.Nodes {
		switch tree.Nodes[i].Type {
		case "WriteLine":
			writeLine = &tree.Nodes[i]
		case "InvokeWorkflowFile":
			invoke = &tree.Nodes[i]
		}
	}
	require.NotNil(t, writeLine)
	require.NotNil(t, invoke)
	assert.Equal(t, BranchThen, writeLine.ContainerBranch)
	assert.Equal(t, BranchElse, invoke.ContainerBranch)
}

func TestParse_InvocationTargetExtracted(t *testing.T) {
	tree, err := Parse([]byte(sampleXaml))
	require.NoError(t, err)

	var invoke *Node
	for i := range tree.Nodes {
		if tree.Nodes[i].Type == "InvokeWorkflowFile" {
			invoke = &tree.Nodes[i]
		}
	}
	require.NotNil(t, invoke)
	assert.Equal(t, `Framework\Init.xaml`, invoke.InvocationPath)
}

func TestParse_NodeIDStability(t *testing.T) {
	tree, err := Parse([]byte(sampleXaml))
	require.NoError(t, err)

	ids := map[string]bool{}
	for _, n := range tree.Nodes {
		assert.False(t, ids[n.ID], "node ID %q must be unique", n.ID)
		ids[n.ID] = true
	}
	assert.Contains(t, ids, "Sequence")
	assert.Contains(t, ids, "Sequence/If")
}

func TestParse_ExpressionDetection(t *testing.T) {
	tree, err := Parse([]byte(sampleXaml))
	require.NoError(t, err)

	var ifNode *Node
	for i := range tree.Nodes {
		if tree.Nodes[i].Type == "If" {
			ifNode = &tree.Nodes[i]
		}
	}
	require.NotNil(t, ifNode)
	assert.True(t, ifNode.IsExpression["Condition"])
}

func TestParse_MalformedDocument(t *testing.T) {
	_, err := Parse([]byte(`<Activity><Unclosed</Activity>`))
	assert.Error(t, err)
}

func TestClassifyInvocationTarget(t *testing.T) {
	assert.Equal(t, InvocationSyntaxCoded, ClassifyInvocationTarget("Handlers/Foo.cs"))
	assert.Equal(t, InvocationSyntaxDynamic, ClassifyInvocationTarget(`[workflowNameVar + ".xaml"]`))
	assert.Equal(t, InvocationSyntaxPlain, ClassifyInvocationTarget(`Framework\Init.xaml`))
}

func TestDerivePackages(t *testing.T) {
	tree, err := Parse([]byte(sampleXaml))
	require.NoError(t, err)
	assert.Contains(t, tree.Packages, "System.Activities")
}
