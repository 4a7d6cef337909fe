package xaml

// Node is one activity in the extracted tree. Only elements that pass
// visibility classification become nodes — structural elements are
// traversed but never emitted.
type Node struct {
	ID             string            // stable hierarchical node ID, e.g. "Sequence/If[1]"
	Type           string            // local tag name, namespace stripped
	DisplayName    string            // from the DisplayName attribute, if present
	Annotation     string            // from Annotation.AnnotationText
	Depth          int               // 0 at root
	ParentID       string            // "" for root
	ChildIDs       []string          // ordered
	Properties     map[string]string // visible + collapsed wrapper properties
	IsExpression   map[string]bool   // property name -> whether its value looks like an expression
	Invisible      map[string]string // ViewState / VirtualizedContainer / annotation-plumbing attributes
	InvocationPath string            // raw WorkflowFileName value, "" if not an invocation
	Selectors      map[string]string // UI-automation selector attributes
	Variables      []string          // referenced variable names
	ContainerBranch string           // then/else/catch/finally/body/cases/""
	XPath          string            // reconstructed location for diagnostics
	ContentHash    string            // 8-hex hash of tag, sorted attrs, and visual child hashes
}

// Tree is the full extracted activity tree plus workflow-level extras.
type Tree struct {
	Nodes      []Node
	RootID     string
	Namespaces []string // non-system namespace URIs declared on the root
	Packages   []string // package names derived from Namespaces
}

const (
	BranchThen    = "then"
	BranchElse    = "else"
	BranchCatch   = "catch"
	BranchFinally = "finally"
	BranchBody    = "body"
	BranchCases   = "cases"
)

var wrapperBranchNames = map[string]string{
	"Then":       BranchThen,
	"Else":       BranchElse,
	"Catch":      BranchCatch,
	"Finally":    BranchFinally,
	"Body":       BranchBody,
	"Default":    BranchBody,
	"Cases":      BranchCases,
	"Activities": BranchBody,
	"Triggers":   BranchCases,
	"Actions":    BranchBody,
}
