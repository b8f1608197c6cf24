package interfaces

// Persona is a role that acts on the issue tracker.
type Persona string

const (
	// Reporter opens issues.
	Reporter Persona = "reporter"
	// Maintainer triages issues.
	Maintainer Persona = "maintainer"
)

// Personas lists every persona in a stable order.
var Personas = []Persona{Reporter, Maintainer}

// IssueRequest describes an issue to open.
type IssueRequest struct {
	Title  string
	Body   string
	Labels []string
}

// Issue represents an issue as recorded by the tracker.
type Issue struct {
	Number    int
	URL       string
	Title     string
	Assignees []string
	Labels    []string
}
