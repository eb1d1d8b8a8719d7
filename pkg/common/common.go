package common

// ConceptType names one of the four event-storming building blocks.
type ConceptType string

const (
	ConceptAggregate ConceptType = "Aggregate"
	ConceptCommand   ConceptType = "Command"
	ConceptEvent     ConceptType = "Event"
	ConceptPolicy    ConceptType = "Policy"
	// ConceptFragment labels stored document fragments (DocFrag nodes).
	ConceptFragment ConceptType = "DocFrag"
)

// EdgeType is the label of a directed edge between two nodes.
type EdgeType string

const (
	EdgeTargets     EdgeType = "TARGETS"
	EdgeEmits       EdgeType = "EMITS"
	EdgeListens     EdgeType = "LISTENS"
	EdgeIssues      EdgeType = "ISSUES"
	EdgeAffects     EdgeType = "AFFECTS"
	EdgeDerivedFrom EdgeType = "DERIVED_FROM"
)

// ConceptEdgeTypes are the relationship types exposed by the graph read API.
var ConceptEdgeTypes = []EdgeType{EdgeTargets, EdgeEmits, EdgeListens, EdgeIssues, EdgeAffects}

func (t EdgeType) Valid() bool {
	switch t {
	case EdgeTargets, EdgeEmits, EdgeListens, EdgeIssues, EdgeAffects, EdgeDerivedFrom:
		return true
	}
	return false
}

type CommandIntent string

const (
	IntentCreate CommandIntent = "Create"
	IntentUpdate CommandIntent = "Update"
	IntentDelete CommandIntent = "Delete"
	IntentQuery  CommandIntent = "Query"
	IntentCustom CommandIntent = "Custom"
)

type PolicyType string

const (
	PolicyProcess PolicyType = "ProcessPolicy"
	PolicySaga    PolicyType = "SagaPolicy"
	PolicyRule    PolicyType = "Rule"
)

// Fragment is a contiguous, bounded piece of a document page. Start and End
// form a half-open rune range inside the page text.
//
// Fragments are produced by the chunker and are the unit of work for
// concept extraction.
type Fragment struct {
	ID    string `json:"id"`
	DocID string `json:"doc_id"`
	Page  int    `json:"page"`
	Start int    `json:"start"`
	End   int    `json:"end"`
	Text  string `json:"text"`
}

// SourceAnchor points a concept back to the text it was extracted from.
type SourceAnchor struct {
	DocID      string `json:"doc_id" validate:"required"`
	Page       int    `json:"page" validate:"gte=0"`
	Span       [2]int `json:"span"`
	FragmentID string `json:"fragment_id,omitempty"`
}

// Concept is implemented by every extracted candidate type so that merging
// and node building can be written once.
type Concept interface {
	Label() string
	Kind() ConceptType
	Score() float64
	Anchor() SourceAnchor
}

// Aggregate is a consistency boundary owning state, e.g. Order.
type Aggregate struct {
	Name        string       `json:"name" validate:"required"`
	Description string       `json:"description"`
	Confidence  float64      `json:"confidence" validate:"gte=0,lte=1"`
	Source      SourceAnchor `json:"source_anchor"`
}

// Command is an imperative request to change state, e.g. CreateOrder.
type Command struct {
	Name          string        `json:"name" validate:"required"`
	Intent        CommandIntent `json:"intent" validate:"oneof=Create Update Delete Query Custom"`
	Preconditions []string      `json:"preconditions"`
	Confidence    float64       `json:"confidence" validate:"gte=0,lte=1"`
	Source        SourceAnchor  `json:"source_anchor"`
}

// Event is a past-tense fact, e.g. OrderCreated.
type Event struct {
	Name       string            `json:"name" validate:"required"`
	SchemaHint map[string]string `json:"schema_hint"`
	Confidence float64           `json:"confidence" validate:"gte=0,lte=1"`
	Source     SourceAnchor      `json:"source_anchor"`
}

// Policy reacts to events and issues commands.
type Policy struct {
	Name       string       `json:"name" validate:"required"`
	Type       PolicyType   `json:"type" validate:"oneof=ProcessPolicy SagaPolicy Rule"`
	Condition  string       `json:"condition"`
	Confidence float64      `json:"confidence" validate:"gte=0,lte=1"`
	Source     SourceAnchor `json:"source_anchor"`
}

func (a Aggregate) Label() string        { return a.Name }
func (a Aggregate) Kind() ConceptType    { return ConceptAggregate }
func (a Aggregate) Score() float64       { return a.Confidence }
func (a Aggregate) Anchor() SourceAnchor { return a.Source }

func (c Command) Label() string        { return c.Name }
func (c Command) Kind() ConceptType    { return ConceptCommand }
func (c Command) Score() float64       { return c.Confidence }
func (c Command) Anchor() SourceAnchor { return c.Source }

func (e Event) Label() string        { return e.Name }
func (e Event) Kind() ConceptType    { return ConceptEvent }
func (e Event) Score() float64       { return e.Confidence }
func (e Event) Anchor() SourceAnchor { return e.Source }

func (p Policy) Label() string        { return p.Name }
func (p Policy) Kind() ConceptType    { return ConceptPolicy }
func (p Policy) Score() float64       { return p.Confidence }
func (p Policy) Anchor() SourceAnchor { return p.Source }

// ExtractionOutput collects the candidates of one extraction run.
// Mock is set when the deterministic fallback dataset was returned instead
// of real extraction results.
type ExtractionOutput struct {
	Aggregates []Aggregate `json:"aggregates" validate:"dive"`
	Commands   []Command   `json:"commands" validate:"dive"`
	Events     []Event     `json:"events" validate:"dive"`
	Policies   []Policy    `json:"policies" validate:"dive"`
	Mock       bool        `json:"mock"`
}

// Append adds all candidates of other in order.
func (o *ExtractionOutput) Append(other ExtractionOutput) {
	o.Aggregates = append(o.Aggregates, other.Aggregates...)
	o.Commands = append(o.Commands, other.Commands...)
	o.Events = append(o.Events, other.Events...)
	o.Policies = append(o.Policies, other.Policies...)
}

// Node is a persisted graph vertex. The ID carries a type prefix and is
// unique across the whole store.
type Node struct {
	ID    string         `json:"id"`
	DocID string         `json:"doc_id"`
	Type  ConceptType    `json:"type"`
	Name  string         `json:"name"`
	Props map[string]any `json:"props,omitempty"`
}

// Edge is a directed, typed relationship between two nodes of the same
// document.
type Edge struct {
	ID     string         `json:"id"`
	Type   EdgeType       `json:"type"`
	FromID string         `json:"from_id"`
	ToID   string         `json:"to_id"`
	Props  map[string]any `json:"props,omitempty"`
}

// Cluster is a microservice candidate made of strongly connected aggregates.
type Cluster struct {
	Aggregates []string `json:"aggregates"`
	Rationale  string   `json:"rationale"`
	Confidence float64  `json:"confidence"`
}
