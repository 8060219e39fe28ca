// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the citation-engine.
// Description is the NLM citation metadata record exchanged between the
// parsers, the fusion engine, the store, and the CLI.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"go.yaml.in/yaml/v3"
)

// NLM citation field names used across the engine. Names with a bracketed
// predicate qualify the element by one of its attributes.
const (
	FieldPublicationType = `[@publication-type]`
	FieldAuthors         = `person-group[@person-group-type="author"]`
	FieldEditors         = `person-group[@person-group-type="editor"]`
	FieldArticleTitle    = "article-title"
	FieldChapterTitle    = "chapter-title"
	FieldSource          = "source"
	FieldDate            = "date"
	FieldSeason          = "season"
	FieldVolume          = "volume"
	FieldIssue           = "issue"
	FieldFirstPage       = "fpage"
	FieldLastPage        = "lpage"
	FieldEdition         = "edition"
	FieldPublisherName   = "publisher-name"
	FieldPublisherLoc    = "publisher-loc"
	FieldISBN            = "isbn"
	FieldISSNPrint       = `issn[@pub-type="ppub"]`
	FieldISSNElectronic  = `issn[@pub-type="epub"]`
	FieldPMID            = `pub-id[@pub-id-type="pmid"]`
	FieldDOI             = `pub-id[@pub-id-type="doi"]`
	FieldConfName        = "conf-name"
	FieldConfDate        = "conf-date"
	FieldConfLoc         = "conf-loc"
	FieldConfSponsor     = "conf-sponsor"
	FieldURI             = "uri"
)

// personGroupPrefix marks fields whose values are lists of people.
const personGroupPrefix = "person-group"

// PublicationType classifies a cited work. Values match the NLM
// publication-type attribute.
type PublicationType string

const (
	PublicationJournal  PublicationType = "journal"
	PublicationBook     PublicationType = "book"
	PublicationConfProc PublicationType = "conf-proc"
	PublicationUnknown  PublicationType = "unknown"
)

// ParsePublicationType maps a stored attribute value back to a
// PublicationType. Unrecognized values yield PublicationUnknown.
func ParsePublicationType(s string) PublicationType {
	switch PublicationType(strings.ToLower(strings.TrimSpace(s))) {
	case PublicationJournal:
		return PublicationJournal
	case PublicationBook:
		return PublicationBook
	case PublicationConfProc:
		return PublicationConfProc
	default:
		return PublicationUnknown
	}
}

// ParseState records whether a description is the output of fusion.
type ParseState string

const (
	StateUnparsed ParseState = "unparsed"
	StateParsed   ParseState = "parsed"
)

// Person is one entry of a person-group field.
type Person struct {
	Surname    string `json:"surname" yaml:"surname"`
	GivenNames string `json:"given-names,omitempty" yaml:"given-names,omitempty"`
}

// String renders the person as "Surname, Given".
func (p Person) String() string {
	if p.GivenNames == "" {
		return p.Surname
	}
	return p.Surname + ", " + p.GivenNames
}

// Description maps NLM field names to values. It remembers the order in
// which fields were first set so every enumeration over it is stable.
//
// Has reports presence; a field can be present with an empty value.
type Description struct {
	names      []string
	statements map[string]any

	// Score is the 0-100 parse score attached by fusion.
	Score float64

	// State is StateParsed once the description is a fusion result.
	State ParseState
}

// NewDescription returns an empty, unparsed description.
func NewDescription() *Description {
	return &Description{
		statements: make(map[string]any),
		State:      StateUnparsed,
	}
}

// Set assigns value to name. A new name is appended to the field order;
// replacing an existing value keeps its position.
func (d *Description) Set(name string, value any) {
	if d.statements == nil {
		d.statements = make(map[string]any)
	}
	if _, ok := d.statements[name]; !ok {
		d.names = append(d.names, name)
	}
	d.statements[name] = value
}

// Get returns the value stored under name.
func (d *Description) Get(name string) (any, bool) {
	v, ok := d.statements[name]
	return v, ok
}

// GetString returns the value under name when it is a string.
func (d *Description) GetString(name string) string {
	s, _ := d.statements[name].(string)
	return s
}

// Text renders a scalar value under name as a string. Values decoded from
// YAML may be numbers ("date: 2015"); lists and maps render as "".
func (d *Description) Text(name string) string {
	switch v := d.statements[name].(type) {
	case string:
		return v
	case int, int64, float64, bool:
		return fmt.Sprint(v)
	default:
		return ""
	}
}

// GetPeople returns the persons stored under a person-group field.
func (d *Description) GetPeople(name string) []Person {
	p, _ := d.statements[name].([]Person)
	return p
}

// Has reports whether name is present, regardless of its value.
func (d *Description) Has(name string) bool {
	_, ok := d.statements[name]
	return ok
}

// Names returns the field names in first-set order.
func (d *Description) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Len returns the number of fields.
func (d *Description) Len() int {
	return len(d.names)
}

// PublicationType returns the stored publication type, if any.
func (d *Description) PublicationType() (PublicationType, bool) {
	if !d.Has(FieldPublicationType) {
		return PublicationUnknown, false
	}
	return ParsePublicationType(d.GetString(FieldPublicationType)), true
}

// Clone returns a deep copy. Slice and map values are copied with
// CopyValue, so the clone shares no mutable state with d.
func (d *Description) Clone() *Description {
	c := &Description{
		names:      make([]string, len(d.names)),
		statements: make(map[string]any, len(d.statements)),
		Score:      d.Score,
		State:      d.State,
	}
	copy(c.names, d.names)
	for k, v := range d.statements {
		c.statements[k] = CopyValue(v)
	}
	return c
}

// CopyValue returns a copy of a field value. Person lists, string lists,
// generic lists and mappings are copied recursively; scalars are returned
// as is.
func CopyValue(v any) any {
	switch x := v.(type) {
	case []Person:
		if x == nil {
			return x
		}
		return append([]Person(nil), x...)
	case []string:
		if x == nil {
			return x
		}
		return append([]string(nil), x...)
	case []any:
		if x == nil {
			return x
		}
		out := make([]any, len(x))
		for i, e := range x {
			out[i] = CopyValue(e)
		}
		return out
	case map[string]any:
		if x == nil {
			return x
		}
		out := make(map[string]any, len(x))
		for k, e := range x {
			out[k] = CopyValue(e)
		}
		return out
	default:
		return v
	}
}

// MarshalYAML emits the fields as a mapping in field order.
func (d *Description) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, name := range d.names {
		var value yaml.Node
		if err := value.Encode(d.statements[name]); err != nil {
			return nil, fmt.Errorf("encoding field %s: %w", name, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: name},
			&value,
		)
	}
	return node, nil
}

// UnmarshalYAML reads a mapping node into the description. Any other node
// kind is not a metadata record.
func (d *Description) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: metadata description must be a mapping, got %s", value.Line, kindName(value.Kind))
	}
	*d = *NewDescription()
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: field name must be a scalar", key.Line)
		}
		v, err := decodeValue(key.Value, val)
		if err != nil {
			return err
		}
		d.Set(key.Value, v)
	}
	return nil
}

func decodeValue(name string, node *yaml.Node) (any, error) {
	if strings.HasPrefix(name, personGroupPrefix) {
		var people []Person
		if err := node.Decode(&people); err != nil {
			return nil, fmt.Errorf("line %d: decoding %s: %w", node.Line, name, err)
		}
		return people, nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, fmt.Errorf("line %d: decoding %s: %w", node.Line, name, err)
	}
	return v, nil
}

func kindName(k yaml.Kind) string {
	switch k {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	case yaml.DocumentNode:
		return "document"
	default:
		return "unknown node"
	}
}

// MarshalJSON emits the fields as an object in field order.
func (d *Description) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range d.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(d.statements[name])
		if err != nil {
			return nil, fmt.Errorf("encoding field %s: %w", name, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
