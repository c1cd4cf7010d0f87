// Package entry defines the log record model shared by the parser, the
// query engine, the rolling buffer and the writer.
package entry

// Type discriminates the four kinds of record the parser can produce.
type Type int

const (
	Unknown Type = iota
	Message
	Network
	Startup
)

// String returns the CSS-class-friendly, lowercase name of the type, used
// both in XHTML framing and in log/diagnostic output.
func (t Type) String() string {
	switch t {
	case Message:
		return "message"
	case Network:
		return "network"
	case Startup:
		return "startup"
	default:
		return "unknown"
	}
}

// Param is one (name, value) pair. Entries keep params in an ordered
// sequence rather than a map so duplicate names and insertion order
// survive, matching the wire text they were parsed from.
type Param struct {
	Name  string
	Value string
}

// Entry is one parsed log record. Type and Text are immutable once built;
// Params and Marked may still change while the entry is owned by the
// parser's pending slot or by a LogBuf. Ownership is exclusive: exactly one
// collaborator holds an *Entry at a time as it flows through the pipeline.
type Entry struct {
	Type   Type
	Text   string
	Params []Param
	Marked bool
}

// New creates an entry of the given type with the given verbatim text.
func New(t Type, text string) *Entry {
	return &Entry{Type: t, Text: text}
}

// Get returns the value of the first param named name, and whether it was
// found.
func (e *Entry) Get(name string) (string, bool) {
	for _, p := range e.Params {
		if p.Name == name {
			return p.Value, true
		}
	}
	return "", false
}

// Set replaces the value of the first param named name, or appends a new
// param if none exists yet.
func (e *Entry) Set(name, value string) {
	for i := range e.Params {
		if e.Params[i].Name == name {
			e.Params[i].Value = value
			return
		}
	}
	e.Params = append(e.Params, Param{Name: name, Value: value})
}

// At returns the i-th param by index.
func (e *Entry) At(i int) Param {
	return e.Params[i]
}

// AppendText appends raw bytes to the entry's verbatim text, used while a
// multi-line or verbatim-copy record is being assembled.
func (e *Entry) AppendText(s string) {
	e.Text += s
}
