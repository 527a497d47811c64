package engine

import (
	"sort"
	"strconv"
	"sync"

	"github.com/riftlang/rift/pkg/cache"
	"github.com/riftlang/rift/pkg/lang"
)

// ValueKind discriminates the literal kinds a variable can hold.
type ValueKind string

const (
	ValueNumber ValueKind = "number"
	ValueString ValueKind = "string"
)

// Value is a variable binding. The language has no other value kinds.
type Value struct {
	Kind   ValueKind
	Number int
	Text   string
}

// NumberValue wraps an integer literal.
func NumberValue(n int) Value {
	return Value{Kind: ValueNumber, Number: n}
}

// StringValue wraps a string literal.
func StringValue(s string) Value {
	return Value{Kind: ValueString, Text: s}
}

// String renders the value for status output.
func (v Value) String() string {
	if v.Kind == ValueNumber {
		return strconv.Itoa(v.Number)
	}
	return v.Text
}

// NamedRift pairs a rift name with its registered body.
type NamedRift struct {
	Name string
	Body []lang.Node
}

// Environment is the mutable state shared by every statement of a program
// and across REPL lines of a session. One RWMutex guards the scalar and
// map state; the artifact cache synchronizes itself. Racing writes to one
// name are last-write-wins.
type Environment struct {
	mu sync.RWMutex

	variables map[string]Value
	rifts     map[string][]lang.Node
	riftOrder []string
	tasks     map[string][]lang.Node
	target    string

	artifacts *cache.ArtifactCache
}

// NewEnvironment creates an empty environment around the given artifact
// cache. A nil cache gets a default-capacity one.
func NewEnvironment(artifacts *cache.ArtifactCache) *Environment {
	if artifacts == nil {
		artifacts, _ = cache.New(cache.DefaultCapacity)
	}
	return &Environment{
		variables: make(map[string]Value),
		rifts:     make(map[string][]lang.Node),
		tasks:     make(map[string][]lang.Node),
		artifacts: artifacts,
	}
}

// Artifacts returns the environment's artifact cache.
func (e *Environment) Artifacts() *cache.ArtifactCache {
	return e.artifacts
}

// SetVariable binds a value to a name.
func (e *Environment) SetVariable(name string, value Value) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.variables[name] = value
}

// Variable returns the binding for a name.
func (e *Environment) Variable(name string) (Value, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	value, ok := e.variables[name]
	return value, ok
}

// RegisterRift registers a rift body under its name. Re-registering a
// name replaces the body but keeps the name's original position in the
// payload ordering.
func (e *Environment) RegisterRift(name string, body []lang.Node) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, exists := e.rifts[name]; !exists {
		e.riftOrder = append(e.riftOrder, name)
	}
	e.rifts[name] = body
}

// Rift returns the registered body for a rift name.
func (e *Environment) Rift(name string) ([]lang.Node, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	body, ok := e.rifts[name]
	return body, ok
}

// RegisterTask registers a task body under its name.
func (e *Environment) RegisterTask(name string, body []lang.Node) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tasks[name] = body
}

// Task returns the registered body for a task name.
func (e *Environment) Task(name string) ([]lang.Node, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	body, ok := e.tasks[name]
	return body, ok
}

// Callable resolves a call target. Rifts take precedence over tasks on a
// name collision.
func (e *Environment) Callable(name string) ([]lang.Node, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if body, ok := e.rifts[name]; ok {
		return body, true
	}
	body, ok := e.tasks[name]
	return body, ok
}

// SetTargetLanguage sets the translation target for the optimize path.
func (e *Environment) SetTargetLanguage(language string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.target = language
}

// TargetLanguage returns the translation target, empty when unset.
func (e *Environment) TargetLanguage() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.target
}

// RiftSnapshot returns every registered rift in insertion order. Payload
// compilation depends on this ordering being stable.
func (e *Environment) RiftSnapshot() []NamedRift {
	e.mu.RLock()
	defer e.mu.RUnlock()
	snapshot := make([]NamedRift, 0, len(e.riftOrder))
	for _, name := range e.riftOrder {
		snapshot = append(snapshot, NamedRift{Name: name, Body: e.rifts[name]})
	}
	return snapshot
}

// RiftNames returns the registered rift names in insertion order.
func (e *Environment) RiftNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, len(e.riftOrder))
	copy(names, e.riftOrder)
	return names
}

// TaskNames returns the registered task names, sorted.
func (e *Environment) TaskNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.tasks))
	for name := range e.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// VariableCount returns the number of bound variables.
func (e *Environment) VariableCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.variables)
}

// Reset clears variables, rifts, tasks, and the target language, and
// purges the artifact cache.
func (e *Environment) Reset() {
	e.mu.Lock()
	e.variables = make(map[string]Value)
	e.rifts = make(map[string][]lang.Node)
	e.riftOrder = nil
	e.tasks = make(map[string][]lang.Node)
	e.target = ""
	e.mu.Unlock()

	e.artifacts.Purge()
}
