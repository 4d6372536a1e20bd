package graph

import (
	"context"
	"strings"
	"sync"
)

// AccessMode tells reads from writes in recorded calls.
type AccessMode string

const (
	AccessRead  AccessMode = "read"
	AccessWrite AccessMode = "write"
)

// ExecutedQuery captures a cypher statement and parameters executed against the graph.
type ExecutedQuery struct {
	Mode   AccessMode
	Query  string
	Params map[string]any
}

type outcome struct {
	result Result
	err    error
}

type rule struct {
	fragment string
	outcome
}

// MemoryClient is a scripted Client for tests. A call is answered, in order
// of precedence, by the global error, the first rule whose fragment occurs in
// the statement, or the next queued outcome for its access mode. With nothing
// scripted it returns an empty Result.
type MemoryClient struct {
	mu           sync.Mutex
	calls        []ExecutedQuery
	rules        []rule
	queues       map[AccessMode][]outcome
	err          error
	connectivity error
	closed       bool
}

// NewMemoryClient returns an empty scripted client.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{queues: make(map[AccessMode][]outcome)}
}

// WithError makes every subsequent Execute call fail with err.
func (m *MemoryClient) WithError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithConnectivityError forces VerifyConnectivity to return the supplied error.
func (m *MemoryClient) WithConnectivityError(err error) *MemoryClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectivity = err
	return m
}

// Respond answers every statement containing fragment with res, regardless of
// queue order. Earlier rules win.
func (m *MemoryClient) Respond(fragment string, res Result) {
	m.addRule(rule{fragment: fragment, outcome: outcome{result: res}})
}

// RespondError fails every statement containing fragment with err.
func (m *MemoryClient) RespondError(fragment string, err error) {
	m.addRule(rule{fragment: fragment, outcome: outcome{err: err}})
}

func (m *MemoryClient) addRule(r rule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules = append(m.rules, r)
}

// PushReadResult queues the result of the next ExecuteRead call.
func (m *MemoryClient) PushReadResult(res Result) {
	m.push(AccessRead, outcome{result: res})
}

// PushWriteResult queues the result of the next ExecuteWrite call.
func (m *MemoryClient) PushWriteResult(res Result) {
	m.push(AccessWrite, outcome{result: res})
}

// PushWriteError queues a failure for the next ExecuteWrite call.
func (m *MemoryClient) PushWriteError(err error) {
	m.push(AccessWrite, outcome{err: err})
}

func (m *MemoryClient) push(mode AccessMode, o outcome) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queues[mode] = append(m.queues[mode], o)
}

func (m *MemoryClient) ExecuteWrite(_ context.Context, cypher string, params map[string]any) (Result, error) {
	return m.execute(AccessWrite, cypher, params)
}

func (m *MemoryClient) ExecuteRead(_ context.Context, cypher string, params map[string]any) (Result, error) {
	return m.execute(AccessRead, cypher, params)
}

func (m *MemoryClient) execute(mode AccessMode, cypher string, params map[string]any) (Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return Result{}, m.err
	}
	m.calls = append(m.calls, ExecutedQuery{Mode: mode, Query: cypher, Params: cloneMap(params)})

	for _, r := range m.rules {
		if strings.Contains(cypher, r.fragment) {
			return r.result, r.err
		}
	}

	queue := m.queues[mode]
	if len(queue) == 0 {
		return Result{}, nil
	}
	next := queue[0]
	m.queues[mode] = queue[1:]
	return next.result, next.err
}

func (m *MemoryClient) VerifyConnectivity(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connectivity
}

func (m *MemoryClient) Close(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MemoryClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Calls returns every executed statement in order.
func (m *MemoryClient) Calls() []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ExecutedQuery(nil), m.calls...)
}

// WriteCalls returns a snapshot of executed write queries.
func (m *MemoryClient) WriteCalls() []ExecutedQuery {
	return m.callsFor(AccessWrite)
}

// ReadCalls returns a snapshot of executed read queries.
func (m *MemoryClient) ReadCalls() []ExecutedQuery {
	return m.callsFor(AccessRead)
}

func (m *MemoryClient) callsFor(mode AccessMode) []ExecutedQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []ExecutedQuery
	for _, call := range m.calls {
		if call.Mode == mode {
			out = append(out, call)
		}
	}
	return out
}

func cloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
