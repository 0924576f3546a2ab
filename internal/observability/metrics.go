package observability

import (
	"strconv"
	"sync"
	"time"
)

type routeStat struct {
	count         int64
	totalDuration time.Duration
}

// Metrics keeps in-process request and error counters per route.
type Metrics struct {
	mu     sync.Mutex
	routes map[string]*routeStat
	errors map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		routes: make(map[string]*routeStat),
		errors: make(map[string]int64),
	}
}

// RecordRequest accounts a completed request.
func (m *Metrics) RecordRequest(path, method string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	key := routeKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	stat, ok := m.routes[key]
	if !ok {
		stat = &routeStat{}
		m.routes[key] = stat
	}
	stat.count++
	stat.totalDuration += duration
}

// RecordError accounts a request that ended with the given error code.
func (m *Metrics) RecordError(path, method, code string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[path+"|"+method+"|"+code]++
}

// RequestCount reports how many requests matched the route key.
func (m *Metrics) RequestCount(path, method string, status int) int64 {
	if m == nil {
		return 0
	}
	key := routeKey(path, method, status)
	m.mu.Lock()
	defer m.mu.Unlock()
	if stat, ok := m.routes[key]; ok {
		return stat.count
	}
	return 0
}

func routeKey(path, method string, status int) string {
	return path + "|" + method + "|" + strconv.Itoa(status)
}
