package monitoring

import (
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Metrics accumulates per-request counters for the metrics endpoint.
type Metrics struct {
	mu              sync.RWMutex
	RequestCount    int64            `json:"request_count"`
	RequestDuration time.Duration    `json:"avg_request_duration_ms"`
	ActiveRequests  int64            `json:"active_requests"`
	ErrorCount      int64            `json:"error_count"`
	StatusCodes     map[string]int64 `json:"status_codes"`
	Endpoints       map[string]int64 `json:"endpoint_calls"`
	StartTime       time.Time        `json:"start_time"`
	LastRequest     time.Time        `json:"last_request"`
	totalDuration   time.Duration
}

func NewMetrics() *Metrics {
	return &Metrics{
		StatusCodes: make(map[string]int64),
		Endpoints:   make(map[string]int64),
		StartTime:   time.Now(),
	}
}

func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		m.mu.Lock()
		m.ActiveRequests++
		m.mu.Unlock()

		c.Next()

		duration := time.Since(start)
		statusCode := c.Writer.Status()
		endpoint := c.Request.Method + " " + c.FullPath()

		m.mu.Lock()
		m.RequestCount++
		m.ActiveRequests--
		m.totalDuration += duration
		m.RequestDuration = m.totalDuration / time.Duration(m.RequestCount)
		m.LastRequest = time.Now()

		if statusCode >= 400 {
			m.ErrorCount++
		}
		m.StatusCodes[http.StatusText(statusCode)]++
		m.Endpoints[endpoint]++
		m.mu.Unlock()
	}
}

func (m *Metrics) Snapshot() *Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := &Metrics{
		RequestCount:    m.RequestCount,
		RequestDuration: m.RequestDuration,
		ActiveRequests:  m.ActiveRequests,
		ErrorCount:      m.ErrorCount,
		StatusCodes:     make(map[string]int64),
		Endpoints:       make(map[string]int64),
		StartTime:       m.StartTime,
		LastRequest:     m.LastRequest,
	}

	for k, v := range m.StatusCodes {
		snapshot.StatusCodes[k] = v
	}
	for k, v := range m.Endpoints {
		snapshot.Endpoints[k] = v
	}

	return snapshot
}

type SystemMetrics struct {
	Uptime         time.Duration `json:"uptime"`
	MemoryUsage    MemoryStats   `json:"memory"`
	GoroutineCount int           `json:"goroutine_count"`
	CPUCount       int           `json:"cpu_count"`
	GoVersion      string        `json:"go_version"`
}

type MemoryStats struct {
	Alloc        uint64 `json:"alloc_mb"`
	TotalAlloc   uint64 `json:"total_alloc_mb"`
	Sys          uint64 `json:"sys_mb"`
	NumGC        uint32 `json:"num_gc"`
	NextGC       uint64 `json:"next_gc_mb"`
	LastGC       string `json:"last_gc"`
	GCPauseTotal string `json:"gc_pause_total"`
}

func (m *Metrics) SystemSnapshot() SystemMetrics {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	return SystemMetrics{
		Uptime: time.Since(m.StartTime),
		MemoryUsage: MemoryStats{
			Alloc:        bToMb(stats.Alloc),
			TotalAlloc:   bToMb(stats.TotalAlloc),
			Sys:          bToMb(stats.Sys),
			NumGC:        stats.NumGC,
			NextGC:       bToMb(stats.NextGC),
			LastGC:       time.Unix(0, int64(stats.LastGC)).Format(time.RFC3339),
			GCPauseTotal: time.Duration(stats.PauseTotalNs).String(),
		},
		GoroutineCount: runtime.NumGoroutine(),
		CPUCount:       runtime.NumCPU(),
		GoVersion:      runtime.Version(),
	}
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}

func (m *Metrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"application": m.Snapshot(),
			"system":      m.SystemSnapshot(),
			"timestamp":   time.Now(),
		})
	}
}
