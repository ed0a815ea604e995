package services

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

type MetricSample struct {
	CapturedAt        time.Time `json:"capturedAt"`
	ProcessRSSBytes   int64     `json:"processRssBytes"`
	SystemMemoryTotal int64     `json:"systemMemoryTotalBytes"`
	SystemMemoryUsed  int64     `json:"systemMemoryUsedBytes"`
	DiskTotalBytes    int64     `json:"diskTotalBytes"`
	DiskUsedBytes     int64     `json:"diskUsedBytes"`
	ProcessCpuLoad    float64   `json:"processCpuLoad"`
	SystemCpuLoad     float64   `json:"systemCpuLoad"`
}

func CaptureMetrics(diskPath string) MetricSample {
	proc, _ := process.NewProcess(int32(os.Getpid()))
	memStat, _ := mem.VirtualMemory()
	diskStat, err := disk.Usage(diskPath)
	if err != nil {
		diskStat, _ = disk.Usage("/")
	}
	processRSS := int64(0)
	processCPU := float64(0)
	if proc != nil {
		rss, _ := proc.MemoryInfo()
		if rss != nil {
			processRSS = int64(rss.RSS)
		}
		cpuPerc, _ := proc.CPUPercent()
		processCPU = cpuPerc / 100.0
	}
	sysCPU, _ := cpu.Percent(0, false)
	sysCPUValue := 0.0
	if len(sysCPU) > 0 {
		sysCPUValue = sysCPU[0] / 100.0
	}
	sample := MetricSample{
		CapturedAt:      time.Now().UTC(),
		ProcessRSSBytes: processRSS,
		ProcessCpuLoad:  processCPU,
		SystemCpuLoad:   sysCPUValue,
	}
	if memStat != nil {
		sample.SystemMemoryTotal = int64(memStat.Total)
		sample.SystemMemoryUsed = int64(memStat.Total - memStat.Available)
	}
	if diskStat != nil {
		sample.DiskTotalBytes = int64(diskStat.Total)
		sample.DiskUsedBytes = int64(diskStat.Used)
	}
	return sample
}

const metricsHistoryLimit = 500

// MetricsHub fans samples out to connected websocket clients and keeps a
// bounded history so the dashboard can backfill its charts on connect.
type MetricsHub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]bool
	history []MetricSample
	ch      chan MetricSample
}

func NewMetricsHub() *MetricsHub {
	return &MetricsHub{
		clients: map[*websocket.Conn]bool{},
		ch:      make(chan MetricSample, 16),
	}
}

func (h *MetricsHub) Run(ctx context.Context) {
	for {
		select {
		case sample := <-h.ch:
			h.mu.Lock()
			h.history = append(h.history, sample)
			if len(h.history) > metricsHistoryLimit {
				h.history = h.history[len(h.history)-metricsHistoryLimit:]
			}
			for conn := range h.clients {
				_ = conn.WriteJSON(sample)
			}
			h.mu.Unlock()
		case <-ctx.Done():
			return
		}
	}
}

func (h *MetricsHub) Broadcast(sample MetricSample) {
	select {
	case h.ch <- sample:
	default:
	}
}

// History returns the newest samples in chronological order, up to limit.
func (h *MetricsHub) History(limit int) []MetricSample {
	h.mu.Lock()
	defer h.mu.Unlock()
	if limit <= 0 || limit > len(h.history) {
		limit = len(h.history)
	}
	items := make([]MetricSample, limit)
	copy(items, h.history[len(h.history)-limit:])
	return items
}

func (h *MetricsHub) Add(conn *websocket.Conn) {
	h.mu.Lock()
	h.clients[conn] = true
	h.mu.Unlock()
}

func (h *MetricsHub) Remove(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
}
