package server

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/aristath/lookout/internal/database"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// SystemHandlers serves the monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	startupTime time.Time
	portfolioDB *database.DB
	quota       QuotaReporter
}

// QuotaReporter reports the market data client's remaining daily budget
type QuotaReporter interface {
	GetRemainingRequests() int
}

// SystemStatusResponse is the system status payload
type SystemStatusResponse struct {
	Status            string  `json:"status"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
	CPUPercent        float64 `json:"cpu_percent"`
	MemoryPercent     float64 `json:"memory_percent"`
	Goroutines        int     `json:"goroutines"`
	RemainingRequests int     `json:"remaining_requests"`
	Timestamp         string  `json:"timestamp"`
}

// DBInfo describes one database file
type DBInfo struct {
	Name   string  `json:"name"`
	Path   string  `json:"path"`
	SizeMB float64 `json:"size_mb"`
}

// DatabaseStatsResponse is the database stats payload
type DatabaseStatsResponse struct {
	Databases    []DBInfo `json:"databases"`
	TotalSizeMB  float64  `json:"total_size_mb"`
	LedgerWALMB  float64  `json:"ledger_wal_mb"`
	LedgerPages  int64    `json:"ledger_pages"`
	LedgerHealth string   `json:"ledger_health"`
	LastChecked  string   `json:"last_checked"`
}

// DiskUsageResponse is the disk usage payload
type DiskUsageResponse struct {
	DataDirMB float64 `json:"data_dir_mb"`
}

// NewSystemHandlers creates the system handlers
func NewSystemHandlers(
	log zerolog.Logger,
	dataDir string,
	portfolioDB *database.DB,
	quota QuotaReporter,
) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		dataDir:     dataDir,
		startupTime: time.Now(),
		portfolioDB: portfolioDB,
		quota:       quota,
	}
}

// HandleSystemStatus returns process health and the remaining market data
// request budget
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	response := SystemStatusResponse{
		Status:            "ok",
		UptimeSeconds:     time.Since(h.startupTime).Seconds(),
		CPUPercent:        cpuPercent,
		MemoryPercent:     memPercent,
		Goroutines:        runtime.NumGoroutine(),
		RemainingRequests: h.quota.GetRemainingRequests(),
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// HandleDatabaseStats returns per-file database sizes
func (h *SystemHandlers) HandleDatabaseStats(w http.ResponseWriter, r *http.Request) {
	databases := []DBInfo{}
	totalSizeMB := 0.0

	for _, name := range []string{"portfolio.db", "cache.db"} {
		path := filepath.Join(h.dataDir, name)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}

		sizeMB := float64(info.Size()) / 1024 / 1024
		totalSizeMB += sizeMB
		databases = append(databases, DBInfo{Name: name, Path: path, SizeMB: sizeMB})
	}

	response := DatabaseStatsResponse{
		Databases:   databases,
		TotalSizeMB: totalSizeMB,
		LastChecked: time.Now().UTC().Format(time.RFC3339),
	}

	if stats, err := h.portfolioDB.GetStats(); err == nil {
		response.LedgerWALMB = float64(stats.WALSizeBytes) / 1024 / 1024
		response.LedgerPages = stats.PageCount
	} else {
		h.log.Warn().Err(err).Msg("Failed to read ledger stats")
	}

	response.LedgerHealth = "ok"
	if err := h.portfolioDB.QuickCheck(r.Context()); err != nil {
		response.LedgerHealth = "unreachable"
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// HandleDiskUsage returns the total size of the data directory
func (h *SystemHandlers) HandleDiskUsage(w http.ResponseWriter, r *http.Request) {
	response := DiskUsageResponse{
		DataDirMB: h.getDirSize(h.dataDir),
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(response)
}

// getDirSize calculates total size of a directory in MB
func (h *SystemHandlers) getDirSize(dirPath string) float64 {
	var totalSize int64

	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip unreadable entries
		}
		if !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	if err != nil {
		h.log.Warn().Err(err).Str("dir", dirPath).Msg("Failed to calculate directory size")
		return 0
	}

	return float64(totalSize) / 1024 / 1024
}

// getSystemStats samples CPU and RAM usage percentages. The CPU sample
// uses a 100ms window so the status endpoint stays fast.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}
