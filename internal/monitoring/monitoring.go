// Package monitoring exposes prometheus metrics on a dedicated port,
// including host CPU and memory gauges sampled via gopsutil.
package monitoring

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stayops_http_requests_total",
		Help: "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stayops_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})

	TasksApprovedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stayops_tasks_approved_total",
		Help: "Tasks approved since start.",
	})

	InventoryMovementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stayops_inventory_movements_total",
		Help: "Inventory ledger rows written, by type.",
	}, []string{"type"})

	cpuUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stayops_host_cpu_percent",
		Help: "Host CPU utilisation percent.",
	})

	memUsage = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stayops_host_memory_percent",
		Help: "Host memory utilisation percent.",
	})
)

// collectSystem samples host stats until ctx is cancelled.
func collectSystem(ctx context.Context) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
				cpuUsage.Set(percents[0])
			}
			if vm, err := mem.VirtualMemory(); err == nil {
				memUsage.Set(vm.UsedPercent)
			}
		}
	}
}

// Serve runs the metrics endpoint on its own port, apart from the API.
func Serve(ctx context.Context, port int) {
	go collectSystem(ctx)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: mux,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("[Monitoring] metrics listening on :%d", port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("[Monitoring] server stopped: %v", err)
	}
}
