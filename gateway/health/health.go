package health

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/croptivize/catalog/gateway/config"
	"github.com/croptivize/catalog/pkg/logger"
)

// InstanceHealth represents the health status of one catalog instance
type InstanceHealth struct {
	Status    string        `json:"status"` // healthy, unhealthy
	URL       string        `json:"url"`
	Latency   time.Duration `json:"latency_ms"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// GatewayHealth represents the overall gateway health
type GatewayHealth struct {
	Gateway   string           `json:"gateway"`
	Status    string           `json:"status"` // healthy, degraded, unhealthy
	Instances []InstanceHealth `json:"instances"`
	Uptime    time.Duration    `json:"uptime_seconds"`
}

// HealthChecker checks health of the catalog instances
type HealthChecker struct {
	config    *config.GatewayConfig
	client    *http.Client
	startTime time.Time
}

// NewHealthChecker creates a new health checker
func NewHealthChecker(cfg *config.GatewayConfig) *HealthChecker {
	return &HealthChecker{
		config: cfg,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		startTime: time.Now(),
	}
}

// CheckInstance checks health of a single catalog instance
func (h *HealthChecker) CheckInstance(ctx context.Context, baseURL string) InstanceHealth {
	start := time.Now()
	healthURL := baseURL + h.config.Catalog.HealthCheck

	result := InstanceHealth{
		URL:       baseURL,
		Timestamp: time.Now(),
	}

	req, err := http.NewRequestWithContext(ctx, "GET", healthURL, nil)
	if err != nil {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("Failed to create request: %v", err)
		result.Latency = time.Since(start)
		return result
	}

	resp, err := h.client.Do(req)
	if err != nil {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("Failed to reach instance: %v", err)
		result.Latency = time.Since(start)
		return result
	}
	defer resp.Body.Close()

	result.Latency = time.Since(start)

	if resp.StatusCode == http.StatusOK {
		result.Status = "healthy"
	} else {
		result.Status = "unhealthy"
		result.Error = fmt.Sprintf("Unexpected status code: %d", resp.StatusCode)
	}

	return result
}

// CheckAllInstances checks every catalog instance concurrently.
func (h *HealthChecker) CheckAllInstances(ctx context.Context) GatewayHealth {
	instances := make([]InstanceHealth, len(h.config.Catalog.Instances))
	var wg sync.WaitGroup

	for i, baseURL := range h.config.Catalog.Instances {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			health := h.CheckInstance(ctx, url)
			instances[i] = health

			if health.Status == "healthy" {
				logger.Logger.Debug().
					Str("instance", url).
					Dur("latency", health.Latency).
					Msg("Instance health check")
			} else {
				logger.Logger.Warn().
					Str("instance", url).
					Str("error", health.Error).
					Msg("Instance health check failed")
			}
		}(i, baseURL)
	}

	wg.Wait()

	return GatewayHealth{
		Gateway:   "catalog-gateway",
		Status:    overallStatus(instances),
		Instances: instances,
		Uptime:    time.Since(h.startTime),
	}
}

func overallStatus(instances []InstanceHealth) string {
	healthyCount := 0
	for _, inst := range instances {
		if inst.Status == "healthy" {
			healthyCount++
		}
	}

	switch {
	case healthyCount == len(instances):
		return "healthy"
	case healthyCount > 0:
		return "degraded"
	default:
		return "unhealthy"
	}
}

// QuickCheck reports on the gateway process itself, no downstream calls.
func (h *HealthChecker) QuickCheck() map[string]interface{} {
	return map[string]interface{}{
		"status":    "healthy",
		"gateway":   "catalog-gateway",
		"uptime":    time.Since(h.startTime).Seconds(),
		"timestamp": time.Now(),
	}
}
