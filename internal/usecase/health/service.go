package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates an optional dependency is failing; requests may
	// return fewer results.
	Degraded Status = "degraded"
	// Unhealthy indicates no catalog is loaded; nothing can be served.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	catalogs  CatalogSource
	cache     Pinger
	embedding EmbeddingChecker
	metadata  Pinger
}

// New creates a Service. cache, embedding and metadata can be nil.
func New(catalogs CatalogSource, cache Pinger, embedding EmbeddingChecker, metadata Pinger) *Service {
	return &Service{catalogs: catalogs, cache: cache, embedding: embedding, metadata: metadata}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	_, err := s.catalogs.Current()
	checks["catalog"] = result(err)

	if s.cache != nil {
		checks["cache"] = result(s.cache.Ping(ctx))
	}
	if s.embedding != nil {
		checks["embedding"] = result(s.embedding.HealthCheck(ctx))
	}
	if s.metadata != nil {
		checks["metadata"] = result(s.metadata.Ping(ctx))
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}
	if checks["catalog"] == CheckError {
		status = Unhealthy
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
