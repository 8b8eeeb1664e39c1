package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates the server is up but searches will fail.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckMissing indicates the search index does not exist.
	CheckMissing CheckResult = "missing"
	// CheckSkipped indicates the check could not run.
	CheckSkipped CheckResult = "skipped"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db    DBPinger
	index IndexChecker
	name  string
}

// New creates a Service. index can be nil to skip the index check.
func New(db DBPinger, index IndexChecker, indexName string) *Service {
	return &Service{db: db, index: index, name: indexName}
}

// Check pings the database, then looks for the search index.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)

	if err := s.db.Ping(ctx); err != nil {
		checks["database"] = CheckError
		if s.index != nil {
			checks["index"] = CheckSkipped
		}
		return Report{Status: Unhealthy, Checks: checks}
	}
	checks["database"] = CheckOK

	status := Healthy
	if s.index != nil {
		exists, err := s.index.IndexExists(ctx, s.name)
		switch {
		case err != nil:
			checks["index"] = CheckError
			status = Degraded
		case !exists:
			checks["index"] = CheckMissing
			status = Degraded
		default:
			checks["index"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks}
}
