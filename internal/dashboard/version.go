package dashboard

// Service metadata
const ServiceName = "student-records-dashboard"

// Build-time injection variables, set via -ldflags:
//
//	go build -ldflags="-X 'github.com/Mehdichaaki/dashbord/internal/dashboard.Version=1.0.0'" ./cmd/dashboard
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
)
