package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/kbukum/eurekaclient/component"
)

// Summary prints the startup banner: what each component is connected to,
// the HTTP routes served and a live health check.
type Summary struct {
	serviceName     string
	version         string
	startupDuration time.Duration
	out             io.Writer
}

// NewSummary creates a summary writing to out, or stdout when out is nil.
func NewSummary(serviceName, version string, out io.Writer) *Summary {
	if out == nil {
		out = os.Stdout
	}
	return &Summary{serviceName: serviceName, version: version, out: out}
}

// SetStartupDuration records the total startup time.
func (s *Summary) SetStartupDuration(d time.Duration) {
	s.startupDuration = d
}

// Display writes the banner for the components in registry.
func (s *Summary) Display(ctx context.Context, registry *component.Registry) {
	w := s.out
	fmt.Fprintf(w, "\n🚀 %s v%s started in %.2fs\n\n", s.serviceName, s.version, s.startupDuration.Seconds())

	descriptions := registry.Describe()
	if len(descriptions) == 0 {
		fmt.Fprintf(w, "   └── No components registered\n")
	} else {
		fmt.Fprintf(w, "📊 Infrastructure\n")
		for i, d := range descriptions {
			details := d.Details
			if d.Port > 0 {
				details = fmt.Sprintf("%s (:%d)", details, d.Port)
			}
			fmt.Fprintf(w, "   %s %s [%s]: %s\n", branch(i, len(descriptions)), d.Name, d.Type, details)
		}
	}

	var routes []component.Route
	for _, c := range registry.All() {
		if rp, ok := c.(component.RouteProvider); ok {
			routes = append(routes, rp.Routes()...)
		}
	}
	if len(routes) > 0 {
		fmt.Fprintf(w, "\n🌐 Routes (%d)\n", len(routes))
		for i, r := range routes {
			fmt.Fprintf(w, "   %s %-7s %s → %s\n", branch(i, len(routes)), r.Method, r.Path, r.Handler)
		}
	}

	health := registry.HealthAll(ctx)
	if len(health) > 0 {
		fmt.Fprintf(w, "\n🏥 Health Check\n")
		healthy := 0
		for i, h := range health {
			msg := ""
			if h.Message != "" {
				msg = " (" + h.Message + ")"
			}
			if h.Status == component.StatusHealthy {
				healthy++
			}
			fmt.Fprintf(w, "   %s %s %s: %s%s\n", branch(i, len(health)), healthIcon(h.Status), h.Name, strings.ToLower(string(h.Status)), msg)
		}
		if healthy == len(health) {
			fmt.Fprintf(w, "\n✅ All components healthy (%d/%d)\n", healthy, len(health))
		} else {
			fmt.Fprintf(w, "\n⚠️  Some components have issues (%d/%d healthy)\n", healthy, len(health))
		}
	}
	fmt.Fprintf(w, "\n")
}

func branch(i, n int) string {
	if i == n-1 {
		return "└──"
	}
	return "├──"
}

func healthIcon(status component.HealthStatus) string {
	switch status {
	case component.StatusHealthy:
		return "✅"
	case component.StatusDegraded:
		return "⚠️"
	case component.StatusUnhealthy:
		return "❌"
	default:
		return "❓"
	}
}
