// Package platforms wires every source adapter into a hunt registry.
package platforms

import (
	"github.com/spigell/gig-hunter/internal/hunt"
	"github.com/spigell/gig-hunter/internal/platforms/angellist"
	"github.com/spigell/gig-hunter/internal/platforms/freelancer"
	"github.com/spigell/gig-hunter/internal/platforms/indeed"
	"github.com/spigell/gig-hunter/internal/platforms/upwork"
	"github.com/spigell/gig-hunter/internal/platforms/wellfound"
	"github.com/spigell/gig-hunter/internal/platforms/weworkremotely"
)

func Register(r *hunt.Registry) {
	r.Register(upwork.Platform, upwork.Factory)
	r.Register(freelancer.Platform, freelancer.Factory)
	r.Register(indeed.Platform, indeed.Factory)
	r.Register(angellist.Platform, angellist.Factory)
	r.Register(wellfound.Platform, wellfound.Factory)
	r.Register(weworkremotely.Platform, weworkremotely.Factory)
}

// NewRegistry returns a registry with all platforms.
func NewRegistry() *hunt.Registry {
	r := hunt.NewRegistry()
	Register(r)
	return r
}
