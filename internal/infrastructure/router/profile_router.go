package router

import (
	"strings"

	"agency-itinerary-service/internal/domain/entity"
	"agency-itinerary-service/pkg/logger"
)

// ProfileRouter resolves the source profile that handles a feed
type ProfileRouter struct {
	profiles []entity.SourceProfile
	logger   logger.Logger
}

// NewProfileRouter creates a new profile router
func NewProfileRouter(logger logger.Logger) *ProfileRouter {
	return &ProfileRouter{
		profiles: make([]entity.SourceProfile, 0),
		logger:   logger,
	}
}

// Register registers a profile. A later profile with the same name replaces
// the earlier one.
func (r *ProfileRouter) Register(profile entity.SourceProfile) {
	for i, p := range r.profiles {
		if strings.EqualFold(p.Name, profile.Name) {
			r.profiles[i] = profile
			r.logger.Info("Replaced profile", "profile", profile.Name)
			return
		}
	}
	r.profiles = append(r.profiles, profile)
	r.logger.Debug("Registered profile", "profile", profile.Name, "sourceTable", profile.SourceTable)
}

// Resolve returns the profile matching a profile name or, failing that, a
// source table name. Both comparisons ignore case.
func (r *ProfileRouter) Resolve(key string) (entity.SourceProfile, bool) {
	key = strings.TrimSpace(key)
	for _, p := range r.profiles {
		if strings.EqualFold(p.Name, key) {
			return p, true
		}
	}
	for _, p := range r.profiles {
		if strings.EqualFold(p.SourceTable, key) {
			return p, true
		}
	}
	return entity.SourceProfile{}, false
}

// Names lists the registered profile names in registration order
func (r *ProfileRouter) Names() []string {
	names := make([]string, len(r.profiles))
	for i, p := range r.profiles {
		names[i] = p.Name
	}
	return names
}
