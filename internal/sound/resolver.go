package sound

import (
	"log/slog"

	"grilltimer/internal/logging"
)

// Source is a resolved, playable alert sound.
type Source struct {
	Tier   Tier
	System SystemSoundID // set for TierSystem
	Path   string        // set for TierBundled and TierCustom
	Name   string
}

func (s Source) String() string {
	if s.Tier == TierSystem {
		return "system:" + s.System.String()
	}
	return s.Tier.String() + ":" + s.Name
}

// SystemSource returns the source for a system tone.
func SystemSource(id SystemSoundID) Source {
	if !id.Valid() {
		id = DefaultSystemSound
	}
	return Source{Tier: TierSystem, System: id, Name: id.String()}
}

// Resolution is the outcome of Resolve. When Deselect is set the caller
// must clear the selection's override before resolving again.
type Resolution struct {
	Source   Source
	Deselect bool
}

// Resolver picks one source for a selection: custom, then bundled, then
// the system tone. Missing files never fail; they degrade to the next tier.
type Resolver struct {
	catalog *Catalog
	bundled *Locator
	library *Library
	logger  *slog.Logger
}

// NewResolver creates a Resolver. Any of catalog, bundled or library may be
// nil, which makes that tier unavailable.
func NewResolver(catalog *Catalog, bundled *Locator, library *Library, logger *slog.Logger) *Resolver {
	return &Resolver{
		catalog: catalog,
		bundled: bundled,
		library: library,
		logger:  logging.OrDiscard(logger),
	}
}

// Resolve maps sel to a playable source. Without premium the bundled and
// custom tiers are skipped but the selection is kept.
func (r *Resolver) Resolve(sel Selection, premium bool) Resolution {
	fallback := SystemSource(sel.SystemID())

	if sel.Active() == TierSystem {
		return Resolution{Source: fallback}
	}
	if !premium {
		r.logger.Debug("sound tier needs premium; using system tone", "selection", sel.String())
		return Resolution{Source: fallback}
	}

	if id, ok := sel.CustomID(); ok {
		if src, ok := r.custom(id); ok {
			return Resolution{Source: src}
		}
		r.logger.Info("selected custom sound is missing; deselecting", "id", id)
		return Resolution{Source: fallback, Deselect: true}
	}

	if id, ok := sel.BundledID(); ok {
		if src, ok := r.bundledSource(id); ok {
			return Resolution{Source: src}
		}
		r.logger.Info("selected bundled sound is missing; deselecting", "id", id)
		return Resolution{Source: fallback, Deselect: true}
	}

	return Resolution{Source: fallback}
}

func (r *Resolver) custom(id string) (Source, bool) {
	if r.library == nil {
		return Source{}, false
	}
	cs, ok := r.library.Get(id)
	if !ok {
		return Source{}, false
	}
	path, ok := r.library.Locator().Find(cs.Filename)
	if !ok {
		return Source{}, false
	}
	return Source{Tier: TierCustom, Path: path, Name: cs.Name}, true
}

func (r *Resolver) bundledSource(id string) (Source, bool) {
	if r.catalog == nil || r.bundled == nil {
		return Source{}, false
	}
	bs, ok := r.catalog.Get(id)
	if !ok {
		return Source{}, false
	}
	path, ok := r.bundled.Find(bs.Filename)
	if !ok {
		return Source{}, false
	}
	return Source{Tier: TierBundled, Path: path, Name: bs.DisplayName}, true
}
