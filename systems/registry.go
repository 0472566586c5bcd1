package systems

// SystemInfo describes a movement system for logging and HUD display.
type SystemInfo struct {
	ID          string // Schedule identifier
	Name        string // Display name
	Description string // What this system does
	Category    string // Phase the system runs in ("startup", "variable", "fixed")
}

// System IDs used when registering with the schedule.
const (
	IDSpawn     = "spawn"
	IDInput     = "input"
	IDVelocity  = "velocity"
	IDIntegrate = "integrate"
	IDTrace     = "trace"
)

// SystemRegistry holds metadata about all systems.
// This centralizes system naming so the HUD and perf logging stay in sync.
type SystemRegistry struct {
	systems []SystemInfo
	byID    map[string]SystemInfo
}

// NewSystemRegistry creates a registry with all known systems.
func NewSystemRegistry() *SystemRegistry {
	reg := &SystemRegistry{
		byID: make(map[string]SystemInfo),
	}
	reg.registerDefaults()
	return reg
}

// registerDefaults adds all known systems to the registry.
// Update this when adding new systems.
func (r *SystemRegistry) registerDefaults() {
	r.Register(SystemInfo{ID: IDSpawn, Name: "Spawn", Description: "Creates the controllable player", Category: "startup"})

	r.Register(SystemInfo{ID: IDInput, Name: "Input", Description: "Samples held keys into movement intent", Category: "variable"})

	r.Register(SystemInfo{ID: IDVelocity, Name: "Velocity", Description: "Rotates intent into world-space velocity", Category: "fixed"})
	r.Register(SystemInfo{ID: IDIntegrate, Name: "Integrate", Description: "Advances translation by velocity", Category: "fixed"})
	r.Register(SystemInfo{ID: IDTrace, Name: "Trace", Description: "Records post-step state to CSV", Category: "fixed"})
}

// Register adds a system to the registry. Re-registering an ID replaces its metadata.
func (r *SystemRegistry) Register(info SystemInfo) {
	if _, ok := r.byID[info.ID]; ok {
		for i := range r.systems {
			if r.systems[i].ID == info.ID {
				r.systems[i] = info
			}
		}
	} else {
		r.systems = append(r.systems, info)
	}
	r.byID[info.ID] = info
}

// Get returns system info by ID.
func (r *SystemRegistry) Get(id string) (SystemInfo, bool) {
	info, ok := r.byID[id]
	return info, ok
}

// GetName returns the display name for a system ID.
// Falls back to the ID itself if not found.
func (r *SystemRegistry) GetName(id string) string {
	if info, ok := r.Get(id); ok {
		return info.Name
	}
	return id
}

// All returns all registered systems.
func (r *SystemRegistry) All() []SystemInfo {
	return r.systems
}

// ByCategory returns systems filtered by category.
func (r *SystemRegistry) ByCategory(category string) []SystemInfo {
	var result []SystemInfo
	for _, info := range r.systems {
		if info.Category == category {
			result = append(result, info)
		}
	}
	return result
}

// Categories returns all unique categories in registration order, which
// matches the order phases run in.
func (r *SystemRegistry) Categories() []string {
	seen := make(map[string]bool)
	var cats []string
	for _, info := range r.systems {
		if !seen[info.Category] {
			seen[info.Category] = true
			cats = append(cats, info.Category)
		}
	}
	return cats
}
