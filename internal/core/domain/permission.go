package domain

// Feature is one of the gated sections of the bot. The set is closed:
// AllFeatures is the only list of valid values.
type Feature string

const (
	FeatureCalendar Feature = "calendar"
	FeaturePatients Feature = "patients"
	FeatureHistory  Feature = "history"
	FeatureImplants Feature = "implants"
	FeatureServices Feature = "services"
	FeatureFinance  Feature = "finance"
	FeatureExport   Feature = "export"
	FeatureSettings Feature = "settings"
)

// AllFeatures lists every feature in display order.
var AllFeatures = []Feature{
	FeatureCalendar,
	FeaturePatients,
	FeatureHistory,
	FeatureImplants,
	FeatureServices,
	FeatureFinance,
	FeatureExport,
	FeatureSettings,
}

// ParseFeature maps a raw key onto the closed feature set.
func ParseFeature(s string) (Feature, bool) {
	for _, f := range AllFeatures {
		if string(f) == s {
			return f, true
		}
	}
	return "", false
}

// Level is an access level on a feature. Ordered none < view < edit.
type Level string

const (
	LevelNone Level = "none"
	LevelView Level = "view"
	LevelEdit Level = "edit"
)

// ParseLevel maps a raw value onto a known level.
func ParseLevel(s string) (Level, bool) {
	switch Level(s) {
	case LevelNone, LevelView, LevelEdit:
		return Level(s), true
	}
	return "", false
}

// Next returns the level that follows l in the none -> view -> edit -> none cycle.
func (l Level) Next() Level {
	switch l {
	case LevelNone:
		return LevelView
	case LevelView:
		return LevelEdit
	default:
		return LevelNone
	}
}

func (l Level) rank() int {
	switch l {
	case LevelView:
		return 1
	case LevelEdit:
		return 2
	default:
		return 0
	}
}

// Satisfies reports whether holding l is enough for a requirement of required.
// LevelNone never satisfies anything, including a LevelNone requirement.
func (l Level) Satisfies(required Level) bool {
	if l.rank() == 0 {
		return false
	}
	switch required {
	case LevelView, LevelEdit:
		return l.rank() >= required.rank()
	}
	return false
}

// PermissionMap assigns a level to every feature. Maps built through the
// constructors below are total over AllFeatures.
type PermissionMap map[Feature]Level

// Level returns the level for f; absent features are LevelNone.
func (p PermissionMap) Level(f Feature) Level {
	if l, ok := p[f]; ok {
		return l
	}
	return LevelNone
}

// Clone returns an independent copy of p.
func (p PermissionMap) Clone() PermissionMap {
	out := make(PermissionMap, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Raw converts p into the string map persisted by the store.
func (p PermissionMap) Raw() map[string]string {
	out := make(map[string]string, len(p))
	for k, v := range p {
		out[string(k)] = string(v)
	}
	return out
}

// DefaultPermissions is what a newly invited assistant receives: view on the
// clinical sections, nothing on money, export and settings.
func DefaultPermissions() PermissionMap {
	return PermissionMap{
		FeatureCalendar: LevelView,
		FeaturePatients: LevelView,
		FeatureHistory:  LevelView,
		FeatureImplants: LevelView,
		FeatureServices: LevelView,
		FeatureFinance:  LevelNone,
		FeatureExport:   LevelNone,
		FeatureSettings: LevelNone,
	}
}

// FullPermissions grants edit on every feature. Owners always hold it.
func FullPermissions() PermissionMap {
	return uniform(LevelEdit)
}

// NoPermissions grants nothing.
func NoPermissions() PermissionMap {
	return uniform(LevelNone)
}

func uniform(l Level) PermissionMap {
	out := make(PermissionMap, len(AllFeatures))
	for _, f := range AllFeatures {
		out[f] = l
	}
	return out
}

// NormalizePermissions turns a stored map into a total PermissionMap.
// Unknown keys are dropped, unrecognised levels become LevelNone and features
// missing from raw take their DefaultPermissions value. Nothing defaults to edit.
func NormalizePermissions(raw map[string]string) PermissionMap {
	out := DefaultPermissions()
	for _, f := range AllFeatures {
		v, ok := raw[string(f)]
		if !ok {
			continue
		}
		if l, valid := ParseLevel(v); valid {
			out[f] = l
		} else {
			out[f] = LevelNone
		}
	}
	return out
}

// CanAccess reports whether perms allow required on feature.
func CanAccess(perms PermissionMap, feature Feature, required Level) bool {
	return perms.Level(feature).Satisfies(required)
}
