package entitlement

import "time"

type VisibilityLevel string

const (
	VisibilityFull     VisibilityLevel = "FULL"
	VisibilityRedacted VisibilityLevel = "REDACTED"
	VisibilityHidden   VisibilityLevel = "HIDDEN"
)

type RedactionReason string

const (
	ReasonBasicLimitReached        RedactionReason = "BASIC_LIMIT_REACHED"
	ReasonUrgentPremiumOnly        RedactionReason = "URGENT_PREMIUM_ONLY"
	ReasonRecentMissionPremiumOnly RedactionReason = "RECENT_MISSION_PREMIUM_ONLY"

	// Worker-search lock; surfaced to clients as is_locked=true rather than
	// as a reason string.
	ReasonProfilePremiumOnly RedactionReason = "PROFILE_PREMIUM_ONLY"
)

// Visibility is the per-item redaction verdict. The engine only tags; the
// presentation layer masks fields accordingly and never drops items, so
// counts and pagination stay identical across access levels.
type Visibility struct {
	Level  VisibilityLevel
	Reason RedactionReason
}

func Full() Visibility   { return Visibility{Level: VisibilityFull} }
func Hidden() Visibility { return Visibility{Level: VisibilityHidden} }

func Redacted(r RedactionReason) Visibility {
	return Visibility{Level: VisibilityRedacted, Reason: r}
}

// MoreRestrictiveThan orders verdicts FULL > REDACTED > HIDDEN.
func (v Visibility) MoreRestrictiveThan(o Visibility) bool {
	return v.rank() < o.rank()
}

func (v Visibility) rank() int {
	switch v.Level {
	case VisibilityFull:
		return 2
	case VisibilityRedacted:
		return 1
	default:
		return 0
	}
}

// MissionItem is the minimal view of a mission the redaction ladder needs.
type MissionItem interface {
	Urgent() bool
	PostedAt() time.Time
}

// BasicVisibleMissions is how many fully visible missions a BASIC caller
// gets per result page before the remainder is redacted.
const BasicVisibleMissions = 3

// RedactMissions computes a visibility verdict per mission, order preserving,
// single pass. Rules apply top to bottom, first match wins:
// non-validated callers see nothing; premium and internal callers see
// everything; basic callers hit the urgent gate, then the recency gate, then
// the visible-count ceiling. The returned slice is parallel to items.
func RedactMissions(items []MissionItem, ent Entitlement, now time.Time) []Visibility {
	out := make([]Visibility, len(items))

	if ent.AccessLevel == AccessNotValidated {
		for i := range out {
			out[i] = Hidden()
		}
		return out
	}

	if ent.AccessLevel == AccessPremium || ent.AccessLevel == AccessOther {
		for i := range out {
			out[i] = Full()
		}
		return out
	}

	visible := 0
	for i, item := range items {
		switch {
		case item.Urgent() && !ent.CanViewUrgentMissions:
			out[i] = Redacted(ReasonUrgentPremiumOnly)
		case now.Sub(item.PostedAt()) < time.Duration(ent.MissionViewDelayHours)*time.Hour:
			out[i] = Redacted(ReasonRecentMissionPremiumOnly)
		case visible >= BasicVisibleMissions:
			out[i] = Redacted(ReasonBasicLimitReached)
		default:
			out[i] = Full()
			visible++
		}
	}

	return out
}

// RedactWorkers is the worker-search variant. A locked card keeps only the
// name-initial avatar, title and city; bio, contact and the full speciality
// list need CanViewFullProfiles. The verdict is uniform across the page, so
// only the count matters.
func RedactWorkers(count int, ent Entitlement) []Visibility {
	out := make([]Visibility, count)

	verdict := Full()
	switch {
	case ent.AccessLevel == AccessNotValidated:
		verdict = Hidden()
	case ent.AccessLevel == AccessBasic && !ent.CanViewFullProfiles:
		verdict = Redacted(ReasonProfilePremiumOnly)
	}

	for i := range out {
		out[i] = verdict
	}
	return out
}
