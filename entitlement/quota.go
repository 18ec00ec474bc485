package entitlement

type DenyReason string

const (
	DenyApplicationLimitReached DenyReason = "APPLICATION_LIMIT_REACHED"
	DenyMissionLimitReached     DenyReason = "MISSION_LIMIT_REACHED"
	DenyUrgentNotAllowed        DenyReason = "URGENT_NOT_ALLOWED"
	DenySearchNotAllowed        DenyReason = "SEARCH_NOT_ALLOWED"
)

// Decision is the typed outcome of a quota or gate check. Denials carry a
// reason from the closed set above so the client can render the matching
// upsell path; they are values, not errors.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

func Allow() Decision            { return Decision{Allowed: true} }
func Deny(r DenyReason) Decision { return Decision{Reason: r} }

// CheckApplicationQuota gates a worker submitting one more application.
// activeCount is the worker's current non-terminal application count; a nil
// limit means unlimited.
func CheckApplicationQuota(ent Entitlement, activeCount int64) Decision {
	if ent.MaxActiveApplications == nil {
		return Allow()
	}
	if activeCount >= int64(*ent.MaxActiveApplications) {
		return Deny(DenyApplicationLimitReached)
	}
	return Allow()
}

// CheckMissionQuota gates an establishment posting one more mission.
func CheckMissionQuota(ent Entitlement, activeCount int64) Decision {
	if ent.MaxActiveMissions == nil {
		return Allow()
	}
	if activeCount >= int64(*ent.MaxActiveMissions) {
		return Deny(DenyMissionLimitReached)
	}
	return Allow()
}

// CheckUrgentPost gates posting an urgent mission. On allow the caller must
// snapshot ent.UrgentMissionFeePercent onto the mission row so later plan
// edits cannot retroactively change the fee.
func CheckUrgentPost(ent Entitlement) Decision {
	if !ent.CanPostUrgent {
		return Deny(DenyUrgentNotAllowed)
	}
	return Allow()
}

// CheckWorkerSearch gates the worker-search listing itself.
func CheckWorkerSearch(ent Entitlement) Decision {
	if !ent.CanSearchWorkers {
		return Deny(DenySearchNotAllowed)
	}
	return Allow()
}
