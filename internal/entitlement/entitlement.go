package entitlement

import "hotmess/internal/domain"

// Entitlements is the quota/permission envelope for a RIGHT NOW poster.
// Values are snapshots; callers recompute instead of mutating.
type Entitlements struct {
	Membership     domain.MembershipTier `json:"membership"`
	XpTier         domain.XpTier         `json:"xpTier"`
	MaxPostLength  int                   `json:"maxPostLength"`
	MaxRadiusKm    float64               `json:"maxRadiusKm"`
	DailyPostLimit int                   `json:"dailyPostLimit"` // enforced by the right-now service
	CanAttachMedia bool                  `json:"canAttachMedia"`
	CanBoost       bool                  `json:"canBoost"`
}

// Profile is the tier-dependent part of Entitlements.
type Profile struct {
	MaxPostLength  int     `json:"maxPostLength"`
	MaxRadiusKm    float64 `json:"maxRadiusKm"`
	DailyPostLimit int     `json:"dailyPostLimit"`
	CanAttachMedia bool    `json:"canAttachMedia"`
	CanBoost       bool    `json:"canBoost"`
}

var (
	freeProfile    = Profile{MaxPostLength: 200, MaxRadiusKm: 5, DailyPostLimit: 3}
	hnhProfile     = Profile{MaxPostLength: 400, MaxRadiusKm: 15, DailyPostLimit: 10, CanAttachMedia: true}
	partnerProfile = Profile{MaxPostLength: 500, MaxRadiusKm: 20, DailyPostLimit: 30, CanAttachMedia: true, CanBoost: true}
	iconProfile    = Profile{MaxPostLength: 600, MaxRadiusKm: 25, DailyPostLimit: 20, CanAttachMedia: true, CanBoost: true}
)

// profiles maps every membership tier to its profile. Vendor and sponsor share one.
var profiles = map[domain.MembershipTier]Profile{
	domain.MembershipFree:    freeProfile,
	domain.MembershipHnH:     hnhProfile,
	domain.MembershipVendor:  partnerProfile,
	domain.MembershipSponsor: partnerProfile,
	domain.MembershipIcon:    iconProfile,
}

// Profiles returns a copy of the profile of every known membership tier.
func Profiles() map[domain.MembershipTier]Profile {
	out := make(map[domain.MembershipTier]Profile, len(profiles))
	for m, p := range profiles {
		out[m] = p
	}
	return out
}

// ProfileFor returns the profile of a membership tier; unknown tiers get the free profile.
func ProfileFor(m domain.MembershipTier) Profile {
	if p, ok := profiles[m]; ok {
		return p
	}
	return freeProfile
}

// Resolve computes the entitlements for a membership and XP tier pair.
// It is total: unrecognised memberships resolve to the free profile.
// The XP tier is carried through for display and does not change any limit yet.
func Resolve(membership domain.MembershipTier, xp domain.XpTier) Entitlements {
	p := ProfileFor(membership)
	return Entitlements{
		Membership:     membership,
		XpTier:         xp,
		MaxPostLength:  p.MaxPostLength,
		MaxRadiusKm:    p.MaxRadiusKm,
		DailyPostLimit: p.DailyPostLimit,
		CanAttachMedia: p.CanAttachMedia,
		CanBoost:       p.CanBoost,
	}
}

// MaxRadiusM is the radius ceiling in meters.
func (e Entitlements) MaxRadiusM() float64 {
	return e.MaxRadiusKm * 1000
}
