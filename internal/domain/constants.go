package domain

// MembershipTier is the paid/unpaid account class.
type MembershipTier string

const (
	MembershipFree    MembershipTier = "free"
	MembershipHnH     MembershipTier = "hnh"
	MembershipVendor  MembershipTier = "vendor"
	MembershipSponsor MembershipTier = "sponsor"
	MembershipIcon    MembershipTier = "icon"
)

// MembershipTiers lists every known membership tier.
var MembershipTiers = []MembershipTier{MembershipFree, MembershipHnH, MembershipVendor, MembershipSponsor, MembershipIcon}

func (m MembershipTier) Valid() bool {
	for _, t := range MembershipTiers {
		if m == t {
			return true
		}
	}
	return false
}

// XpTier is the engagement class, independent of membership.
type XpTier string

const (
	XpFresh   XpTier = "fresh"
	XpRegular XpTier = "regular"
	XpSinner  XpTier = "sinner"
	XpIcon    XpTier = "icon"
)

var XpTiers = []XpTier{XpFresh, XpRegular, XpSinner, XpIcon}

func (x XpTier) Valid() bool {
	for _, t := range XpTiers {
		if x == t {
			return true
		}
	}
	return false
}

// Intent tags what a RIGHT NOW post is about.
type Intent string

const (
	IntentHookup Intent = "hookup"
	IntentCrowd  Intent = "crowd"
	IntentDrop   Intent = "drop"
	IntentTicket Intent = "ticket"
	IntentRadio  Intent = "radio"
	IntentCare   Intent = "care"
)

var Intents = []Intent{IntentHookup, IntentCrowd, IntentDrop, IntentTicket, IntentRadio, IntentCare}

func (i Intent) Valid() bool {
	for _, v := range Intents {
		if i == v {
			return true
		}
	}
	return false
}

// RoomMode is how many people the poster is bringing.
type RoomMode string

const (
	RoomSolo  RoomMode = "solo"
	RoomDuo   RoomMode = "duo"
	RoomSmall RoomMode = "small"
	RoomBig   RoomMode = "big"
)

var RoomModes = []RoomMode{RoomSolo, RoomDuo, RoomSmall, RoomBig}

func (r RoomMode) Valid() bool {
	for _, v := range RoomModes {
		if r == v {
			return true
		}
	}
	return false
}

// Post limits shared by the composer and the right-now service.
const (
	MaxTitleLength    = 40
	MinRadiusKm       = 1.0
	DefaultBoundaries = "Consent first. Sober enough to say yes. No means no."
)
