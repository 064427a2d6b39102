package entitlement

import (
	"testing"

	"hotmess/internal/domain"
)

func TestResolveIsTotal(t *testing.T) {
	for _, m := range domain.MembershipTiers {
		for _, x := range domain.XpTiers {
			e := Resolve(m, x)
			if e.Membership != m || e.XpTier != x {
				t.Fatalf("Resolve(%s, %s) lost provenance: %+v", m, x, e)
			}
			if e.MaxPostLength <= 0 || e.MaxRadiusKm <= 0 || e.DailyPostLimit < 0 {
				t.Fatalf("Resolve(%s, %s) = %+v, want positive limits", m, x, e)
			}
		}
	}
}

func TestEveryMembershipHasAProfile(t *testing.T) {
	all := Profiles()
	for _, m := range domain.MembershipTiers {
		p, ok := all[m]
		if !ok {
			t.Fatalf("membership %q has no profile", m)
		}
		if p != ProfileFor(m) {
			t.Fatalf("Profiles()[%s] = %+v, ProfileFor = %+v", m, p, ProfileFor(m))
		}
	}
	if len(all) != len(domain.MembershipTiers) {
		t.Fatalf("Profiles() has %d entries, want %d", len(all), len(domain.MembershipTiers))
	}
}

func TestProfilesReturnsCopy(t *testing.T) {
	all := Profiles()
	all[domain.MembershipFree] = Profile{MaxPostLength: 9999}
	delete(all, domain.MembershipIcon)
	if ProfileFor(domain.MembershipFree).MaxPostLength != 200 {
		t.Fatal("mutating the copy changed the free profile")
	}
	if _, ok := Profiles()[domain.MembershipIcon]; !ok {
		t.Fatal("mutating the copy removed a profile")
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	for _, m := range domain.MembershipTiers {
		if Resolve(m, domain.XpSinner) != Resolve(m, domain.XpSinner) {
			t.Fatalf("Resolve(%s) not deterministic", m)
		}
	}
}

func TestResolveTierTable(t *testing.T) {
	tests := []struct {
		membership domain.MembershipTier
		want       Profile
	}{
		{domain.MembershipIcon, Profile{600, 25, 20, true, true}},
		{domain.MembershipHnH, Profile{400, 15, 10, true, false}},
		{domain.MembershipVendor, Profile{500, 20, 30, true, true}},
		{domain.MembershipSponsor, Profile{500, 20, 30, true, true}},
		{domain.MembershipFree, Profile{200, 5, 3, false, false}},
		{domain.MembershipTier("platinum"), Profile{200, 5, 3, false, false}},
		{domain.MembershipTier(""), Profile{200, 5, 3, false, false}},
	}
	for _, tt := range tests {
		for _, x := range domain.XpTiers {
			e := Resolve(tt.membership, x)
			got := Profile{e.MaxPostLength, e.MaxRadiusKm, e.DailyPostLimit, e.CanAttachMedia, e.CanBoost}
			if got != tt.want {
				t.Errorf("Resolve(%q, %q) = %+v, want %+v", tt.membership, x, got, tt.want)
			}
		}
	}
}

func TestMaxRadiusM(t *testing.T) {
	if got := Resolve(domain.MembershipHnH, domain.XpFresh).MaxRadiusM(); got != 15000 {
		t.Fatalf("MaxRadiusM = %v, want 15000", got)
	}
}
