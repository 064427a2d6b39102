package upstream

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"hotmess/internal/domain"
	"hotmess/internal/entitlement"
	"hotmess/internal/rightnow"
)

var intentLeads = map[domain.Intent]string{
	domain.IntentHookup: "Looking for company",
	domain.IntentCrowd:  "Crowd forming",
	domain.IntentDrop:   "Drop incoming",
	domain.IntentTicket: "Spare ticket",
	domain.IntentRadio:  "Tune in",
	domain.IntentCare:   "Checking in",
}

var safetyNotes = map[domain.Intent]string{
	domain.IntentHookup: "Meet somewhere public first. Consent is ongoing and can be taken back any time.",
	domain.IntentCare:   "Not feeling OK? Tell someone nearby. Venue staff and welfare teams are there to help.",
}

// Draft builds a deterministic title and text from the request. It stands in
// for the model-backed drafter so the flow can run locally.
func Draft(req rightnow.DraftRequest, ents entitlement.Entitlements) rightnow.DraftResponse {
	lead, ok := intentLeads[req.Intent]
	if !ok {
		lead = "Right now"
	}
	title := lead
	if city := strings.TrimSpace(req.City); city != "" {
		title = lead + " in " + city
	}
	title = domain.TruncateChars(title, domain.MaxTitleLength)

	text := sentence(req.Vibe)
	if b := strings.TrimSpace(req.Boundaries); b != "" {
		text += " " + sentence(b)
	}
	text = domain.TruncateChars(text, ents.MaxPostLength)

	resp := rightnow.DraftResponse{Title: &title, Text: &text}
	if note, ok := safetyNotes[req.Intent]; ok {
		resp.SafetyNote = &note
	}
	return resp
}

// sentence collapses whitespace, capitalises the first letter and ends with a full stop.
func sentence(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(s)
	s = string(unicode.ToUpper(r)) + s[size:]
	last, _ := utf8.DecodeLastRuneInString(s)
	if !unicode.IsPunct(last) {
		s += "."
	}
	return s
}
