package guardrail

import (
	"strings"

	"github.com/jonathan/resume-tailor/internal/skills"
	"github.com/jonathan/resume-tailor/internal/tokens"
	"github.com/jonathan/resume-tailor/internal/types"
)

// RejectReason says why an edit was dropped.
type RejectReason string

// RejectReason constants, in the order the checks run.
const (
	ReasonNone            RejectReason = ""
	ReasonUnknownEntry    RejectReason = "unknown-entry"
	ReasonIndexOutOfRange RejectReason = "index-out-of-range"
	ReasonBeforeMismatch  RejectReason = "before-mismatch"
	ReasonEmptyAfter      RejectReason = "empty-after"
	ReasonNumbersChanged  RejectReason = "numbers-changed"
	ReasonNewAcronym      RejectReason = "new-acronym"
	ReasonNewURL          RejectReason = "new-url"
	ReasonNewTechToken    RejectReason = "new-tech-token"
)

// Verdict is the outcome of checking one bullet edit.
type Verdict struct {
	Accepted bool
	Reason   RejectReason
	// Offending is the token that failed a token check, if any.
	Offending string
}

func reject(reason RejectReason, offending string) Verdict {
	return Verdict{Reason: reason, Offending: offending}
}

// normalizeSpace collapses whitespace runs and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CheckBullet decides whether after may replace original. before is what the
// generator believed the bullet said; it must match original up to
// whitespace.
func CheckBullet(original, before, after string, allow AllowSets) Verdict {
	if normalizeSpace(original) != normalizeSpace(before) {
		return reject(ReasonBeforeMismatch, "")
	}
	if normalizeSpace(after) == "" {
		return reject(ReasonEmptyAfter, "")
	}

	if !sameSet(tokens.Numbers(original), tokens.Numbers(after)) {
		return reject(ReasonNumbersChanged, "")
	}

	if tok, ok := firstNew(tokens.Acronyms(original), tokens.Acronyms(after), nil, allow.Acronyms); !ok {
		return reject(ReasonNewAcronym, tok)
	}
	if tok, ok := firstNew(tokens.URLs(original), tokens.URLs(after), tokens.URLKey, allow.URLs); !ok {
		return reject(ReasonNewURL, tok)
	}
	if tok, ok := firstNew(tokens.TechLike(original), tokens.TechLike(after), skills.NormalizeKey, allow.Tech); !ok {
		return reject(ReasonNewTechToken, tok)
	}

	return Verdict{Accepted: true}
}

// firstNew returns the first after-token that is in neither the original's
// tokens nor the allow set. ok is false when such a token exists.
func firstNew(original, after []string, key func(string) string, allow map[string]struct{}) (string, bool) {
	have := tokens.Set(original, key)
	for _, t := range after {
		k := t
		if key != nil {
			k = key(t)
		}
		if _, ok := have[k]; ok {
			continue
		}
		if _, ok := allow[k]; ok {
			continue
		}
		return t, false
	}
	return "", true
}

// sameSet compares distinct values; repeated numbers are not counted.
func sameSet(a, b []string) bool {
	as := tokens.Set(a, nil)
	bs := tokens.Set(b, nil)
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if _, ok := bs[k]; !ok {
			return false
		}
	}
	return true
}

// Decision records what happened to one proposed bullet edit.
type Decision struct {
	Company   string       `json:"company"`
	Title     string       `json:"title"`
	Index     int          `json:"index"`
	Before    string       `json:"before"`
	After     string       `json:"after"`
	Accepted  bool         `json:"accepted"`
	Reason    RejectReason `json:"reason,omitempty"`
	Offending string       `json:"offending,omitempty"`
}

// ApplyBulletRewrites applies the accepted edits of rw to a copy of resume
// and reports a decision for every proposed edit. The allow sets come from
// the resume as given. Edits target the first entry whose company and title
// match exactly; edits to the same index apply in order, each checked
// against the bullet as it stands.
func (e *Engine) ApplyBulletRewrites(resume types.StructuredResume, rw types.BulletRewrite) (types.StructuredResume, []Decision) {
	allow := NewAllowSets(resume)
	next := resume.Clone()
	next.Normalize()

	decisions := make([]Decision, 0)
	for _, exp := range rw.Experience {
		target := findEntry(next.Experience, exp.Company, exp.Title)

		for _, edit := range exp.RewrittenBullets {
			d := Decision{
				Company: exp.Company,
				Title:   exp.Title,
				Index:   edit.Index,
				Before:  edit.Before,
				After:   edit.After,
			}

			var v Verdict
			switch {
			case target == nil:
				v = reject(ReasonUnknownEntry, "")
			case edit.Index < 0 || edit.Index >= len(target.Bullets):
				v = reject(ReasonIndexOutOfRange, "")
			default:
				v = CheckBullet(target.Bullets[edit.Index], edit.Before, edit.After, allow)
			}

			d.Accepted, d.Reason, d.Offending = v.Accepted, v.Reason, v.Offending
			if v.Accepted {
				target.Bullets[edit.Index] = edit.After
			}
			e.recordBullet(d)
			decisions = append(decisions, d)
		}
	}
	return next, decisions
}

func findEntry(entries []types.Experience, company, title string) *types.Experience {
	for i := range entries {
		if entries[i].Company == company && entries[i].Title == title {
			return &entries[i]
		}
	}
	return nil
}

// Accepted filters decisions down to the applied edits.
func Accepted(decisions []Decision) []Decision {
	out := make([]Decision, 0, len(decisions))
	for _, d := range decisions {
		if d.Accepted {
			out = append(out, d)
		}
	}
	return out
}
