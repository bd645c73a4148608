// Package skills canonicalizes skill lists: case-insensitive de-duplication,
// allow-list filtering against a resume's own skills, and tiered partitioning.
package skills

import "strings"

// NormalizeKey is the comparison key for a skill: trimmed and lowercased.
func NormalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// UniqueByKey removes duplicates by NormalizeKey, keeping the first-seen
// spelling and input order. Entries with an empty key are dropped.
func UniqueByKey(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, len(list))
	for _, s := range list {
		key := NormalizeKey(s)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}

// AllowMap maps a normalized key to the canonical spelling of a skill.
type AllowMap map[string]string

// BuildAllowMap indexes list by NormalizeKey. The first spelling seen wins.
func BuildAllowMap(list []string) AllowMap {
	allow := make(AllowMap, len(list))
	for _, s := range list {
		key := NormalizeKey(s)
		if key == "" {
			continue
		}
		if _, ok := allow[key]; !ok {
			allow[key] = s
		}
	}
	return allow
}

// Contains reports whether s is allowed.
func (a AllowMap) Contains(s string) bool {
	_, ok := a[NormalizeKey(s)]
	return ok
}

// FilterToAllowed keeps candidates present in allow, substituting the
// canonical spelling and dropping duplicates. Input order is preserved.
func FilterToAllowed(candidates []string, allow AllowMap) []string {
	seen := make(map[string]struct{}, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		key := NormalizeKey(c)
		canonical, ok := allow[key]
		if !ok {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, canonical)
	}
	return out
}

// Partition filters three tiers against allow and removes entries that
// already appear in a higher tier. Precedence is primary, secondary, other.
func Partition(primary, secondary, other []string, allow AllowMap) ([]string, []string, []string) {
	p := FilterToAllowed(primary, allow)
	used := keySet(p)

	s := without(FilterToAllowed(secondary, allow), used)
	for k := range keySet(s) {
		used[k] = struct{}{}
	}

	o := without(FilterToAllowed(other, allow), used)
	return p, s, o
}

// FirstN returns at most n entries of list after UniqueByKey.
func FirstN(list []string, n int) []string {
	u := UniqueByKey(list)
	if len(u) > n {
		u = u[:n]
	}
	return u
}

func keySet(list []string) map[string]struct{} {
	set := make(map[string]struct{}, len(list))
	for _, s := range list {
		set[NormalizeKey(s)] = struct{}{}
	}
	return set
}

func without(list []string, drop map[string]struct{}) []string {
	out := make([]string, 0, len(list))
	for _, s := range list {
		if _, ok := drop[NormalizeKey(s)]; ok {
			continue
		}
		out = append(out, s)
	}
	return out
}
