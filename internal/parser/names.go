// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package parser

import (
	"regexp"
	"strings"

	"github.com/pdiddy/citation-engine/pkg/types"
)

// splitName splits a display name like "Yann LeCun" into surname and given
// names on the last space. Single-token names become a bare surname.
func splitName(name string) types.Person {
	name = strings.Join(strings.Fields(name), " ")
	idx := strings.LastIndex(name, " ")
	if idx < 0 {
		return types.Person{Surname: name}
	}
	return types.Person{Surname: name[idx+1:], GivenNames: name[:idx]}
}

var (
	// etAlRe matches "et al." and its variants.
	etAlRe = regexp.MustCompile(`(?i),?\s*\bet\.?\s*al\b\.?`)

	// conjunctionRe matches "&" or "and" between names.
	conjunctionRe = regexp.MustCompile(`\s*,?\s*(?:&|\band\b)\s+`)

	// initialsRe matches a token made only of initials: "Y", "J. A.", "J-P".
	initialsRe = regexp.MustCompile(`^(?:\p{Lu}\.?[\s-]*)+$`)

	// surnameInitialsRe matches Vancouver-style "LeCun Y" or "Smith JA".
	surnameInitialsRe = regexp.MustCompile(`^(\p{Lu}[\p{L}'\-]+(?:\s+\p{Lu}[\p{L}'\-]+)*)\s+(\p{Lu}{1,3})$`)

	// initialsSurnameRe matches "J. Smith" or "J.A. Smith".
	initialsSurnameRe = regexp.MustCompile(`^((?:\p{Lu}\.\s*)+)(\p{Lu}[\p{L}'\-]+)$`)
)

// parsePeople splits an author or editor block into persons. It accepts
// "Smith, J. A., Jones, B. & Brown, C." (APA/Harvard), "LeCun Y, Bengio Y"
// (Vancouver), and "J. Smith and B. Jones".
func parsePeople(block string) []types.Person {
	block = etAlRe.ReplaceAllString(block, "")
	block = conjunctionRe.ReplaceAllString(block, ", ")

	var people []types.Person
	for _, tok := range strings.Split(block, ",") {
		tok = strings.TrimSpace(tok)
		tok = strings.TrimSpace(strings.TrimRight(tok, "."))
		if tok == "" {
			continue
		}

		if initialsRe.MatchString(tok) {
			if n := len(people); n > 0 && people[n-1].GivenNames == "" {
				people[n-1].GivenNames = tok
			}
			continue
		}
		if m := surnameInitialsRe.FindStringSubmatch(tok); m != nil {
			people = append(people, types.Person{Surname: m[1], GivenNames: m[2]})
			continue
		}
		if m := initialsSurnameRe.FindStringSubmatch(tok); m != nil {
			people = append(people, types.Person{
				Surname:    m[2],
				GivenNames: strings.TrimSpace(strings.TrimRight(m[1], ". ")),
			})
			continue
		}
		people = append(people, types.Person{Surname: tok})
	}
	return people
}
