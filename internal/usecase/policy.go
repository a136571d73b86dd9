package usecase

import (
	"strings"

	"seat-reservation/pkg/utils"
)

// ContactPolicy decides whether email is an acceptable receipt address for a
// reservation tagged with affiliationTag.
type ContactPolicy func(email, affiliationTag string) bool

// NewDomainPolicy requires a syntactically valid email and, for restricted
// affiliation tags, an email whose domain is on the allow-list.
func NewDomainPolicy(restrictedTags, allowedDomains []string) ContactPolicy {
	restricted := make(map[string]struct{}, len(restrictedTags))
	for _, t := range restrictedTags {
		restricted[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	allowed := make(map[string]struct{}, len(allowedDomains))
	for _, d := range allowedDomains {
		allowed[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))] = struct{}{}
	}

	return func(email, affiliationTag string) bool {
		if !utils.IsEmail(email) {
			return false
		}
		if _, ok := restricted[strings.ToLower(strings.TrimSpace(affiliationTag))]; !ok {
			return true
		}
		at := strings.LastIndexByte(email, '@')
		_, ok := allowed[strings.ToLower(email[at+1:])]
		return ok
	}
}
