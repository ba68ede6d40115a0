package domains

import (
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/xhad/pdfsift/internal/models"
)

const mailtoPrefix = "mailto:"

// FromLinks reduces raw links to the set of lowercase domains they reference.
// mailto links contribute the part after the last "@"; every other link
// contributes its host component when it has one. Links with neither are
// dropped.
func FromLinks(links models.StringSet) models.StringSet {
	domains := models.NewStringSet()
	for link := range links {
		if domain, ok := fromLink(link); ok {
			domains.Add(domain)
		}
	}
	return domains
}

// fromLink resolves a single raw link. A mailto link is never re-parsed as a
// generic URL, even when it carries no usable address.
func fromLink(link string) (string, bool) {
	if strings.HasPrefix(strings.ToLower(link), mailtoPrefix) {
		addr := link[len(mailtoPrefix):]
		at := strings.LastIndex(addr, "@")
		if at < 0 || at == len(addr)-1 {
			return "", false
		}
		return strings.ToLower(addr[at+1:]), true
	}

	parsed, err := url.Parse(link)
	if err != nil || parsed.Host == "" {
		return "", false
	}
	return strings.ToLower(parsed.Host), true
}

// Registered rolls a domain (optionally host:port) up to its registered
// domain, the eTLD+1. IP addresses and hosts without a valid public suffix
// report false and stay out of the rollup view.
func Registered(domain string) (string, bool) {
	host := domain
	if h, _, err := net.SplitHostPort(domain); err == nil {
		host = h
	}

	if net.ParseIP(host) != nil {
		return "", false
	}

	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		return "", false
	}
	return etld1, true
}
