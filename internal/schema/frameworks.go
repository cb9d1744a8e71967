package schema

import (
	"strings"
)

// FrameworkComponents is a short target-framework name decomposed into
// its five independently validated parts.
type FrameworkComponents struct {
	Identifier      string // "net", "netstandard", "netcoreapp"
	Version         string
	Platform        string
	PlatformVersion string
	Profile         string
}

// ParseFramework splits a short framework name like
// "net8.0-windows10.0.19041.0" or "net35-client". It never fails;
// unrecognizable parts come back empty and the identifier keeps whatever
// leading letters were present.
func ParseFramework(s string) FrameworkComponents {
	var c FrameworkComponents
	s = strings.TrimSpace(s)
	rest := s
	if dash := strings.IndexByte(s, '-'); dash >= 0 {
		rest = s[:dash]
		suffix := s[dash+1:]
		letters := leadingLetters(suffix)
		if IsKnownPlatform(letters) {
			c.Platform = letters
			c.PlatformVersion = suffix[len(letters):]
		} else {
			c.Profile = suffix
		}
	}
	c.Identifier = strings.ToLower(leadingLetters(rest))
	c.Version = normalizeFrameworkVersion(c.Identifier, rest[len(c.Identifier):])
	return c
}

func leadingLetters(s string) string {
	i := 0
	for i < len(s) && (('a' <= s[i] && s[i] <= 'z') || ('A' <= s[i] && s[i] <= 'Z')) {
		i++
	}
	return s[:i]
}

// normalizeFrameworkVersion inserts the dots compact older names omit:
// net48 -> 4.8, netstandard21 -> 2.1. Dotted versions pass through.
func normalizeFrameworkVersion(identifier, v string) string {
	if v == "" || strings.ContainsRune(v, '.') {
		return v
	}
	_ = identifier
	parts := make([]string, 0, len(v))
	for i := 0; i < len(v); i++ {
		parts = append(parts, string(v[i]))
	}
	return strings.Join(parts, ".")
}

var frameworkVersions = map[string][]string{
	"net": {
		"1.1", "2.0", "3.0", "3.5",
		"4.0", "4.5", "4.5.1", "4.5.2", "4.6", "4.6.1", "4.6.2",
		"4.7", "4.7.1", "4.7.2", "4.8", "4.8.1",
		"5.0", "6.0", "7.0", "8.0", "9.0", "10.0",
	},
	"netstandard": {"1.0", "1.1", "1.2", "1.3", "1.4", "1.5", "1.6", "2.0", "2.1"},
	"netcoreapp":  {"1.0", "1.1", "2.0", "2.1", "2.2", "3.0", "3.1"},
}

// frameworkProfiles lists the profiles valid per identifier+version.
var frameworkProfiles = map[string][]string{
	"net3.5": {"Client"},
	"net4.0": {"Client"},
}

var knownPlatforms = []string{
	"windows", "android", "ios", "macos", "maccatalyst", "tvos",
	"browser", "wasi",
}

// IsKnownIdentifier reports whether the framework identifier is known.
func IsKnownIdentifier(identifier string) bool {
	_, ok := frameworkVersions[strings.ToLower(identifier)]
	return ok
}

// IsKnownFrameworkVersion reports whether the version exists for the
// identifier.
func IsKnownFrameworkVersion(identifier, version string) bool {
	versions, ok := frameworkVersions[strings.ToLower(identifier)]
	if !ok {
		return false
	}
	for _, v := range versions {
		if v == version {
			return true
		}
	}
	return false
}

// IsKnownPlatform reports whether the platform suffix is known.
func IsKnownPlatform(platform string) bool {
	if platform == "" {
		return false
	}
	platform = strings.ToLower(platform)
	for _, p := range knownPlatforms {
		if p == platform {
			return true
		}
	}
	return false
}

// ProfilesFor returns the valid profiles for one framework, or nil.
func ProfilesFor(identifier, version string) []string {
	return frameworkProfiles[strings.ToLower(identifier)+version]
}

// HasProfile reports whether the profile is valid for the framework,
// case-insensitive.
func HasProfile(identifier, version, profile string) bool {
	for _, p := range ProfilesFor(identifier, version) {
		if strings.EqualFold(p, profile) {
			return true
		}
	}
	return false
}
