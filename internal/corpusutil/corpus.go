package corpusutil

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

// SpecInfo describes one corpus specification.
type SpecInfo struct {
	Name       string // Human-readable name (e.g., "Stripe")
	Filename   string // Local filename in testdata/corpus/
	URL        string // Remote source URL
	OASVersion string // Declared OAS version (e.g., "3.0.0", "2.0")
	Format     string // "json" or "yaml"
	Supported  bool   // True if the document loads (OAS 3.x); 2.0 documents are rejected
	IsLarge    bool   // True if file size >5MB
	SizeBytes  int64  // Approximate file size in bytes
}

// GetLocalPath returns the absolute path to the cached spec file.
func (s SpecInfo) GetLocalPath() string {
	return filepath.Join(CorpusDir(), s.Filename)
}

// IsAvailable checks if the spec is cached locally.
func (s SpecInfo) IsAvailable() bool {
	_, err := os.Stat(s.GetLocalPath())
	return err == nil
}

// Corpus defines all 10 public specifications for integration testing.
// Specifications are ordered by size (smallest first) for faster test feedback.
var Corpus = []SpecInfo{
	{
		Name:       "Petstore",
		Filename:   "petstore-swagger.json",
		URL:        "https://petstore.swagger.io/v2/swagger.json",
		OASVersion: "2.0",
		Format:     "json",
		Supported:  false,
		IsLarge:    false,
		SizeBytes:  20_000,
	},
	{
		Name:       "DigitalOcean",
		Filename:   "digitalocean-public.v2.yaml",
		URL:        "https://raw.githubusercontent.com/digitalocean/openapi/main/specification/DigitalOcean-public.v2.yaml",
		OASVersion: "3.0.0",
		Format:     "yaml",
		Supported:  true,
		IsLarge:    false,
		SizeBytes:  200_000,
	},
	{
		Name:       "Asana",
		Filename:   "asana-oas.yaml",
		URL:        "https://raw.githubusercontent.com/Asana/openapi/master/defs/asana_oas.yaml",
		OASVersion: "3.0.0",
		Format:     "yaml",
		Supported:  true,
		IsLarge:    false,
		SizeBytes:  405_000,
	},
	{
		Name:       "GoogleMaps",
		Filename:   "google-maps-platform.json",
		URL:        "https://raw.githubusercontent.com/googlemaps/openapi-specification/main/dist/google-maps-platform-openapi3.json",
		OASVersion: "3.0.3",
		Format:     "json",
		Supported:  true,
		IsLarge:    false,
		SizeBytes:  500_000,
	},
	{
		Name:       "USNWS",
		Filename:   "nws-openapi.json",
		URL:        "https://api.weather.gov/openapi.json",
		OASVersion: "3.0.3",
		Format:     "json",
		Supported:  true,
		IsLarge:    false,
		SizeBytes:  800_000,
	},
	{
		Name:       "Plaid",
		Filename:   "plaid-2020-09-14.yml",
		URL:        "https://raw.githubusercontent.com/plaid/plaid-openapi/master/2020-09-14.yml",
		OASVersion: "3.0.0",
		Format:     "yaml",
		Supported:  true,
		IsLarge:    false,
		SizeBytes:  1_200_000,
	},
	{
		Name:       "Discord",
		Filename:   "discord-openapi.json",
		URL:        "https://raw.githubusercontent.com/discord/discord-api-spec/main/specs/openapi.json",
		OASVersion: "3.1.0",
		Format:     "json",
		Supported:  true,
		IsLarge:    false,
		SizeBytes:  3_000_000,
	},
	{
		Name:       "GitHub",
		Filename:   "github-api.json",
		URL:        "https://raw.githubusercontent.com/github/rest-api-description/main/descriptions/api.github.com/api.github.com.json",
		OASVersion: "3.0.3",
		Format:     "json",
		Supported:  true,
		IsLarge:    false,
		SizeBytes:  5_000_000,
	},
	{
		Name:       "Stripe",
		Filename:   "stripe-spec3.json",
		URL:        "https://raw.githubusercontent.com/stripe/openapi/master/openapi/spec3.json",
		OASVersion: "3.0.0",
		Format:     "json",
		Supported:  true,
		IsLarge:    true,
		SizeBytes:  14_000_000,
	},
	{
		Name:       "MicrosoftGraph",
		Filename:   "msgraph-openapi.yaml",
		URL:        "https://raw.githubusercontent.com/microsoftgraph/msgraph-metadata/master/openapi/v1.0/openapi.yaml",
		OASVersion: "3.0.4",
		Format:     "yaml",
		Supported:  true,
		IsLarge:    true,
		SizeBytes:  15_000_000,
	},
}

// CorpusDir returns the absolute path to the corpus directory.
func CorpusDir() string {
	// Get the directory of this source file
	_, thisFile, _, ok := runtime.Caller(0)
	if ok {
		// Go up from internal/corpusutil to project root
		projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
		return filepath.Join(projectRoot, "testdata", "corpus")
	}
	// Fallback to relative path
	return filepath.Join("testdata", "corpus")
}

// GetSpecs returns specs filtered by the includeLarge flag.
func GetSpecs(includeLarge bool) []SpecInfo {
	result := make([]SpecInfo, 0, len(Corpus))
	for _, spec := range Corpus {
		if !includeLarge && spec.IsLarge {
			continue
		}
		result = append(result, spec)
	}
	return result
}

// GetSupportedSpecs returns only specs the loader accepts.
func GetSupportedSpecs(includeLarge bool) []SpecInfo {
	result := make([]SpecInfo, 0)
	for _, spec := range GetSpecs(includeLarge) {
		if spec.Supported {
			result = append(result, spec)
		}
	}
	return result
}

// GetLargeSpecs returns only large (>5MB) specifications.
func GetLargeSpecs() []SpecInfo {
	result := make([]SpecInfo, 0)
	for _, spec := range Corpus {
		if spec.IsLarge {
			result = append(result, spec)
		}
	}
	return result
}

// GetByName returns a spec by name, or nil if not found.
func GetByName(name string) *SpecInfo {
	for i := range Corpus {
		if Corpus[i].Name == name {
			return &Corpus[i]
		}
	}
	return nil
}

// SkipIfNotCached skips the test if the corpus file is not available locally.
func SkipIfNotCached(t testing.TB, spec SpecInfo) {
	t.Helper()
	if !spec.IsAvailable() {
		t.Skipf("Corpus file %s not cached locally; download %s to %s to enable this test",
			spec.Filename, spec.URL, CorpusDir())
	}
}

// SkipLargeInShortMode skips large specs when running with -short flag.
func SkipLargeInShortMode(t testing.TB, spec SpecInfo) {
	t.Helper()
	if testing.Short() && spec.IsLarge {
		t.Skipf("Skipping large spec %s in short mode", spec.Name)
	}
}
