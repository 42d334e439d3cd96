package contracts

import "fmt"

// NotFoundError reports that a requested entity does not exist.
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// InvalidParameterError reports a request parameter with an unusable value.
type InvalidParameterError struct {
	Param  string
	Reason string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Param, e.Reason)
}

// InvalidPresetError reports an unknown scenario preset key.
type InvalidPresetError struct {
	Preset string
	Known  []string
}

func (e *InvalidPresetError) Error() string {
	return fmt.Sprintf("unknown scenario preset %q (known: %v)", e.Preset, e.Known)
}

// SeedError reports that the universe manager could not generate the
// requested number of brands, typically because the name pool was
// exhausted before reaching the target count.
type SeedError struct {
	Requested int
	Generated int
	Reason    string
}

func (e *SeedError) Error() string {
	return fmt.Sprintf("seeding failed after %d/%d brands: %s", e.Generated, e.Requested, e.Reason)
}

// ProviderAttempt records one provider tried during a discovery query.
type ProviderAttempt struct {
	Provider string `json:"provider"`
	Err      string `json:"error,omitempty"`
}

// DiscoveryUnavailableError reports that every configured search provider
// failed for a discovery query. Attempts preserves the fallback order.
type DiscoveryUnavailableError struct {
	Query    string
	Attempts []ProviderAttempt
}

func (e *DiscoveryUnavailableError) Error() string {
	return fmt.Sprintf("discovery unavailable for %q: all %d providers failed", e.Query, len(e.Attempts))
}

// ArtifactGenerationError reports a failure while composing or persisting
// a report artifact.
type ArtifactGenerationError struct {
	BrandID string
	Stage   string
	Err     error
}

func (e *ArtifactGenerationError) Error() string {
	return fmt.Sprintf("report artifact for %s failed at %s: %v", e.BrandID, e.Stage, e.Err)
}

func (e *ArtifactGenerationError) Unwrap() error { return e.Err }
