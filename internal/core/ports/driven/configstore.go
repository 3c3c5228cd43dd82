package driven

// ConfigStore persists raw setting values under dotted keys such as
// "ner.threshold". It does no type conversion: values come back as they were
// stored or decoded, and the settings service interprets them.
type ConfigStore interface {
	// Get returns the stored value and whether the key is present.
	Get(key string) (any, bool)

	// Set stores value and persists it before returning.
	Set(key string, value any) error

	// Unset removes key. Removing an absent key is not an error.
	Unset(key string) error

	// Keys returns the stored keys, sorted.
	Keys() []string

	// Path locates the backing file, empty for stores without one.
	Path() string
}
