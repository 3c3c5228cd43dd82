package driven

// PromptEntityExtraction is the prompt an LLM entity model sends. It takes
// two %s verbs: the allowed labels joined by commas, then the text.
const PromptEntityExtraction = "entity_extraction"

// PromptStore hands out prompt templates by name.
type PromptStore interface {
	// Load fails only for names with no built-in fallback.
	Load(name string) (string, error)

	// Reload forgets cached templates.
	Reload()
}
