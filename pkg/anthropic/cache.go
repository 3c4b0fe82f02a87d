package anthropic

// BuildCachedSystemBlocks wraps a system prompt in a single block with a
// one-hour cache TTL. Lease extraction reuses the same instructions across
// every segment of a document, so cache reads dominate after the first call.
func BuildCachedSystemBlocks(prompt string) []SystemBlock {
	return []SystemBlock{
		{
			Text:         prompt,
			CacheControl: &CacheControl{TTL: "1h"},
		},
	}
}
