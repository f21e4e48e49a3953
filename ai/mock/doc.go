// Package mock provides a test double implementation of ai.Provider.
//
// The mock allows tests to run without external AI services and with
// controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Scripted completions, consumed in order
//	p := mock.New().WithResponses(`[{"title":"Lesson 1"}]`, "expanded prose")
//
//	// Custom behavior injection
//	p.CompleteFunc = func(ctx context.Context, msgs []ai.Message, opts ...ai.CallOption) (*ai.Completion, error) {
//	    return nil, ai.NewAPIError("mock", 429, "rate limited")
//	}
//
//	// Assertions on recorded calls
//	require.Equal(t, 2, p.CallCount())
//	last := p.LastCall()
//
// # Default Behavior
//
//   - Complete: returns "mock response" (or the scripted responses in order;
//     the final one repeats)
//   - Stream: emits the scripted response in two deltas, then Done
//   - Embed: returns a unit vector derived from the text hash, so identical
//     text always embeds identically
package mock
