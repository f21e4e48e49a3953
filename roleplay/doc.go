// Package roleplay manages multi-turn AI character conversations for
// training practice. A Session keeps the transcript, streams character
// responses, auto-completes at the configured turn limit, and produces a
// rubric-based evaluation of the learner's performance on demand.
package roleplay
