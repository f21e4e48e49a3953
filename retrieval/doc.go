// Package retrieval composes organizational context, module context,
// conversation history, and vector search over indexed content chunks into a
// single retrieval bundle for AI generation, and renders that bundle into a
// prompt-ready text block.
package retrieval
