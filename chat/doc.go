// Package chat orchestrates question answering over the document store.
//
// The Orchestrator type runs one conversation turn end to end: it persists
// the user's question, retrieves relevant document passages, generates a
// grounded answer, and persists the assistant's reply together with its
// source attributions. Conversation titles are generated asynchronously
// after the first completed turn; a failed title generation never affects
// the conversation itself.
package chat
