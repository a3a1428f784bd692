package constant

// SystemInstruction is the fixed instruction prepended to every completion
// request, ahead of the chronological transcript.
const SystemInstruction = "You are a helpful assistant. Answer the user's questions clearly and concisely, using the conversation so far for context."

// ErrorBannerTimeout note: the orchestrator clears a displayed error after
// this many seconds when the user does not dismiss it.
const ErrorBannerTimeoutSeconds = 8
