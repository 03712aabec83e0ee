// Package embeddings provides embedding generation for the phase engine.
//
// Two providers are supported: a TEI (Text Embeddings Inference) HTTP
// server for local deployments, and OpenAI-compatible APIs via langchaingo.
// Both implement workflow.Embedder; NewProvider selects one from config.
package embeddings
