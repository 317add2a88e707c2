// Package orchestration drives the two comparison channels, traditional RAG
// and graph RAG, for one question at a time. It decouples the channel
// lifecycle from presentation via the Reporter interface.
package orchestration
