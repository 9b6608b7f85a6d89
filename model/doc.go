// Package model defines the provider‑agnostic abstractions and concrete
// helpers for talking to language models inside UnitAI.
//
// Core goals:
//   - Unify streaming + non‑streaming generation behind a single interface
//   - Carry an optional JSON schema so providers can enforce structured output
//   - Keep request/response shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (Gemini, OpenAI, Anthropic) implement the Model interface from
// this package so higher layers (insight) remain decoupled from vendor SDKs.
package model
