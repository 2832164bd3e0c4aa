// Package formwizard turns a flat form fragment into a one-question-at-a-time
// wizard with conditional branching. The root package re-exports the common
// entry points; the building blocks live under pkg/:
//
//   - pkg/registry assigns positions to answerable fields.
//   - pkg/routing stores default and answer-specific next steps.
//   - pkg/navigation walks the questions and publishes visibility frames.
//   - pkg/session owns all three for one loaded form.
//   - pkg/bundle, pkg/store save and replay the result.
package formwizard
