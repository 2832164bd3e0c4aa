// Package navigation implements the one-question-at-a-time state machine. An
// Engine keeps a cursor over the registered questions, asks a Resolver where
// to go after each answer, and publishes a visibility Frame in which exactly
// one display unit is active and only the active question is required.
//
// The engine is single-threaded. Transitions are serialised by the caller; a
// call made from inside a frame or submit callback fails with
// ErrTransitionInFlight instead of interleaving with the running transition.
//
// Retreat steps back exactly one position. It does not keep a history, so
// going back after a branch jump lands on the previous position, not on the
// question that branched.
package navigation
