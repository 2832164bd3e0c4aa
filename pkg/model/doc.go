// Package model defines the value types shared by the wizard packages: the
// registered Question, the Field input pair supplied by the markup loader, the
// appended Panel, and the tagged Target variant that routing rules point at.
// Targets serialise as either an integer position or the literal "submit" so
// routing documents stay readable when stored as JSON or YAML.
package model
