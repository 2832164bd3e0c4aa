// Package template defines the template rendering seam used to compose saved
// bundles. Adapters live in sub-packages.
package template
