// Package mesh defines the canonical triangulated geometry representation
// shared by every pipeline stage. A Geometry is produced by the VTK
// extractors and consumed by simplification, refinement, and color mapping.
// Transformations never mutate their input: each one takes a Geometry and
// returns a freshly allocated result.
package mesh
