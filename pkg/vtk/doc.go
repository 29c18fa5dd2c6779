// Package vtk reads legacy VTK datasets and extracts them into the
// canonical mesh.Geometry representation. The dataset model mirrors the
// legacy file layout (pieces with a flat point buffer, count-prefixed cell
// buffers, and typed data arrays) so that extraction can also run on
// datasets built in memory, without a file.
package vtk
