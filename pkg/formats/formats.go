// Package formats reads and writes the file formats terrains are loaded from
// and exported to: GAT altitude tables, heightmap images, raw float grids and
// STL meshes.
package formats
