// Package compute provides alternative net-force kernels for a body set.
//
// The simulator always uses the angle-form pairwise kernel in physics. The
// backends here trade that parity for speed and exist to cross-check it:
//
//   - pairwise: vector-form O(n²) sum, parallel for larger sets
//   - barnes-hut: O(n log n) quadtree approximation
//
// Select one by name:
//
//	b, err := compute.Lookup("barnes-hut")
//	forces, err := b.Forces(bodies, g)
package compute
