// Package reduce combines the ordered per-batch results of a dispatch run into
// one value. It provides merge strategies for derivative maps (outer quantity
// -> inner quantity -> tensor block) and small reducers for scalar payloads.
//
// Reducers receive results in generation order, never completion order.
package reduce
