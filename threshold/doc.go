// Package threshold validates measured shipment conditions against the
// configured consequence rules of a product category.
//
// Both validators are pure: callers fetch the rules and pass them in, the
// clock is never read and identical inputs give equal results.
package threshold
