// Package core defines the domain model shared by the receiving engine.
//
// # Architecture Overview
//
// The core package provides:
//   - Reference data types (BarcodePattern, FinNumber, Product, BarcodeTranslation)
//   - Consequence rules (ProductConsequence) and the ValidationResult outcome type
//   - Commands accepted by the barcode, temperature and transit-time validators
//   - Collaborator interfaces (ConfigurationService, ProductConsequenceRepository)
//   - The two error taxonomies: PreconditionError and ErrNotFound
//
// # Outcomes versus failures
//
// Every decode or validate operation returns a ValidationResult. A Valid=false result is
// an expected business outcome (unknown facility, out-of-range temperature) and callers
// branch on it. A *PreconditionError means the call itself was malformed or the
// configuration is unusable; it is returned unmodified and is never retried.
//
// Collaborators signal a missing row with an error wrapping ErrNotFound. Any other
// collaborator error is a system failure and is propagated to the caller as-is.
package core
