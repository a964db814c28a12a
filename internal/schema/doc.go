// Package schema holds the pieces every payload type in the catalog shares:
// the self-describing Header, the error taxonomy, field constraints, and the
// deterministic JSON encoding used for serialization and fingerprints.
//
// Concrete payload types live in their own packages (jaqcd, openqasm, device,
// ...) and implement Schema. Each of them fixes exactly one Header value;
// parsing or constructing with any other header fails with HEADER_MISMATCH.
package schema
