// Package checksum provides fragment content hashing with normalization support.
//
// Two checksums are computed per file:
//
//   - Raw checksum: Hash of the exact file content (detects all changes)
//   - Normalized checksum: Hash after removing comments and normalizing whitespace
//     (formatting-independent content identity)
//
// # Normalization Strategy
//
// Normalization makes checksums resilient to re-indentation by the serializer:
//  1. Remove XML comments and processing instructions (including the XML
//     declaration)
//  2. Collapse all whitespace sequences to single spaces
//  3. Drop whitespace between a closing '>' and the next '<'
//  4. Trim leading/trailing whitespace
//
// Element and attribute names keep their case; XML is case-sensitive.
// Attribute values and CDATA sections are never searched for comments.
//
// # Example Usage
//
//	calculator := checksum.New()
//	rawChecksum := calculator.CalculateRaw(fileContent)
//	normalizedChecksum := calculator.CalculateNormalized(fileContent)
//
// # Thread Safety
//
// SHA256 is safe for concurrent use by multiple goroutines.
package checksum
