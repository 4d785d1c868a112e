// Package sanitizer normalizes request input before validation and storage.
//
// All functions are idempotent: applying them twice yields the same result as applying them
// once. Invalid input is returned as-is (or empty) so the validator can reject it with a
// field-level message.
//
// Normalization includes:
//   - Identifiers: trimmed
//   - Dates: trimmed, kept as YYYY-MM-DD
//   - Times: trimmed, single-digit hours zero padded ("9:30" becomes "09:30")
//   - Cities and names: whitespace collapsed, control and zero-width characters dropped
//   - Descriptions: trimmed, line breaks kept, control characters dropped
//   - Enumerations (status, caregiving type, gender): whitespace collapsed, lowercased
package sanitizer
