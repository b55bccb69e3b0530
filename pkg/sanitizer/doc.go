// Package sanitizer normalizes caller-supplied values before validation and storage.
//
// All normalization functions are idempotent. Invalid input yields an empty
// string or slice rather than an error; validation decides what to do with it.
//
// Normalization includes:
//   - Phone numbers: digits only, so "(555) 123-4567" and "555.123.4567" share one key
//   - Strings: collapse whitespace, trim leading and trailing spaces
//   - Appointment ids: trim and lowercase, ready for exact or prefix lookup
//   - Slices: remove empty values and case-insensitive duplicates, keeping first-seen order
package sanitizer
