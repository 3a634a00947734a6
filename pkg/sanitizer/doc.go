// Package sanitizer normalizes free-form user input before validation and storage.
//
// All functions are idempotent. Invalid input is returned in a form the
// validator will reject rather than silently rewritten into something valid.
package sanitizer
