// Package otp generates short numeric one-time codes for email
// verification and password-reset flows. Codes are not secrets with
// long lifetimes: uniqueness across subjects is not required because
// the cache layer keys them per purpose and subject.
package otp
