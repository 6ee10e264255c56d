// Package email defines the outbound email contract and two
// implementations: a Postmark client for production and a filesystem
// sender for development. The auth flows use it to deliver one-time
// codes.
package email
