// Package keygen generates RSA key pairs for SSH authentication and derives
// the public half of an existing private key.
//
// Keys are produced in PEM format (private) and OpenSSH authorized_keys
// format (public), suitable for uploading to Hetzner Cloud as SSH keys.
package keygen
