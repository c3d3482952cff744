// Package rsync copies the local benchmark source tree to machines with the
// rsync binary over ssh, honoring the tree's .gitignore.
package rsync
