// Package naming provides the resource naming conventions of a deployment.
package naming
