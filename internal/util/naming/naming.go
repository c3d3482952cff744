package naming

import "fmt"

// Naming functions for deployment resources.
// All Hetzner Cloud resources follow consistent naming patterns to enable
// easy identification and cleanup.

// Instance is the logical name of a machine inside a deployment, e.g. "server-eu".
func Instance(role, location string) string {
	return fmt.Sprintf("%s-%s", role, location)
}

// Server is the cloud server name of a machine.
func Server(deployment, role, location string) string {
	return fmt.Sprintf("%s-%s", deployment, Instance(role, location))
}

// SSHKey is the name of the deployment's uploaded admin key.
func SSHKey(deployment string) string {
	return fmt.Sprintf("%s-admin", deployment)
}

// ArtifactKey is the object key of a client's metrics upload.
func ArtifactKey(prefix, deployment, runID, instance string) string {
	key := fmt.Sprintf("%s/%s/%s.txt", deployment, runID, instance)
	if prefix == "" {
		return key
	}
	return fmt.Sprintf("%s/%s", prefix, key)
}
