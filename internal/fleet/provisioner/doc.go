// Package provisioner serves new work requests by either reusing an idle
// build agent or creating a fresh instance under an agent configuration with
// spare capacity.
//
// Capacity accounting includes in-flight creates from the operation tracker,
// so a burst of requests cannot overshoot a pool's limit while earlier
// creates are still settling. Instances with a pending delete are never
// offered for reuse.
package provisioner
