// Package checks contains the individual health checks run by the integrity feature.
package checks
