// Package features provides the experimental flag catalog, combining the
// compiled-in flags with an optional YAML catalog, and resolves each flag's
// committed value with priority CLI override > config file > default.
package features
