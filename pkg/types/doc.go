// Package types defines the Registry interface, the Record entity, search
// criteria, configuration and the standard errors of the padron data-access
// layer.
package types
