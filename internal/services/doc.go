// Package services defines the shared error taxonomy and context helpers used
// by the external service clients and the render pipeline stages.
package services
