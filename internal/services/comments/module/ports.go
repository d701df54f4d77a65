package module

import "agora/internal/services/comments/domain"

// Ports holds the ports exposed by the comments module
type Ports struct {
	Comments  domain.ServicePort
	Authority domain.Authority
}

// Ports returns the module ports
func (m *Module) Ports() any { return m.ports }
