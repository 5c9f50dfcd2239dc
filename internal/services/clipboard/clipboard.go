// Package clipboard places rendered summary trees on the system clipboard.
package clipboard

import (
	"github.com/atotto/clipboard"
)

// Copier puts textual content on the system clipboard.
type Copier interface {
	Copy(text string) error
}

// Service is the platform clipboard, backed by github.com/atotto/clipboard.
type Service struct{}

// NewService returns the platform clipboard service.
func NewService() *Service {
	return &Service{}
}

// Copy places text on the system clipboard.
func (service *Service) Copy(text string) error {
	return clipboard.WriteAll(text)
}

var _ Copier = (*Service)(nil)
