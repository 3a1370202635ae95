// Package integration runs cross-backend Ginkgo/Gomega specs: scenarios
// that must hold identically regardless of which storage.RunLedger /
// storage.ReleaseRegistry implementation backs them.
package integration

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestIntegration(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Storage Backend Integration Suite")
}
