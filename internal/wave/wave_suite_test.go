package wave

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestWave(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Wave Suite")
}
