//go:build !unix

package sigbridge

import (
	"os"

	"github.com/zelang-dev/goexc/pkg/except"
)

func init() {
	signalDescriptors[os.Interrupt] = except.SigInt
}
