package runtime

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wippyai/wasm-host/errors"
	"github.com/wippyai/wasm-host/linker"
	"github.com/wippyai/wasm-host/registry"
)

// MaxMemoryPages is the largest memory a 32-bit guest can address.
const MaxMemoryPages = 65536

var validate = validator.New()

// Config controls how a Runtime loads and runs guests.
type Config struct {
	// Policy is the unresolved-import policy, "strict" or "permissive".
	Policy string `validate:"required,oneof=strict permissive"`

	// MemoryLimitPages caps guest memory in 64KiB pages. 0 keeps the
	// engine default.
	MemoryLimitPages uint32 `validate:"max=65536"`

	// Timeout bounds each invocation. 0 means no limit.
	Timeout time.Duration `validate:"min=0"`

	// Stdio is inherited by every guest. Leaving all streams nil inherits
	// the process's standard streams.
	Stdio registry.Stdio `validate:"-"`
}

// DefaultConfig returns the permissive configuration with no limits.
func DefaultConfig() Config {
	return Config{
		Policy: string(linker.PolicyPermissive),
	}
}

// Validate checks the configuration's field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.PhaseConfig, errors.KindInvalidInput, err, "invalid configuration")
	}
	return nil
}

func (c *Config) linkerOptions() linker.Options {
	return linker.Options{Policy: linker.Policy(c.Policy)}
}
