package wat

import (
	"fmt"

	"github.com/wippyai/wasm-host/wat/internal/encoder"
	"github.com/wippyai/wasm-host/wat/internal/parser"
	"github.com/wippyai/wasm-host/wat/internal/token"
)

// Compile turns a single text-format module into its binary encoding.
// Anything after the closing paren of the module is rejected.
func Compile(source string) ([]byte, error) {
	tokens := token.Tokenize(source)
	p := parser.New(tokens)
	mod, err := p.Parse()
	if err != nil {
		return nil, err
	}
	if t := p.Trailing(); t != nil {
		return nil, fmt.Errorf("line %d: unexpected %q after module", t.Line, t.Value)
	}
	return encoder.Encode(mod), nil
}

// MustCompile is like Compile but panics on error. It is meant for
// fixtures whose source is known to be valid.
func MustCompile(source string) []byte {
	bin, err := Compile(source)
	if err != nil {
		panic("wat: " + err.Error())
	}
	return bin
}
