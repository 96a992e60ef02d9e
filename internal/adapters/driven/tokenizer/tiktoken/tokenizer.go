// Package tiktoken counts tokens with a BPE encoding shipped in the binary.
package tiktoken

import (
	"fmt"
	"sync"

	tk "github.com/pkoukk/tiktoken-go"
	loader "github.com/pkoukk/tiktoken-go-loader"

	"github.com/custodia-labs/cartographer/internal/core/ports/driven"
)

// Ensure Tokenizer implements the interface.
var _ driven.Tokenizer = (*Tokenizer)(nil)

// DefaultEncoding approximates Claude's tokenizer closely enough for budgeting.
const DefaultEncoding = "cl100k_base"

var loaderOnce sync.Once

// Tokenizer counts BPE tokens. It is safe for concurrent use.
type Tokenizer struct {
	mu  sync.Mutex
	enc *tk.Tiktoken
}

// New loads the named encoding from the embedded offline vocabulary.
// An empty name uses DefaultEncoding.
func New(encoding string) (*Tokenizer, error) {
	if encoding == "" {
		encoding = DefaultEncoding
	}
	loaderOnce.Do(func() {
		tk.SetBpeLoader(loader.NewOfflineLoader())
	})

	enc, err := tk.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("load encoding %s: %w", encoding, err)
	}
	return &Tokenizer{enc: enc}, nil
}

// Count returns the number of tokens in text.
func (t *Tokenizer) Count(text string) int {
	if text == "" {
		return 0
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.enc.Encode(text, nil, nil))
}
