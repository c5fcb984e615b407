package backends

import (
	"github.com/daulet/tokenizers"

	"github.com/knights-analytics/gluedata/util/safeconv"
)

type RustTokenizer struct {
	Tokenizer *tokenizers.Tokenizer
	Options   []tokenizers.EncodeOption
}

func loadRustTokenizer(tokenizerBytes []byte, tk *Tokenizer) error {
	rustTK, err := tokenizers.FromBytes(tokenizerBytes)
	if err != nil {
		return err
	}
	tk.RustTokenizer = &RustTokenizer{
		Tokenizer: rustTK,
		Options: []tokenizers.EncodeOption{
			tokenizers.WithReturnTokens(),
			tokenizers.WithReturnTypeIDs(),
			tokenizers.WithReturnAttentionMask(),
		},
	}
	tk.Destroy = func() error {
		return rustTK.Close()
	}
	return nil
}

func encodeRust(tk *Tokenizer, input string) (rawEncoding, error) {
	output := tk.RustTokenizer.Tokenizer.EncodeWithOptions(input, true, tk.RustTokenizer.Options...)
	return rawEncoding{
		Tokens:        output.Tokens,
		InputIDs:      safeconv.Uint32SliceToInt64Slice(output.IDs),
		TypeIDs:       safeconv.Uint32SliceToInt64Slice(output.TypeIDs),
		AttentionMask: safeconv.Uint32SliceToInt64Slice(output.AttentionMask),
	}, nil
}
