package backends

import (
	"bytes"

	"github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/pretrained"

	"github.com/knights-analytics/gluedata/util/safeconv"
)

type GoTokenizer struct {
	Tokenizer *tokenizer.Tokenizer
}

func loadGoTokenizer(tokenizerBytes []byte, tk *Tokenizer) error {
	goTK, err := pretrained.FromReader(bytes.NewReader(tokenizerBytes))
	if err != nil {
		return err
	}
	tk.GoTokenizer = &GoTokenizer{Tokenizer: goTK}
	return nil
}

func encodeGo(tk *Tokenizer, input string) (rawEncoding, error) {
	output, err := tk.GoTokenizer.Tokenizer.EncodeSingle(input, true)
	if err != nil {
		return rawEncoding{}, err
	}
	return rawEncoding{
		Tokens:        output.Tokens,
		InputIDs:      safeconv.IntSliceToInt64Slice(output.Ids),
		TypeIDs:       safeconv.IntSliceToInt64Slice(output.TypeIds),
		AttentionMask: safeconv.IntSliceToInt64Slice(output.AttentionMask),
	}, nil
}
