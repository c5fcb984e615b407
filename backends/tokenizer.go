package backends

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/knights-analytics/gluedata/util/fileutil"
)

// Tokenizer converts text or text pairs into fixed-length token id sequences.
// Two runtimes are supported: the pure go sugarme tokenizer and the rust
// huggingface tokenizer bindings, selected by the Runtime string.
type Tokenizer struct {
	Runtime        string
	GoTokenizer    *GoTokenizer
	RustTokenizer  *RustTokenizer
	ClassName      string
	SeparatorToken string
	Destroy        func() error
}

// rawEncoding is the backend-independent result of encoding one sequence.
type rawEncoding struct {
	Tokens        []string
	InputIDs      []int64
	TypeIDs       []int64
	AttentionMask []int64
}

type tokenizerConfig struct {
	TokenizerClass string `json:"tokenizer_class"`
}

// LoadTokenizer loads tokenizer.json from the model path for the given
// runtime ("GO" or "RUST"). The tokenizer class name is taken from
// tokenizer_config.json when present; it identifies the tokenizer in feature
// cache keys and in the label-order override table.
func LoadTokenizer(modelPath string, runtime string) (*Tokenizer, error) {
	tokenizerBytes, err := fileutil.ReadFileBytes(fileutil.PathJoinSafe(modelPath, "tokenizer.json"))
	if err != nil {
		return nil, err
	}

	tk := &Tokenizer{
		Runtime:        runtime,
		ClassName:      "PreTrainedTokenizer",
		SeparatorToken: "[SEP]",
		Destroy: func() error {
			return nil
		},
	}

	configPath := fileutil.PathJoinSafe(modelPath, "tokenizer_config.json")
	if exists, existsErr := fileutil.FileExists(configPath); existsErr == nil && exists {
		configBytes, readErr := fileutil.ReadFileBytes(configPath)
		if readErr != nil {
			return nil, readErr
		}
		var config tokenizerConfig
		if unmarshalErr := jsoniter.Unmarshal(configBytes, &config); unmarshalErr != nil {
			return nil, unmarshalErr
		}
		if config.TokenizerClass != "" {
			tk.ClassName = config.TokenizerClass
		}
	}
	if separator, sepErr := loadSeparatorToken(modelPath); sepErr == nil && separator != "" {
		tk.SeparatorToken = separator
	}

	switch runtime {
	case "GO":
		if loadErr := loadGoTokenizer(tokenizerBytes, tk); loadErr != nil {
			return nil, loadErr
		}
	case "RUST":
		if loadErr := loadRustTokenizer(tokenizerBytes, tk); loadErr != nil {
			return nil, loadErr
		}
	default:
		return nil, fmt.Errorf("tokenizer runtime %s not recognized", runtime)
	}
	return tk, nil
}

func loadSeparatorToken(modelPath string) (string, error) {
	specialTokensPath := fileutil.PathJoinSafe(modelPath, "special_tokens_map.json")
	exists, err := fileutil.FileExists(specialTokensPath)
	if err != nil || !exists {
		return "", err
	}
	specialBytes, err := fileutil.ReadFileBytes(specialTokensPath)
	if err != nil {
		return "", err
	}
	var specialTokens map[string]any
	if err := jsoniter.Unmarshal(specialBytes, &specialTokens); err != nil {
		return "", err
	}
	switch v := specialTokens["sep_token"].(type) {
	case string:
		return v, nil
	case map[string]any:
		if content, ok := v["content"].(string); ok {
			return content, nil
		}
	}
	return "", nil
}

// Class returns the tokenizer class name used in cache keys.
func (t *Tokenizer) Class() string {
	return t.ClassName
}

// Encode tokenizes a text or a text pair into sequences of exactly maxLength
// ids, truncating or zero-padding uniformly. Pairs are concatenated with the
// separator token and encoded as one sequence; for BERT style tokenizers the
// type ids are then patched so that everything after the first separator is
// segment 1, matching the usual pair encoding.
func (t *Tokenizer) Encode(textA, textB string, maxLength int) ([]int64, []int64, []int64, error) {
	input := textA
	if textB != "" {
		input = textA + " " + t.SeparatorToken + " " + textB
	}

	var raw rawEncoding
	var err error
	switch t.Runtime {
	case "GO":
		raw, err = encodeGo(t, input)
	case "RUST":
		raw, err = encodeRust(t, input)
	default:
		err = fmt.Errorf("tokenizer runtime %s not recognized", t.Runtime)
	}
	if err != nil {
		return nil, nil, nil, err
	}

	if textB != "" && t.SeparatorToken == "[SEP]" {
		patchPairTypeIDs(&raw, t.SeparatorToken)
	}

	inputIDs := fixLength(raw.InputIDs, maxLength)
	attentionMask := fixLength(raw.AttentionMask, maxLength)
	typeIDs := fixLength(raw.TypeIDs, maxLength)
	return inputIDs, attentionMask, typeIDs, nil
}

// patchPairTypeIDs fixes token_type_ids when a pair was concatenated into a
// single sequence. Pattern expected: [CLS] textA [SEP] textB [SEP]; segment 1
// starts after the first [SEP].
func patchPairTypeIDs(raw *rawEncoding, sepToken string) {
	allZero := true
	for _, typeID := range raw.TypeIDs {
		if typeID != 0 {
			allZero = false
			break
		}
	}
	if !allZero || len(raw.TypeIDs) == 0 {
		return
	}
	firstSep := -1
	for i := 1; i < len(raw.Tokens); i++ {
		if raw.Tokens[i] == sepToken {
			firstSep = i
			break
		}
	}
	if firstSep == -1 || firstSep == len(raw.Tokens)-1 {
		return
	}
	for i := firstSep + 1; i < len(raw.TypeIDs); i++ {
		raw.TypeIDs[i] = 1
	}
}

func fixLength(values []int64, length int) []int64 {
	out := make([]int64, length)
	copy(out, values)
	return out
}
