package datasets

// RoBERTa and BART family checkpoints were pretrained on MNLI with label
// indices 1 and 2 reversed relative to the canonical vocabulary order, so the
// NLI tasks need their vocabulary swapped before index assignment for those
// tokenizer classes. The coupling is kept in one explicit table rather than
// as a runtime type check.

var labelSwapTasks = map[string]bool{
	"mnli":      true,
	"mnli-mm":   true,
	"mnli-2":    true,
	"mnli-2-mm": true,
	"hans":      true,
}

var labelSwapClasses = map[string]bool{
	"RobertaTokenizer":     true,
	"RobertaTokenizerFast": true,
	"XLMRobertaTokenizer":  true,
	"BartTokenizer":        true,
	"BartTokenizerFast":    true,
}

// SwapLabelOrder reports whether the label vocabulary positions 1 and 2 must
// be swapped for the given task and tokenizer class.
func SwapLabelOrder(taskName string, tokenizerClass string) bool {
	return labelSwapTasks[taskName] && labelSwapClasses[tokenizerClass]
}
