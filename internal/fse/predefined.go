package fse

// Predefined distributions for the three sequence-decoding tables, used
// whenever a block's compression mode selects "predefined" rather than
// "FSE-compressed" or "repeat" mode. Values are the published Zstandard
// default distributions, not grounded on any example repo: nothing in the
// pack's non-zstd codecs predefines distribution tables.

// PredefinedLLAccuracyLog is the accuracy log of the default literal-length
// distribution.
const PredefinedLLAccuracyLog = 6

// PredefinedMLAccuracyLog is the accuracy log of the default match-length
// distribution.
const PredefinedMLAccuracyLog = 6

// PredefinedOFAccuracyLog is the accuracy log of the default offset-code
// distribution.
const PredefinedOFAccuracyLog = 5

var predefinedLLDist = []int16{
	4, 3, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 1, 1, 1, 2, 2, 2, 2, 2, 2, 2, 2, 2, 3, 2, 1, 1, 1, 1, 1, -1, -1, -1, -1,
}

var predefinedMLDist = []int16{
	1, 4, 3, 2, 2, 2, 2, 2, 2, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, -1, -1, -1, -1, -1, -1,
}

var predefinedOFDist = []int16{
	1, 1, 1, 1, 1, 1, 2, 2, 2, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, -1, -1, -1, -1, -1,
}

// PredefinedLL builds the default literal-length table.
func PredefinedLL() (*Table, error) {
	return Build(predefinedLLDist, PredefinedLLAccuracyLog)
}

// PredefinedML builds the default match-length table.
func PredefinedML() (*Table, error) {
	return Build(predefinedMLDist, PredefinedMLAccuracyLog)
}

// PredefinedOF builds the default offset-code table.
func PredefinedOF() (*Table, error) {
	return Build(predefinedOFDist, PredefinedOFAccuracyLog)
}
